package scoring

// sEntropy is the additive-smoothing entropy accumulator the original calls
// SEntropy: it folds in one part count at a time via Add, deferring the
// "empty parts also get smoothed" correction to the first read, exactly
// like the original's lazy update() (spec.md §4.2 "smoothed entropy ...
// additive smoothing α per part").
type sEntropy struct {
	alpha                    float64
	counts, sumxlogx         float64
	nParts, nNonEmptyParts   int
	updated                  bool
}

func newSEntropy(alpha float64, nParts int) *sEntropy {
	return &sEntropy{alpha: alpha, nParts: nParts}
}

func (s *sEntropy) Add(count float64) {
	s.counts += count
	s.sumxlogx += xlogx(count + s.alpha)
	s.nNonEmptyParts++
}

func (s *sEntropy) settle() {
	if s.updated {
		return
	}
	nEmpty := s.nParts - s.nNonEmptyParts
	if nEmpty != 0 {
		s.sumxlogx += float64(nEmpty) * xlogx(s.alpha)
		s.nNonEmptyParts = s.nParts
	}
	s.updated = true
}

func (s *sEntropy) Counts() float64 { return s.counts }
func (s *sEntropy) NParts() int     { return s.nParts }

func (s *sEntropy) SumXLogX() float64 {
	s.settle()
	return s.sumxlogx
}

// Value returns the smoothed entropy H in bits, clamped to ≥0.
func (s *sEntropy) Value() float64 {
	s.settle()
	pseudoCounts := s.counts + float64(s.nParts)*s.alpha
	h := log2(pseudoCounts) - s.sumxlogx/pseudoCounts
	if h < 0 {
		h = 0
	}
	return h
}

// sCondEntropy accumulates the smoothed conditional entropy H(Y|X) across
// the outer loop over X's parts, each contributing one inner sEntropy over
// Y's parts (the original's SCondEntropy).
type sCondEntropy struct {
	alpha                        float64
	counts, sumxlogx, sumxylogxy float64
	nXParts, nYParts             int
	nNonEmptyXParts              int
	updated                      bool
}

func newSCondEntropy(alpha float64, nXParts, nYParts int) *sCondEntropy {
	return &sCondEntropy{alpha: alpha, nXParts: nXParts, nYParts: nYParts}
}

func (s *sCondEntropy) AddSub(sub *sEntropy) {
	count := sub.Counts()
	s.counts += count
	s.sumxlogx += xlogx(count + float64(s.nYParts)*s.alpha)
	s.sumxylogxy += sub.SumXLogX()
	s.nNonEmptyXParts++
}

func (s *sCondEntropy) settle() {
	if s.updated {
		return
	}
	nEmpty := s.nXParts - s.nNonEmptyXParts
	if nEmpty != 0 {
		empty := newSEntropy(s.alpha, s.nYParts)
		s.sumxlogx += float64(nEmpty) * xlogx(float64(s.nYParts)*s.alpha)
		s.sumxylogxy += float64(nEmpty) * empty.SumXLogX()
		s.nNonEmptyXParts = s.nXParts
	}
	s.updated = true
}

func (s *sCondEntropy) Counts() float64 {
	return s.counts
}

func (s *sCondEntropy) SumXYLogXY() float64 {
	s.settle()
	return s.sumxylogxy
}

func (s *sCondEntropy) SumXLogX() float64 {
	s.settle()
	return s.sumxlogx
}

// Value returns H(Y|X), smoothed.
func (s *sCondEntropy) Value() float64 {
	return (s.SumXLogX() - s.SumXYLogXY()) / (s.counts + float64(s.nXParts*s.nYParts)*s.alpha)
}

// SmoothedEntropy is the additive-smoothing entropy scorer, the direct
// analogue of the original's SmoothedEntropy PartitionScore.
type SmoothedEntropy struct {
	alpha float64
	h     *sEntropy
}

func NewSmoothedEntropy(alpha float64) *SmoothedEntropy {
	return &SmoothedEntropy{alpha: alpha}
}

func (s *SmoothedEntropy) Begin(nPartsX, nPartsY int) {
	nParts := nPartsX
	if nPartsY > 0 {
		nParts *= nPartsY
	}
	s.h = newSEntropy(s.alpha, nParts)
}
func (s *SmoothedEntropy) SubBegin()      {}
func (s *SmoothedEntropy) Update(n int)   { s.h.Add(float64(n)) }
func (s *SmoothedEntropy) SubEnd()        {}
func (s *SmoothedEntropy) End()           {}
func (s *SmoothedEntropy) Value() (score, bound float64) {
	v := s.h.Value()
	return v, log2(float64(s.h.NParts()))
}
