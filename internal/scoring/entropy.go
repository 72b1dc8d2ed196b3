package scoring

// NoScore drives no computation; it mirrors the original's NoScore used
// when only the refinement's part-size distribution matters (e.g. to
// snapshot counts via CountCollector).
type NoScore struct{}

func (NoScore) Begin(int, int) {}
func (NoScore) SubBegin()      {}
func (NoScore) Update(int)     {}
func (NoScore) SubEnd()        {}
func (NoScore) End()           {}

// CountCollector records the size of every part seen by Update, in
// traversal order — the original's CountCollecter. The target-dependent
// scorers here do not use it: their SetTarget reads {n_y} from
// Column.PartCounts.
type CountCollector struct {
	counts []int
}

func (c *CountCollector) Begin(int, int) { c.counts = c.counts[:0] }
func (c *CountCollector) SubBegin()      {}
func (c *CountCollector) Update(n int)   { c.counts = append(c.counts, n) }
func (c *CountCollector) SubEnd()        {}
func (c *CountCollector) End()           {}
func (c *CountCollector) Counts() []int  { return c.counts }

// Entropy computes the plain (unsmoothed) Shannon entropy of a partition's
// part-size distribution in bits, clamped to ≥0, per spec.md §4.1/§4.2.
type Entropy struct {
	h      float64
	n      int
	nParts int
}

func (e *Entropy) Begin(nPartsX, nPartsY int) {
	e.h, e.n = 0, 0
	e.nParts = nPartsX
	if nPartsY > 0 {
		e.nParts *= nPartsY
	}
}
func (e *Entropy) SubBegin() {}
func (e *Entropy) Update(count int) {
	e.h += xlogx(float64(count))
	e.n += count
}
func (e *Entropy) SubEnd() {}
func (e *Entropy) End() {
	if e.n == 0 {
		e.h = 0
		return
	}
	e.h = log2(float64(e.n)) - e.h/float64(e.n)
	if e.h < 0 {
		e.h = 0
	}
}

// Value implements Valued; Entropy has no meaningful upper bound over
// refinements beyond log2(nParts) so it reports that as the bound, mostly
// useful for tests and for driving Partition.Entropy in terms of this
// package's protocol.
func (e *Entropy) Value() (score, bound float64) {
	b := 0.0
	if e.nParts > 0 {
		b = log2(float64(e.nParts))
	}
	return e.h, b
}

func (e *Entropy) Count() int { return e.n }
