package scoring

import "math"

// SmoothedMutualInformation is the smoothed mutual information scorer
// I_α(X;Y), tightened by two alternative Newton–Raphson bounds over a
// virtual "non-empty-X-count" NZ ∈ [N_X, N_X·N_Y] (spec.md §4.2). It is
// the direct analogue of the original's SmoothedInformation<Partition,
// active_bound1, active_bound2>, with the two bounds independently
// toggleable at construction instead of as compile-time template flags.
type SmoothedMutualInformation struct {
	alpha, aloga float64
	useBound1    bool
	useBound2    bool

	nx, ny int
	nys    []float64

	hxa  *sEntropy
	hygx *sCondEntropy
	hyx  *sEntropy

	ixy, bound float64
}

// NewSmoothedMutualInformation returns a scorer with smoothing parameter
// alpha and both tightening bounds active, matching the original's
// default instantiation used by the CLI's --smi flag.
func NewSmoothedMutualInformation(alpha float64) *SmoothedMutualInformation {
	return &SmoothedMutualInformation{alpha: alpha, aloga: xlogx(alpha), useBound1: true, useBound2: true}
}

func (s *SmoothedMutualInformation) SetTarget(y Column) {
	s.ny = y.NParts()
	counts := y.PartCounts()
	s.nys = make([]float64, len(counts))
	for i, c := range counts {
		s.nys[i] = float64(c)
	}
}

func (s *SmoothedMutualInformation) Begin(nPartsX, nPartsY int) {
	s.nx = nPartsX
	s.hxa = newSEntropy(s.alpha, s.nx)
	s.hygx = newSCondEntropy(s.alpha, s.nx, s.ny)
}

func (s *SmoothedMutualInformation) SubBegin() {
	s.hyx = newSEntropy(s.alpha, s.ny)
}

func (s *SmoothedMutualInformation) Update(count int) {
	s.hyx.Add(float64(count))
}

func (s *SmoothedMutualInformation) SubEnd() {
	s.hxa.Add(s.hyx.Counts())
	s.hygx.AddSub(s.hyx)
}

func (s *SmoothedMutualInformation) End() {
	n := s.hygx.Counts()
	hy := s.smoothedEntropyOfY(s.alpha * float64(s.nx))
	s.ixy = hy - s.hygx.Value()

	switch {
	case s.useBound1 && s.useBound2:
		s.bound = math.Min(s.bound1(n), s.bound2(n))
	case s.useBound1:
		s.bound = s.bound1(n)
	case s.useBound2:
		s.bound = s.bound2(n)
	default:
		s.bound = s.naiveBound(n)
	}
}

func (s *SmoothedMutualInformation) Value() (score, bound float64) { return s.ixy, s.bound }

func (s *SmoothedMutualInformation) smoothedEntropyOfY(alpha float64) float64 {
	h := newSEntropy(alpha, s.ny)
	for _, ny := range s.nys {
		h.Add(ny)
	}
	return h.Value()
}

func (s *SmoothedMutualInformation) naiveBound(n float64) float64 {
	S := s.hygx.SumXLogX() - s.hxa.SumXLogX()
	nx, ny := float64(s.nx), float64(s.ny)
	return log2(ny) - (S-nx*(ny-1)*s.aloga)/(n+nx*ny*s.alpha)
}

// newtonRaphson finds the root of f in [minNZ, maxNZ] via damped Newton
// steps clamped to the interval, aborting on a sign-inconsistent step, per
// spec.md §4.2 "Newton–Raphson. Iterate until |Δ| ≤ 0.1 ... abort on
// sign-inconsistent step".
func newtonRaphson(f func(nz float64) (val, deriv float64), minNZ, maxNZ float64) float64 {
	const eps = 0.1
	nz := minNZ
	for {
		val, deriv := f(nz)
		dz := -val / deriv
		if nz+dz < minNZ {
			dz = minNZ - nz
		} else if nz+dz > maxNZ {
			dz = maxNZ - nz
		}
		if val*dz <= 0 {
			break
		}
		nz += dz
		if math.Abs(dz) <= eps {
			break
		}
	}
	return nz
}

func (s *SmoothedMutualInformation) bound1Derivate(nz, c0 float64) (val, deriv float64) {
	n := s.hygx.Counts()
	ny := float64(s.ny)
	var S1, S2 float64
	for _, y := range s.nys {
		c1 := y + nz*s.alpha
		c2 := y - n/ny
		S1 += c2 * log2(c1)
		S2 += c2 / c1
	}
	f := (S1 - n*log2(ny)) - c0
	fprime := s.alpha * S2 / ln2
	return f, fprime
}

func (s *SmoothedMutualInformation) bound1(n float64) float64 {
	nx, ny := float64(s.nx), float64(s.ny)
	c0 := nx*s.alpha*xlogx(ny) + nx*(ny-1)*s.aloga + (s.hxa.SumXLogX() - s.hygx.SumXLogX())

	nz := newtonRaphson(func(nz float64) (float64, float64) { return s.bound1Derivate(nz, c0) }, nx, nx*ny)

	var S float64
	for _, y := range s.nys {
		S += xlogx(y + nz*s.alpha)
	}
	c := n + nz*ny*s.alpha
	return log2(c) + (c0-S-nz*ny*s.alpha*log2(ny))/c
}

func (s *SmoothedMutualInformation) bound2Derivate(nz, c0 float64) (val, deriv float64) {
	n := s.hygx.Counts()
	nx, ny := float64(s.nx), float64(s.ny)
	var S1, S2 float64
	for _, y := range s.nys {
		c1 := y + nz*s.alpha
		c2 := y - n/ny
		S1 += c2 * log2(c1)
		S2 += c2 / c1
	}
	c := n + nz*ny*s.alpha
	f := S1 - c0 + (n+nx*ny)*s.aloga + n*c/(nz*ny*s.alpha)/ln2
	fprime := s.alpha*S2 - n*n/(nz*nz*ny*s.alpha)/ln2
	return f, fprime
}

func (s *SmoothedMutualInformation) bound2(n float64) float64 {
	nx, ny := float64(s.nx), float64(s.ny)
	c0 := s.hygx.SumXYLogXY()
	nz := newtonRaphson(func(nz float64) (float64, float64) { return s.bound2Derivate(nz, c0) }, nx, nx*ny)

	var S float64
	for _, y := range s.nys {
		S += xlogx(y + nz*s.alpha)
	}
	return log2(nz) + (c0-S+(nz-nx)*ny*s.aloga)/(n+nz*ny*s.alpha)
}
