package scoring

import "gonum.org/v1/gonum/stat/distuv"

// AdjustedDependency is mutual information corrected by a chi-squared
// critical value at significance alpha, scaled by the degrees of freedom
// (N_X-1)(N_Y-1), per spec.md §4.2 "Added: Adjusted Dependency's
// chi-squared critical value". The original computes the same critical
// value from a tabulated/iterative chi-squared quantile function; this
// port uses gonum.org/v1/gonum/stat/distuv.ChiSquared for the quantile
// instead of reimplementing the inverse chi-squared CDF.
type AdjustedDependency struct {
	significance float64

	hy float64
	n  int
	ny int

	nx      int
	hx, hxy float64
	nxCur   float64

	score, bound float64
}

func NewAdjustedDependency(significance float64) *AdjustedDependency {
	return &AdjustedDependency{significance: significance}
}

func (s *AdjustedDependency) SetTarget(y Column) {
	s.hy = y.Entropy()
	s.ny = y.NParts()
	total := 0
	for _, c := range y.PartCounts() {
		total += c
	}
	s.n = total
}

func (s *AdjustedDependency) Begin(nPartsX, nPartsY int) {
	s.nx = nPartsX
	s.hx, s.hxy = 0, 0
}
func (s *AdjustedDependency) SubBegin() { s.nxCur = 0 }
func (s *AdjustedDependency) Update(count int) {
	nxy := float64(count)
	s.hxy += xlogx(nxy)
	s.nxCur += nxy
}
func (s *AdjustedDependency) SubEnd() { s.hx += xlogx(s.nxCur) }

func (s *AdjustedDependency) End() {
	n := float64(s.n)
	logn := log2(n)
	s.hx = logn - s.hx/n
	s.hxy = logn - s.hxy/n
	info := s.hy + s.hx - s.hxy

	df := float64(s.nx-1) * float64(s.ny-1)
	bias := 0.0
	if df > 0 {
		chi2 := distuv.ChiSquared{K: df}
		bias = chi2.Quantile(1-s.significance) / (2 * n)
	}
	s.score = (info - bias) / s.hy
	s.bound = 1 - bias
}

func (s *AdjustedDependency) Value() (score, bound float64) { return s.score, s.bound }
