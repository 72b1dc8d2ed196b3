package scoring

import "math"

// ReliableFractionOfInformation is RFI(X;Y) = (H(Y)+H(X)-H(X,Y))/H(Y) minus
// a hypergeometric bias correction, and its companion upper bound
// 1-boundBias, per spec.md §4.2. Direct analogue of the original's
// ReliableFractionOfInformation.
type ReliableFractionOfInformation struct {
	hy       float64
	n        int
	nys      []float64

	nx, ny int
	hx, hxy float64
	nxCur   float64 // running part-of-X total, reset at SubBegin
	bias, boundBias float64

	rfi, bound float64
}

func NewReliableFractionOfInformation() *ReliableFractionOfInformation {
	return &ReliableFractionOfInformation{}
}

func (s *ReliableFractionOfInformation) SetTarget(y Column) {
	s.hy = y.Entropy()
	counts := y.PartCounts()
	s.nys = make([]float64, len(counts))
	total := 0
	for i, c := range counts {
		s.nys[i] = float64(c)
		total += c
	}
	s.n = total
}

func (s *ReliableFractionOfInformation) Begin(nPartsX, nPartsY int) {
	s.nx, s.ny = nPartsX, nPartsY
	s.hx, s.hxy = 0, 0
	s.bias, s.boundBias = 0, 0
}

func (s *ReliableFractionOfInformation) SubBegin() { s.nxCur = 0 }

func (s *ReliableFractionOfInformation) Update(count int) {
	nxy := float64(count)
	s.hxy += xlogx(nxy)
	s.nxCur += nxy
	for _, ny := range s.nys {
		s.updateBias(&s.boundBias, nxy, ny)
	}
}

func (s *ReliableFractionOfInformation) SubEnd() {
	s.hx += xlogx(s.nxCur)
	for _, ny := range s.nys {
		s.updateBias(&s.bias, s.nxCur, ny)
	}
}

func (s *ReliableFractionOfInformation) End() {
	n := float64(s.n)
	logn := log2(n)
	s.hx = logn - s.hx/n
	s.hxy = logn - s.hxy/n
	s.bias /= s.hy
	s.boundBias /= s.hy
	s.rfi = (s.hy+s.hx-s.hxy)/s.hy - s.bias
	s.bound = 1 - s.boundBias
}

func (s *ReliableFractionOfInformation) Value() (score, bound float64) { return s.rfi, s.bound }

// hyperGeometricProbLog returns log2 P(K=k) for K ~ Hypergeometric drawing
// from a population of n with a "successes" and b "draws", per the
// original's hyperGeometricProbLog.
func hyperGeometricProbLog(k, a, b, n float64) float64 {
	if a > n || b > n || k+n < a+b || k > a || k > b {
		return 0
	}
	if a < b {
		a, b = b, a
	}

	var res float64
	p1, p2, p3, p4, p5 := a, b, n, k, n-a
	for i := 0.; i != k; i++ {
		res += log2(p1 / p3 * p2 / p4)
		p1--
		p2--
		p3--
		p4--
	}
	for i := 0.; i != b-k; i++ {
		res += log2(p5 / p3)
		p3--
		p5--
	}
	return res
}

// updateBias accumulates the expectation of k·log2(k) under the
// hypergeometric distribution implied by drawing ai from n with bj
// "successes", incremental in log-space exactly like the original's
// updateBias, used both for the achieved bias and the bound's bias.
func (s *ReliableFractionOfInformation) updateBias(bias *float64, ai, bj float64) {
	n := float64(s.n)
	m := math.Max(1, ai+bj-n)
	if ai+bj <= n+1 {
		m = 1
	}
	M := math.Min(ai, bj)
	logh := hyperGeometricProbLog(m, ai, bj, n)

	var total float64
	for k := m; k <= M; k++ {
		h := math.Exp2(logh)
		total += h * k * log2(k)
		c := (ai - k) / (k + 1) * (bj - k) / (n - ai - bj + k + 1)
		if c != 0 {
			logh += log2(c)
		}
	}
	p := ai / n * bj / n
	total -= xlogx(p * n)
	*bias += total / n
}
