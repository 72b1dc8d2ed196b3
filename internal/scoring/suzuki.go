package scoring

// SuzukiInformation is mutual information minus the Suzuki bias correction
// (N_X−1)(N_Y−1)/(2N)·log2 N, divided by H(Y), with bound = 1−bias, per spec.md §4.2
// "Suzuki MI" ("Mutual Information Estimation: Independence Detection and
// Consistency", Suzuki).
type SuzukiInformation struct {
	hy float64
	n  int
	ny int

	nx      int
	hx, hxy float64
	nxCur   float64

	info, bound float64
}

func NewSuzukiInformation() *SuzukiInformation { return &SuzukiInformation{} }

func (s *SuzukiInformation) SetTarget(y Column) {
	s.hy = y.Entropy()
	s.ny = y.NParts()
	total := 0
	for _, c := range y.PartCounts() {
		total += c
	}
	s.n = total
}

func (s *SuzukiInformation) Begin(nPartsX, nPartsY int) {
	s.nx = nPartsX
	s.hx, s.hxy = 0, 0
}
func (s *SuzukiInformation) SubBegin()      { s.nxCur = 0 }
func (s *SuzukiInformation) Update(count int) {
	nxy := float64(count)
	s.hxy += xlogx(nxy)
	s.nxCur += nxy
}
func (s *SuzukiInformation) SubEnd() { s.hx += xlogx(s.nxCur) }

func (s *SuzukiInformation) End() {
	n := float64(s.n)
	logn := log2(n)
	s.hx = logn - s.hx/n
	s.hxy = logn - s.hxy/n
	info := s.hy + s.hx - s.hxy
	bias := float64(s.nx-1) * float64(s.ny-1) / (2 * n) * logn
	s.info = (info - bias) / s.hy
	s.bound = 1 - bias
}

func (s *SuzukiInformation) Value() (score, bound float64) { return s.info, s.bound }
