package scoring

import "testing"

// fakeColumn is a minimal scoring.Column for exercising SetTarget without
// depending on internal/partition (avoiding an import cycle in tests too).
type fakeColumn struct {
	entropy float64
	counts  []int
}

func (f fakeColumn) NParts() int      { return len(f.counts) }
func (f fakeColumn) Entropy() float64 { return f.entropy }
func (f fakeColumn) PartCounts() []int {
	return f.counts
}

// drive feeds a Score through one Begin/SubBegin.../SubEnd/End pass, one
// SubBegin/SubEnd bracket per entry of subCounts, as Partition.Intersect
// would for each X-part against Y.
func drive(sc Score, nPartsX, nPartsY int, subCounts [][]int) {
	sc.Begin(nPartsX, nPartsY)
	for _, sub := range subCounts {
		sc.SubBegin()
		for _, c := range sub {
			sc.Update(c)
		}
		sc.SubEnd()
	}
	sc.End()
}

func TestEntropyOfUniformPartition(t *testing.T) {
	e := &Entropy{}
	drive(e, 4, 0, [][]int{{5, 5, 5, 5}})
	score, _ := e.Value()
	if score < 1.99 || score > 2.01 {
		t.Fatalf("expected H≈2 bits for 4 uniform parts, got %v", score)
	}
}

func TestSmoothedEntropyApproachesPlainEntropyAsAlphaShrinks(t *testing.T) {
	small := NewSmoothedEntropy(1e-6)
	drive(small, 4, 0, [][]int{{5, 5, 5, 5}})
	score, _ := small.Value()
	if score < 1.9 || score > 2.05 {
		t.Fatalf("expected smoothed entropy near 2 bits as alpha->0, got %v", score)
	}
}

func TestSuzukiInformationBoundDominatesScore(t *testing.T) {
	y := fakeColumn{entropy: 1, counts: []int{5, 5}}
	s := NewSuzukiInformation()
	s.SetTarget(y)
	drive(s, 2, 2, [][]int{{5, 0}, {0, 5}})
	score, bound := s.Value()
	if bound < score {
		t.Fatalf("Suzuki bound %v should dominate score %v", bound, score)
	}
}

func TestAdjustedDependencyBoundShrinksWithSignificance(t *testing.T) {
	y := fakeColumn{entropy: 1, counts: []int{5, 5}}
	loose := NewAdjustedDependency(0.5)
	loose.SetTarget(y)
	drive(loose, 2, 2, [][]int{{5, 0}, {0, 5}})
	_, boundLoose := loose.Value()

	tight := NewAdjustedDependency(0.01)
	tight.SetTarget(y)
	drive(tight, 2, 2, [][]int{{5, 0}, {0, 5}})
	_, boundTight := tight.Value()

	if boundTight > boundLoose {
		t.Fatalf("a stricter significance level should not loosen the bound: tight=%v loose=%v", boundTight, boundLoose)
	}
}

func TestSmoothedMutualInformationBoundAcrossAlphas(t *testing.T) {
	y := fakeColumn{entropy: 1, counts: []int{5, 5}}
	for _, alpha := range []float64{0.1, 1.0, 10.0} {
		s := NewSmoothedMutualInformation(alpha)
		s.SetTarget(y)
		drive(s, 2, 2, [][]int{{5, 0}, {0, 5}})
		score, bound := s.Value()
		if bound+1e-6 < score {
			t.Fatalf("alpha=%v: bound %v below score %v", alpha, bound, score)
		}
	}
}

func TestReliableFractionOfInformationPerfectSplit(t *testing.T) {
	y := fakeColumn{entropy: 1, counts: []int{5, 5}}
	s := NewReliableFractionOfInformation()
	s.SetTarget(y)
	drive(s, 2, 2, [][]int{{5, 0}, {0, 5}})
	score, bound := s.Value()
	if score <= 0 {
		t.Fatalf("expected a positive RFI for a perfectly informative split, got %v", score)
	}
	if bound < score {
		t.Fatalf("RFI bound %v should dominate score %v", bound, score)
	}
}
