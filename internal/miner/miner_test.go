package miner

import (
	"testing"

	"github.com/P-Fred/Smoothie/internal/partition"
	"github.com/P-Fred/Smoothie/internal/scoring"
)

// buildColumn constructs a single-attribute Partition from a fixed-width
// slice of category values, one per tuple.
func buildColumn(values []uint8) *partition.Partition {
	b := partition.NewBuilder(len(values))
	for _, v := range values {
		b.Add(v)
	}
	return b.Build()
}

func newScorer(target *partition.Partition) *scoring.SmoothedMutualInformation {
	sc := scoring.NewSmoothedMutualInformation(1.0)
	sc.SetTarget(target)
	return sc
}

func TestStandardRegimePrefersInformativeAttribute(t *testing.T) {
	target := buildColumn([]uint8{0, 0, 1, 1})
	a := buildColumn([]uint8{0, 0, 1, 1}) // perfectly correlated with target
	b := buildColumn([]uint8{0, 1, 0, 1}) // uncorrelated

	cols := map[uint16]*partition.Partition{1: a, 2: b}
	m := New(cols, target, newScorer(target), Options{K: 2, Regime: Standard})
	results := m.Run([]uint16{1, 2}, 4)

	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if len(results[0].Attrs) != 1 || results[0].Attrs[0] != 1 {
		t.Fatalf("expected attribute 1 to rank first, got %+v", results[0])
	}
	if m.PatternNumber() == 0 {
		t.Fatal("expected PatternNumber to count visited subsets")
	}
}

func TestOPUSRegimeVisitsSameTopResult(t *testing.T) {
	target := buildColumn([]uint8{0, 0, 1, 1})
	a := buildColumn([]uint8{0, 0, 1, 1})
	b := buildColumn([]uint8{0, 1, 0, 1})

	cols := map[uint16]*partition.Partition{1: a, 2: b}
	m := New(cols, target, newScorer(target), Options{K: 2, Regime: OPUS})
	results := m.Run([]uint16{1, 2}, 4)

	if len(results) == 0 || results[0].Attrs[0] != 1 {
		t.Fatalf("expected attribute 1 to rank first under OPUS too, got %+v", results)
	}
}

func TestBranchTopRegimeRunsWithoutPanicking(t *testing.T) {
	target := buildColumn([]uint8{0, 0, 1, 1})
	a := buildColumn([]uint8{0, 0, 1, 1})
	b := buildColumn([]uint8{0, 1, 0, 1})

	cols := map[uint16]*partition.Partition{1: a, 2: b}
	m := New(cols, target, newScorer(target), Options{K: 2, Regime: BranchTop, AcceptScoreDecrease: true})
	results := m.Run([]uint16{1, 2}, 4)
	if len(results) == 0 {
		t.Fatal("expected BranchTop to emit at least one local-peak subset")
	}
}

func TestRunRestoresVarlistAfterCompletion(t *testing.T) {
	target := buildColumn([]uint8{0, 0, 1, 1})
	a := buildColumn([]uint8{0, 0, 1, 1})
	b := buildColumn([]uint8{0, 1, 0, 1})

	cols := map[uint16]*partition.Partition{1: a, 2: b}
	m := New(cols, target, newScorer(target), Options{K: 3, Regime: Standard})
	_ = m.Run([]uint16{1, 2}, 4)

	// A second Run on the same Miner should behave identically. The first
	// Run's Purge empties the queue and the varlist is rebuilt fresh in
	// Run, so this guards against a regression that makes Run stateful
	// across calls.
	results := m.Run([]uint16{1, 2}, 4)
	if len(results) == 0 {
		t.Fatal("expected a second Run to also produce results")
	}
}
