package partition

import "testing"

// countingScore records the sizes passed to Update, in the order seen, so a
// test can check the Σ part.n == N invariant (spec.md §8 invariant 1).
type countingScore struct {
	sizes []int
}

func (c *countingScore) Begin(nPartsX, nPartsY int) { c.sizes = nil }
func (c *countingScore) SubBegin()                  {}
func (c *countingScore) Update(n int)                { c.sizes = append(c.sizes, n) }
func (c *countingScore) SubEnd()                     {}
func (c *countingScore) End()                        {}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

func buildColumn(n int, values []uint8) *Partition {
	b := NewBuilder(n)
	for _, v := range values {
		b.Add(v)
	}
	return b.Build()
}

func TestIntersectPreservesTotalCount(t *testing.T) {
	a := buildColumn(6, []uint8{0, 0, 1, 1, 2, 2})
	b := buildColumn(6, []uint8{0, 1, 0, 1, 0, 1})

	sc := &countingScore{}
	if err := a.Intersect(b, sc); err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if got := sum(sc.sizes); got != 6 {
		t.Errorf("sum of part sizes = %d, want 6", got)
	}
	if a.NParts() != a.NNonEmptyParts()+a.NEmptyParts() {
		t.Errorf("nParts %d != nonEmpty %d + empty %d", a.NParts(), a.NNonEmptyParts(), a.NEmptyParts())
	}
	// A had 3 parts, B had 2: capacity is 6, and every (a,b) pair actually
	// occurs once (each a-part straddles both b values), so all 6 appear.
	if a.NParts() != 6 {
		t.Errorf("NParts = %d, want 6", a.NParts())
	}
	if a.NEmptyParts() != 0 {
		t.Errorf("NEmptyParts = %d, want 0", a.NEmptyParts())
	}
}

func TestIntersectCommutativeEntropy(t *testing.T) {
	a := buildColumn(4, []uint8{0, 0, 1, 1})
	b := buildColumn(4, []uint8{0, 1, 0, 1})

	ab := a.Clone()
	if err := ab.Intersect(b, &countingScore{}); err != nil {
		t.Fatal(err)
	}
	ba := b.Clone()
	if err := ba.Intersect(a, &countingScore{}); err != nil {
		t.Fatal(err)
	}
	if ab.Entropy() != ba.Entropy() {
		t.Errorf("entropy(A∩B) = %v, entropy(B∩A) = %v", ab.Entropy(), ba.Entropy())
	}
}

// TestScenarioS1 is spec.md §8 S1: trivial 2-tuple dataset, target attr 0,
// two singleton parts — entropy of Y must be 1 bit.
func TestScenarioS1(t *testing.T) {
	y := buildColumn(2, []uint8{1, 0})
	if got := y.Entropy(); got != 1 {
		t.Errorf("H(Y) = %v, want 1", got)
	}
}

// TestScenarioS5 is spec.md §8 S5: arena growth beyond 2^13 tuples must
// preserve exactly-once traversal of every cell per part.
func TestScenarioS5(t *testing.T) {
	const n = 1<<13 + 37
	values := make([]uint8, n)
	for i := range values {
		values[i] = uint8(i % 5)
	}
	p := buildColumn(n, values)

	seen := make([]bool, n)
	total := 0
	for _, pt := range p.parts {
		count := 0
		ci := pt.first
		for ci != noIndex {
			if seen[ci] {
				t.Fatalf("cell %d visited twice", ci)
			}
			seen[ci] = true
			count++
			ci = p.cells[ci].next
		}
		if int32(count) != pt.n {
			t.Errorf("part walked %d cells, n field says %d", count, pt.n)
		}
		total += count
	}
	if total != n {
		t.Errorf("total cells visited = %d, want %d", total, n)
	}
}

func TestEntropyClampedNonNegative(t *testing.T) {
	p := buildColumn(1, []uint8{0})
	if got := p.Entropy(); got < 0 {
		t.Errorf("entropy = %v, want >= 0", got)
	}
}

func TestIntersectDataShapeMismatch(t *testing.T) {
	a := buildColumn(3, []uint8{0, 1, 0})
	b := buildColumn(4, []uint8{0, 1, 0, 1})
	err := a.Intersect(b, &countingScore{})
	if err == nil {
		t.Fatal("expected ErrDataShape, got nil")
	}
	var shapeErr *ErrDataShape
	if !asDataShape(err, &shapeErr) {
		t.Errorf("expected *ErrDataShape, got %T: %v", err, err)
	}
}

func asDataShape(err error, target **ErrDataShape) bool {
	if e, ok := err.(*ErrDataShape); ok {
		*target = e
		return true
	}
	return false
}
