// Package partition implements the columnar partition store: the
// equivalence-class representation one attribute induces over a fixed set
// of N tuples, and the sub-quadratic intersection that refines one
// partition by another while driving an information-theoretic score in a
// single pass.
//
// A Partition owns two growable arenas, a slice of Cells and a slice of
// Parts. There is exactly one Cell per input tuple. Cells belonging to the
// same equivalence class are threaded into a singly linked chain anchored
// at their Part; every Cell carries a back-pointer to that Part. Both
// pointers are realized as indices into the owning Partition's arenas
// (cellIndex, partIndex) rather than raw addresses: a Go slice's backing
// array may move on append, but an index survives the move untouched, so
// the arena needs no Rebuilder callback the way the array-of-pointers
// original does (see SPEC_FULL.md §3 / §4.7).
package partition

import "fmt"

// AttrValue is a single (attribute, value) pair of a transaction.
type AttrValue struct {
	Attr  uint16
	Value uint8
}

const noIndex int32 = -1

// Cell is one tuple's membership in a Partition: an intrusive forward link
// to the next Cell of the same Part, and a back-pointer to that Part.
type cell struct {
	next int32 // index into cells, or noIndex
	part int32 // index into parts
}

// part is one equivalence class: the chain of Cells it owns, and its size.
type part struct {
	first, last int32 // indices into cells, or noIndex when empty
	n           int32

	// newPart is the intersection scratch pointer described in
	// SPEC_FULL.md §3 "Part ownership across partitions": during
	// Intersect, a Part of the argument partition temporarily points at
	// the fresh Part in the receiver's new arena that its cells are
	// being funneled into. Reset to noIndex before Intersect returns.
	newPart int32
}

// Partition is one equivalence-class decomposition of N tuples, either the
// partition induced by a single attribute or the "top" partition (all
// tuples in a single part).
type Partition struct {
	cells         []cell
	parts         []part
	n             int32 // total tuple count; 0 means "not yet built"
	nEmptyParts   int32
}

// New returns an empty Partition with arenas pre-sized for n tuples.
func New(n int) *Partition {
	return &Partition{
		cells: make([]cell, 0, n),
		parts: make([]part, 0, n),
	}
}

// Len returns the number of tuples (N) the partition was built over.
func (p *Partition) Len() int { return int(p.n) }

// NParts returns the number of parts in the current refinement, including
// parts counted as empty after an intersection (matches the original's
// nParts(), the pre-drain capacity).
func (p *Partition) NParts() int { return len(p.parts) + int(p.nEmptyParts) }

// NNonEmptyParts returns the number of parts that actually hold a cell.
func (p *Partition) NNonEmptyParts() int { return len(p.parts) }

// NEmptyParts returns the number of parts counted in NParts that hold no
// cell — the empty-part count recorded after Intersect (spec.md §4.1 step
// 3: "record empty-part count = (|A.parts|·|B.parts|) − actual_new_parts").
func (p *Partition) NEmptyParts() int { return int(p.nEmptyParts) }

// addPart appends a fresh, empty part and returns its index.
func addPart(parts []part) ([]part, int32) {
	parts = append(parts, part{first: noIndex, last: noIndex, newPart: noIndex})
	return parts, int32(len(parts) - 1)
}

// add appends cell index ci to part index pi's chain.
func (p *Partition) add(pi int32, ci int32) {
	pt := &p.parts[pi]
	if pt.first == noIndex {
		pt.first = ci
	} else {
		p.cells[pt.last].next = ci
	}
	pt.last = ci
	p.cells[ci].next = noIndex
	p.cells[ci].part = pi
	pt.n++
}

// Builder constructs the Partition of one attribute, one Add per tuple in
// tuple order; Load drives one Builder per attribute over a single scan of
// the transaction stream, per spec.md §4.1 "Construct".
type Builder struct {
	p        *Partition
	byValue  map[uint8]int32 // value -> part index, for the attribute under construction
}

// NewBuilder starts constructing a Partition expected to hold capacity
// tuples.
func NewBuilder(capacity int) *Builder {
	return &Builder{
		p:       New(capacity),
		byValue: make(map[uint8]int32),
	}
}

// Add records that the next tuple (by construction order) carries value v
// for the attribute this builder constructs.
func (b *Builder) Add(v uint8) {
	b.p.cells = append(b.p.cells, cell{})
	ci := int32(len(b.p.cells) - 1)
	pi, ok := b.byValue[v]
	if !ok {
		b.p.parts, pi = addPart(b.p.parts)
		b.byValue[v] = pi
	}
	b.p.n++
	b.p.add(pi, ci)
}

// Build finalizes and returns the constructed Partition.
func (b *Builder) Build() *Partition { return b.p }

// Top returns the "top" partition over n tuples: every tuple in a single
// part (spec.md §3: "one 'top' partition representing 'all tuples
// together'").
func Top(n int) *Partition {
	p := New(n)
	p.cells = make([]cell, n)
	p.parts = []part{{first: 0, last: int32(n - 1), n: int32(n), newPart: noIndex}}
	p.n = int32(n)
	for i := 0; i < n; i++ {
		p.cells[i].part = 0
		if i+1 < n {
			p.cells[i].next = int32(i + 1)
		} else {
			p.cells[i].next = noIndex
		}
	}
	return p
}

// Clone returns an independent deep copy of p, used by the miner to keep
// a node's partition immutable while trying several extensions against it
// (spec.md §4.1: the const-qualified intersect overload that "Partition
// copy = *this; return copy.intersect(...)").
func (p *Partition) Clone() *Partition {
	cp := &Partition{
		cells:       append([]cell(nil), p.cells...),
		parts:       append([]part(nil), p.parts...),
		n:           p.n,
		nEmptyParts: p.nEmptyParts,
	}
	return cp
}

// ErrDataShape is returned when two partitions disagree on tuple count N
// during Intersect (spec.md §4.1 "Failure semantics").
type ErrDataShape struct {
	NA, NB int
}

func (e *ErrDataShape) Error() string {
	return fmt.Sprintf("partition: data shape mismatch: N=%d vs N=%d", e.NA, e.NB)
}

// Score is the five-callback scoring protocol Intersect and Score drive in
// lock-step with refinement, per spec.md §4.1 "Score hook". Implementing
// only Score lets a caller collect per-part sizes without computing an
// information measure (the original's NoScore).
type Score interface {
	Begin(nPartsX, nPartsY int)
	SubBegin()
	Update(count int)
	SubEnd()
	End()
}

// Intersect refines the receiver in place as the intersection of p and
// other (p ← p ∩ other), per spec.md §4.1 steps 1-3, driving sc through
// Begin/SubBegin/Update/SubEnd/End as each new part is discovered. other is
// read-only; p is mutated. Returns ErrDataShape if p and other were built
// over different tuple counts.
func (p *Partition) Intersect(other *Partition, sc Score) error {
	if p.n != other.n {
		return &ErrDataShape{NA: int(p.n), NB: int(other.n)}
	}

	sc.Begin(len(p.parts), len(other.parts))

	newParts := make([]part, 0, minInt(int(p.n), len(p.parts)*len(other.parts)))
	// newPart scratch pointers live on other's parts; reset unconditionally
	// up front so a prior aborted intersection cannot leak state.
	for i := range other.parts {
		other.parts[i].newPart = noIndex
	}

	for _, pa := range p.parts {
		sc.SubBegin()
		ci := pa.first
		for ci != noIndex {
			next := p.cells[ci].next
			// Translate ci to other via positional alignment (spec.md §3
			// "Ownership summary": the i-th cell of every partition
			// refers to the same tuple).
			otherPartIdx := other.cells[ci].part
			otherPart := &other.parts[otherPartIdx]
			npi := otherPart.newPart
			if npi == noIndex {
				newParts, npi = addPart(newParts)
				otherPart.newPart = npi
			}
			np := &newParts[npi]
			p.cells[ci].next = noIndex
			if np.last == noIndex {
				np.first = ci
			} else {
				p.cells[np.last].next = ci
			}
			np.last = ci
			p.cells[ci].part = npi
			np.n++
			ci = next
		}

		for i := range other.parts {
			op := &other.parts[i]
			if op.newPart != noIndex {
				sc.Update(int(newParts[op.newPart].n))
				op.newPart = noIndex
			}
		}
		sc.SubEnd()
	}

	totalCapacity := int32(len(p.parts)) * int32(len(other.parts))
	p.nEmptyParts = totalCapacity - int32(len(newParts))
	p.parts = newParts
	sc.End()
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ScoreOnly drives sc over the receiver's current parts without any
// refinement, per spec.md §4.1 "Score hook" used directly (the original's
// Partition::score(Score)). Useful to score the "top" partition itself or
// to re-score a partition against a scorer that wasn't present during its
// construction.
func (p *Partition) ScoreOnly(sc Score) {
	sc.Begin(len(p.parts), 0)
	for _, pt := range p.parts {
		sc.Update(int(pt.n))
	}
	sc.End()
}

// Entropy returns the Shannon entropy (base 2) of the partition's part-size
// distribution, clamped to ≥0, per spec.md §4.1 "Entropy of a partition".
func (p *Partition) Entropy() float64 {
	e := &entropyOnly{}
	p.ScoreOnly(e)
	return e.h
}

// PartCounts returns the size of every part, in part-index order, for a
// caller (scoring.Column) that needs the raw distribution once rather than
// driving a Score through Intersect — used by scorers' SetTarget to cache a
// target attribute's {n_y} up front.
func (p *Partition) PartCounts() []int {
	counts := make([]int, len(p.parts))
	for i, pt := range p.parts {
		counts[i] = int(pt.n)
	}
	return counts
}

type entropyOnly struct {
	h float64
	n int32
}

func (e *entropyOnly) Begin(nPartsX, nPartsY int) { e.h, e.n = 0, 0 }
func (e *entropyOnly) SubBegin()                  {}
func (e *entropyOnly) Update(count int) {
	if count > 0 {
		e.h += xlogx(float64(count))
		e.n += int32(count)
	}
}
func (e *entropyOnly) SubEnd() {}
func (e *entropyOnly) End() {
	if e.n == 0 {
		e.h = 0
		return
	}
	e.h = log2(float64(e.n)) - e.h/float64(e.n)
	if e.h < 0 {
		e.h = 0
	}
}
