package partition

import "sort"

// Transaction is an ordered list of (attribute, value) pairs, attribute ids
// ascending and unique within the transaction, per spec.md §3.
type Transaction []AttrValue

// Partitions is the columnar store of one Partition per attribute plus the
// "top" partition over all tuples, aligned by tuple index (spec.md §3
// "Additional invariant across the Partitions container"). It is the Go
// analogue of the original's Partitions / Column-Concept model.
type Partitions struct {
	top     *Partition
	columns map[uint16]*Partition
	attrs   []uint16 // sorted attribute ids present
	n       int
}

// Load scans txns once, building one Partition per attribute encountered
// and the "top" partition, per spec.md §4.1 "Construct". Attributes absent
// from a given transaction are not extended on that tuple (sparse
// partitions, per spec.md §4.1): such partitions only make sense to
// intersect with others built over the same tuple count, so Load records
// each column's own tuple count and leaves shape mismatches to be caught
// by Intersect's ErrDataShape at mining time.
func Load(txns []Transaction) *Partitions {
	builders := make(map[uint16]*Builder)
	order := make([]uint16, 0)

	for _, txn := range txns {
		for _, av := range txn {
			b, ok := builders[av.Attr]
			if !ok {
				b = NewBuilder(len(txns))
				builders[av.Attr] = b
				order = append(order, av.Attr)
			}
			b.Add(av.Value)
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	cols := make(map[uint16]*Partition, len(builders))
	for _, a := range order {
		cols[a] = builders[a].Build()
	}

	return &Partitions{
		top:     Top(len(txns)),
		columns: cols,
		attrs:   order,
		n:       len(txns),
	}
}

// Top returns the partition with every tuple in a single part.
func (ps *Partitions) Top() *Partition { return ps.top }

// Column returns the partition for attribute a, or nil if a was never
// observed while loading.
func (ps *Partitions) Column(a uint16) *Partition { return ps.columns[a] }

// Attrs returns the sorted list of attribute ids present in the dataset.
func (ps *Partitions) Attrs() []uint16 { return append([]uint16(nil), ps.attrs...) }

// N returns the number of tuples loaded.
func (ps *Partitions) N() int { return ps.n }
