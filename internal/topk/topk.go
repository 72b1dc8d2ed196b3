// Package topk implements the bounded best-K accumulator that supplies the
// branch-and-bound enumerator's pruning threshold: a fixed-capacity
// collection of the best-scoring attribute subsets seen so far, ordered so
// that the worst of the kept subsets is always available in O(log K) as the
// current admission bar (spec.md §4.3). It is the direct analogue of the
// original's cool::topk_queue<T>, realized over github.com/google/btree
// instead of a std::vector kept in heap order.
package topk

import "github.com/google/btree"

// Entry is one admitted candidate: the attribute subset and its score.
// Subsets tie-break on insertion order (Seq) so that among equal scores the
// earliest-found subset is preferred, matching std::stable_sort semantics
// the original gets for free from push_heap/pop_heap over a vector.
type Entry struct {
	Subset []uint16
	Score  float64
	Seq    int64
}

func less(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Seq > b.Seq
}

// Queue is a bounded best-K accumulator: at most K entries, the K
// highest-scoring ones seen via Push, ordered internally by (Score, Seq).
type Queue struct {
	tree    *btree.BTreeG[Entry]
	k       int
	nextSeq int64
}

// NewQueue returns a Queue that retains at most k entries.
func NewQueue(k int) *Queue {
	return &Queue{tree: btree.NewG(32, less), k: k}
}

// Full reports whether the queue already holds k entries.
func (q *Queue) Full() bool { return q.tree.Len() >= q.k }

// Len returns the number of entries currently retained.
func (q *Queue) Len() int { return q.tree.Len() }

// Last returns the worst of the currently kept entries — the pruning
// threshold a candidate's bound must exceed to have any chance of
// admission — and whether the queue holds any entries at all.
func (q *Queue) Last() (Entry, bool) {
	e, ok := q.tree.Min()
	return e, ok
}

// Push admits (subset, score) if the queue isn't yet full or score beats
// the current worst kept entry, evicting the worst entry when doing so
// would exceed capacity. Returns whether the entry was admitted.
func (q *Queue) Push(subset []uint16, score float64) bool {
	if q.k == 0 {
		return false
	}
	if q.Full() {
		worst, _ := q.tree.Min()
		if !(score > worst.Score) {
			return false
		}
	}
	e := Entry{Subset: append([]uint16(nil), subset...), Score: score, Seq: q.nextSeq}
	q.nextSeq++
	q.tree.ReplaceOrInsert(e)
	if q.tree.Len() > q.k {
		worst, _ := q.tree.Min()
		q.tree.Delete(worst)
	}
	return true
}

// SetMaxSize changes the queue's capacity, evicting the worst-scoring
// entries first if the new size is smaller than the current occupancy, per
// the original's set_maxsize.
func (q *Queue) SetMaxSize(k int) {
	q.k = k
	for q.tree.Len() > q.k {
		worst, _ := q.tree.Min()
		q.tree.Delete(worst)
	}
}

// Purge drains the queue and returns its entries ordered best-first,
// clearing the queue, per the original's purge(OutputIt).
func (q *Queue) Purge() []Entry {
	out := make([]Entry, 0, q.tree.Len())
	q.tree.Descend(func(e Entry) bool {
		out = append(out, e)
		return true
	})
	q.tree.Clear(false)
	return out
}
