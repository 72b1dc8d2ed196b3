// Package varlist implements the attribute working set the branch-and-bound
// enumerator walks at each recursion level: an intrusive doubly linked list
// supporting O(1) removal and, crucially, O(1) reinsertion of a removed
// attribute at exactly the slot it was removed from (spec.md §4.4, the
// OPUS ordering trick — "remove all accepted siblings before recursing,
// reinsert strictly left-to-right").
//
// The original's NodeList (gimlet/mining/list.hpp) gets this "reinsert
// where you were" property from a C++-specific trick: its Remove only
// rewires the two neighbors' pointers, leaving the removed node's own
// prev/next untouched, so the node can later relink itself with no
// bookkeeping. Go's container/list deliberately forbids exactly that: its
// Remove clears the removed Element's own next/prev so a stale Element
// can't be reused. Rather than fight that safety guarantee, this package
// keeps the same index-arena idiom internal/partition already uses for its
// Cell/Part chains — a slice of nodes addressed by int32 index, where
// removing a node only ever touches its neighbors, so the node's own
// fields still describe its original position when it's time to reinsert.
package varlist

const noIndex int32 = -1

type node struct {
	attr       uint16
	prev, next int32
	linked     bool
}

// List is the working set of attribute ids considered for extension at one
// recursion level of the miner. Attributes are addressed by Elem, a stable
// handle that survives removal so the caller can reinsert it later at its
// original position without recording any extra bookkeeping.
type List struct {
	nodes []node
	head  int32
	tail  int32
	size  int
}

// Elem is a stable handle to one attribute's slot in a List.
type Elem int32

// New returns a List holding attrs, in order.
func New(attrs []uint16) *List {
	l := &List{
		nodes: make([]node, len(attrs)),
		head:  noIndex,
		tail:  noIndex,
	}
	for i, a := range attrs {
		l.nodes[i] = node{attr: a, prev: int32(i - 1), next: int32(i + 1), linked: true}
	}
	if len(attrs) > 0 {
		l.nodes[len(attrs)-1].next = noIndex
		l.head = 0
		l.tail = int32(len(attrs) - 1)
	}
	l.size = len(attrs)
	return l
}

// Len returns the number of attributes currently linked into the list.
func (l *List) Len() int { return l.size }

// Front returns the first linked element, or false if the list is empty.
func (l *List) Front() (Elem, bool) {
	if l.head == noIndex {
		return 0, false
	}
	return Elem(l.head), true
}

// Next returns the element following e, or false if e was the last one.
func (l *List) Next(e Elem) (Elem, bool) {
	n := l.nodes[e].next
	if n == noIndex {
		return 0, false
	}
	return Elem(n), true
}

// Attr returns the attribute id held at e.
func (l *List) Attr(e Elem) uint16 { return l.nodes[e].attr }

// Remove unlinks e from the list. e's own prev/next fields are left
// pointing at its former neighbors, so a later Reinsert(e) restores it to
// exactly this position without needing a saved mark.
func (l *List) Remove(e Elem) {
	n := &l.nodes[e]
	if !n.linked {
		return
	}
	if n.prev != noIndex {
		l.nodes[n.prev].next = n.next
	} else {
		l.head = n.next
	}
	if n.next != noIndex {
		l.nodes[n.next].prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.linked = false
	l.size--
}

// Reinsert relinks e at the position it was Remove'd from. Correct only
// when no attribute that used to sit strictly between e and its former
// neighbors has itself been removed and not yet reinserted — exactly the
// invariant the OPUS traversal keeps by removing and reinserting its
// siblings in strict mirrored left-to-right order (spec.md §4.4).
func (l *List) Reinsert(e Elem) {
	n := &l.nodes[e]
	if n.linked {
		return
	}
	if n.prev != noIndex {
		l.nodes[n.prev].next = int32(e)
	} else {
		l.head = int32(e)
	}
	if n.next != noIndex {
		l.nodes[n.next].prev = int32(e)
	} else {
		l.tail = int32(e)
	}
	n.linked = true
	l.size++
}

// Attrs returns a snapshot of the attributes currently linked, in order.
func (l *List) Attrs() []uint16 {
	out := make([]uint16, 0, l.size)
	for e, ok := l.Front(); ok; e, ok = l.Next(e) {
		out = append(out, l.Attr(e))
	}
	return out
}
