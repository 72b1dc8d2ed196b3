package fptree

// Score is the same five-callback refinement protocol partition.Score and
// scoring.Score implement, so a scoring package scorer can drive a Group
// intersection directly.
type Score interface {
	Begin(nPartsX, nPartsY int)
	SubBegin()
	Update(count int)
	SubEnd()
	End()
}

// Valued is implemented by scorers once End has run.
type Valued interface {
	Value() (score, bound float64)
}

// Scorer is the combination a Generate pass needs: a driver for the
// five-callback protocol and a way to read off the result.
type Scorer interface {
	Score
	Valued
}

// noScore drives no computation, used whenever a Group is intersected
// purely to materialize its parts (the structural, non-scoring half of
// extending a pattern — mirrors internal/miner's use of scoring.NoScore
// for the same purpose).
type noScore struct{}

func (noScore) Begin(int, int) {}
func (noScore) SubBegin()      {}
func (noScore) Update(int)     {}
func (noScore) SubEnd()        {}
func (noScore) End()           {}

// rootGroup returns the synthetic group covering every transaction in one
// part — the FP-tree analogue of partition.Top(n), and the starting
// ancestor for pattern generation's DFS.
func (t *Tree) rootGroup() *group {
	return &group{
		attr:   0,
		levels: nil,
		index:  -1,
		parts:  []part{{level: noIndex, next: noIndex, heir: noIndex, count: t.size}},
		nParts: 1,
	}
}

// ancestorPart returns the part, within ancestorGroup's current parts
// arena, that node n's tuple belongs to, climbing n's parent chain no
// further than necessary thanks to the ancestor-pointer cache (spec.md
// §4.6 "the ancestor-pointer cache shortcuts repeated climbs"), the Go
// analogue of the original's Group::getPartFromAncestorGroup.
func (t *Tree) ancestorPart(n int32, ancestorGroup *group) int32 {
	if ancestorGroup.index == -1 {
		// The synthetic root group covers the whole tree in a single
		// part regardless of which node is asked.
		return 0
	}
	nd := &t.nodes[n]
	anc := nd.ancestor
	ancLevel := t.nodes[anc].level
	ancGroupIdx := -1
	if ancLevel != noIndex {
		ancGroupIdx = int(t.levels[ancLevel].group)
	}
	if ancGroupIdx+1 < ancestorGroup.index+1 {
		anc = n
	}
	for {
		lvl := t.nodes[anc].level
		grp := -1
		if lvl != noIndex {
			grp = int(t.levels[lvl].group)
		}
		if grp == ancestorGroup.index {
			break
		}
		anc = t.nodes[anc].parent
	}
	nd.ancestor = anc
	return t.nodes[anc].part
}

// intersect rebuilds one of g or ancestor's parts — whichever has the
// larger index — so each part is the intersection of one of that group's
// levels with a part of the other, driving sc through the five-callback
// protocol exactly like internal/partition's Intersect, per spec.md §4.6
// "Group intersection".
//
// Groups are indexed by ascending entropy rank, and every transaction's
// attributes are renumbered and sorted by that same rank before the tree
// is built, so a smaller-index group's nodes are always nearer the root
// than a larger-index group's for any transaction containing both. The
// ancestor-pointer climb in ancestorPart depends on walking from a deeper
// node up to a shallower one, so whichever of g/ancestor actually carries
// the larger index must play the "self being rebuilt" role here — if it's
// passed in as ancestor instead, intersect swaps the two and recurses. In
// particular the target group always sorts last (the highest index), so
// intersecting any pattern group against it rebuilds the target's own
// scratch parts arena rather than the pattern group's — exactly what
// scoring needs, since the pattern group's structural state relative to
// its real DFS ancestor must survive for any deeper recursion that treats
// it as an ancestor in turn.
func (t *Tree) intersect(g *group, ancestor *group, sc Score) {
	if g.index < ancestor.index {
		t.intersect(ancestor, g, sc)
		return
	}

	g.nParts = len(g.levels) * ancestor.nParts
	g.parts = g.parts[:0]

	for _, li := range g.levels {
		lvl := &t.levels[li]
		for _, ni := range lvl.nodes {
			n := &t.nodes[ni]
			if n.count == 0 {
				continue
			}
			ancestorPartIdx := t.ancestorPart(n.parent, ancestor)
			ancestorPt := &ancestor.parts[ancestorPartIdx]
			pi := ancestorPt.heir
			if pi == noIndex || g.parts[pi].level != li {
				g.parts = append(g.parts, part{level: li, next: ancestorPt.heir, heir: noIndex})
				pi = int32(len(g.parts) - 1)
				ancestorPt.heir = pi
			}
			g.parts[pi].count += n.count
			n.part = pi
		}
	}

	sc.Begin(ancestor.nParts, len(g.levels))
	for i := range ancestor.parts {
		ap := &ancestor.parts[i]
		if ap.heir == noIndex {
			continue
		}
		sc.SubBegin()
		pi := ap.heir
		ap.heir = noIndex
		for pi != noIndex {
			sc.Update(int(g.parts[pi].count))
			pi = g.parts[pi].next
		}
		sc.SubEnd()
	}
	sc.End()
}
