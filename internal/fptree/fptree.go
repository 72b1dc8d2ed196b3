// Package fptree implements the alternate prefix-sharing trie
// representation for sparse datasets (spec.md §4.6): transactions are
// renumbered by ascending per-attribute entropy, sorted, and folded into a
// tree that shares common prefixes, trading the partition engine's
// per-attribute columns for per-attribute "groups" of tree nodes related
// by parent/ancestor pointers. It is the Go analogue of the original's
// FPTree (algorithms/FPTree.{hpp,cpp}), realized over index arenas rather
// than an object_pool of raw pointers, consistent with internal/partition
// and internal/varlist's arena idiom.
package fptree

import (
	"context"
	"math"
	"sort"

	"github.com/go-kit/log"
	"golang.org/x/sync/errgroup"

	"github.com/P-Fred/Smoothie/internal/obslog"
)

const noIndex int32 = -1

// Pair is one (attribute, value) of a transaction, keyed by the
// attribute's original id (not yet renumbered by entropy rank).
type Pair struct {
	Attr  uint16
	Value uint8
}

// Transaction is a sparse record: only the attributes present, each with
// its value.
type Transaction []Pair

// node is one tree node: an allocation shared by every transaction whose
// prefix up to this point agrees.
type node struct {
	parent   int32
	ancestor int32 // ancestor-pointer cache, see Tree.ancestorPart
	count    int64
	part     int32 // index into its own level's group's current parts arena
	level    int32
}

// level is a Level in the original's terms: every tree node carrying the
// same (attribute, value) pair.
type level struct {
	attr  Pair
	count int64 // total occurrences across the whole tree, for entropy
	nodes []int32
	group int32
	part  int32 // the one part this level owns before any group intersection
}

// part is a transient equivalence class built during Tree.intersect.
// heir threads into a *descendant* group's parts arena once this part is
// later used as an ancestor; next chains together every part of the
// *owning* group that maps into the same single ancestor part, since more
// than one of the owning group's levels can land on the same ancestor
// part (spec.md §4.6 "If that ancestor part's heir already points to a
// part on the same level, reuse it; otherwise append a new part").
type part struct {
	level int32
	next  int32
	heir  int32
	count int64
}

// group collects every level (value) of one attribute.
type group struct {
	attr    uint16
	levels  []int32
	entropy float64
	index   int
	parts   []part
	nParts  int
}

// Tree is one FP-tree built over a set of sparse transactions.
type Tree struct {
	nodes      []node
	levels     []level
	levelIndex map[Pair]int32
	groups     map[uint16]*group

	// sortedGroups holds every non-target group ascending by entropy,
	// followed by the target group last, per spec.md §4.6 step 3.
	sortedGroups []*group
	target       uint16
	targetGroup  *group

	root int32
	size int64

	logger log.Logger
}

// New returns an empty Tree that will treat target as the attribute all
// pattern scoring is relative to.
func New(target uint16) *Tree {
	return &Tree{
		levelIndex: make(map[Pair]int32),
		groups:     make(map[uint16]*group),
		root:       noIndex,
		target:     target,
		logger:     obslog.Nop(),
	}
}

// SetLogger installs logger for diagnostic output; nil restores the
// default no-op logger.
func (t *Tree) SetLogger(logger log.Logger) {
	if logger == nil {
		logger = obslog.Nop()
	}
	t.logger = logger
}

// Size returns the number of transactions folded into the tree.
func (t *Tree) Size() int64 { return t.size }

// NVars returns the number of attribute groups, including the target.
func (t *Tree) NVars() int { return len(t.groups) }

// levelFor returns (creating if needed) the Level for attr, registering a
// new Group the first time its attribute is seen.
func (t *Tree) levelFor(p Pair) int32 {
	if idx, ok := t.levelIndex[p]; ok {
		return idx
	}
	g, ok := t.groups[p.Attr]
	if !ok {
		g = &group{attr: p.Attr}
		t.groups[p.Attr] = g
	}
	t.levels = append(t.levels, level{attr: p, group: noIndex})
	idx := int32(len(t.levels) - 1)
	t.levelIndex[p] = idx
	g.levels = append(g.levels, idx)
	return idx
}

// Build folds txns into the tree per spec.md §4.6 steps 1-5.
func (t *Tree) Build(txns []Transaction) error {
	for _, txn := range txns {
		for _, p := range txn {
			idx := t.levelFor(p)
			t.levels[idx].count++
		}
	}

	for attr, g := range t.groups {
		g.attr = attr
	}
	t.sortedGroups = t.sortedGroups[:0]
	var targetGroup *group
	for _, g := range t.groups {
		if g.attr == t.target {
			targetGroup = g
			continue
		}
		t.sortedGroups = append(t.sortedGroups, g)
	}
	if targetGroup == nil {
		targetGroup = &group{attr: t.target}
		t.groups[t.target] = targetGroup
	}
	t.targetGroup = targetGroup

	for _, g := range t.sortedGroups {
		t.computeEntropy(g)
	}
	sort.Slice(t.sortedGroups, func(i, j int) bool { return t.sortedGroups[i].entropy < t.sortedGroups[j].entropy })
	t.sortedGroups = append(t.sortedGroups, targetGroup)
	t.computeEntropy(targetGroup)

	rank := make(map[uint16]int, len(t.sortedGroups))
	for i, g := range t.sortedGroups {
		g.index = i
		rank[g.attr] = i
		g.parts = make([]part, len(g.levels))
		for pos, li := range g.levels {
			t.levels[li].group = int32(i)
			t.levels[li].part = int32(pos) // one part per level before any intersection, positional within g.parts
			g.parts[pos] = part{level: li, next: noIndex, heir: noIndex}
		}
		g.nParts = len(g.levels)
	}

	ranked := make([][]Pair, len(txns))
	for i, txn := range txns {
		cp := append(Transaction(nil), txn...)
		sort.Slice(cp, func(a, b int) bool { return rank[cp[a].Attr] < rank[cp[b].Attr] })
		ranked[i] = cp
	}
	sort.Slice(ranked, func(i, j int) bool { return lessRanked(ranked[i], ranked[j], rank) })

	t.nodes = append(t.nodes, node{parent: noIndex, ancestor: noIndex, part: noIndex, level: noIndex})
	t.root = 0

	var path []int32
	var prev []Pair
	var count int64
	closePath := func() {
		if count == 0 {
			return
		}
		cur := t.root
		if len(path) > 0 {
			cur = path[len(path)-1]
		}
		for cur != noIndex {
			nd := &t.nodes[cur]
			nd.count += count
			if nd.level != noIndex {
				lvl := &t.levels[nd.level]
				g := t.sortedGroups[lvl.group]
				g.parts[nd.part].count += count
			}
			cur = nd.parent
		}
		t.size += count
	}

	for _, txn := range ranked {
		common := commonPrefixLen(prev, txn)
		if common == len(prev) && common == len(txn) {
			count++
			continue
		}
		closePath()
		count = 1
		path = path[:common]
		cur := t.root
		if common > 0 {
			cur = path[common-1]
		}
		for _, p := range txn[common:] {
			li := t.levelFor(p)
			n := t.addNode(li, cur)
			path = append(path, n)
			cur = n
		}
		prev = txn
	}
	closePath()

	obslog.Info(t.logger, "fp-tree built", "transactions", t.size, "nodes", len(t.nodes), "groups", len(t.groups))
	return nil
}

// addNode allocates a fresh node at level li under parent, owned by li's
// Level, inheriting that level's single build-time part (spec.md §4.6
// step 5).
func (t *Tree) addNode(li int32, parent int32) int32 {
	lvl := &t.levels[li]
	t.nodes = append(t.nodes, node{parent: parent, ancestor: int32(len(t.nodes)), part: lvl.part, level: li})
	idx := int32(len(t.nodes) - 1)
	t.nodes[idx].ancestor = idx
	lvl.nodes = append(lvl.nodes, idx)
	return idx
}

func (t *Tree) computeEntropy(g *group) {
	var h float64
	var total int64
	for _, li := range g.levels {
		c := t.levels[li].count
		if c > 0 {
			h -= float64(c) * log2(float64(c))
		}
		total += c
	}
	if total != 0 {
		h = h/float64(total) + log2(float64(total))
	}
	g.entropy = h
}

func commonPrefixLen(a, b []Pair) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func lessRanked(a, b []Pair, rank map[uint16]int) bool {
	na, nb := len(a), len(b)
	for i := 0; i < na && i < nb; i++ {
		if a[i] != b[i] {
			ra, rb := rank[a[i].Attr], rank[b[i].Attr]
			if ra != rb {
				return ra < rb
			}
			return a[i].Value < b[i].Value
		}
	}
	return na < nb
}

// Skip reassigns every node belonging to g's levels to its parent's
// current part, one goroutine per level joined by an errgroup barrier —
// the FP-tree build's only parallel step (spec.md §5 "fixed-size worker
// pool to parallelize 'skip-group' level-walks ... synchronized by a join
// barrier"). Used when the DFS path passes over g without intersecting it,
// so lower groups' ancestor climbs don't have to stop at g.
func (t *Tree) Skip(g *group) error {
	obslog.Debug(t.logger, "skipping group", "attr", g.attr, "levels", len(g.levels))
	eg, _ := errgroup.WithContext(context.Background())
	for _, li := range g.levels {
		li := li
		eg.Go(func() error {
			for _, ni := range t.levels[li].nodes {
				n := &t.nodes[ni]
				n.part = t.nodes[n.parent].part
			}
			return nil
		})
	}
	return eg.Wait()
}

func log2(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Log2(x)
}
