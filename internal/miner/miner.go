// Package miner implements the branch-and-bound enumerator that walks
// attribute subsets in search of the K most informative ones relative to a
// target attribute (spec.md §4.4), driven by internal/partition's
// intersection, internal/scoring's scorers, internal/topk's bounded
// best-K queue, and internal/varlist's shared working set of candidate
// attributes. It is the direct analogue of the original's
// BranchAndBoundMiner and BranchTopMiner (search_algorithms.hpp).
package miner

import (
	"cmp"

	"github.com/go-kit/log"
	"golang.org/x/exp/slices"

	"github.com/P-Fred/Smoothie/internal/obslog"
	"github.com/P-Fred/Smoothie/internal/partition"
	"github.com/P-Fred/Smoothie/internal/scoring"
	"github.com/P-Fred/Smoothie/internal/topk"
	"github.com/P-Fred/Smoothie/internal/varlist"
)

// Regime selects which traversal/pruning discipline the enumerator runs,
// per spec.md §4.4's "Standard" and "OPUS" orderings, plus the added
// BranchTop regime supplementing the distillation from the original's
// BranchTopMiner.
type Regime int

const (
	// Standard removes and reinserts each accepted sibling one at a time,
	// immediately before and after recursing into it.
	Standard Regime = iota
	// OPUS removes every accepted sibling up front (right-to-left) before
	// recursing into any of them, then reinserts strictly left-to-right —
	// the ordering trick that guarantees every subset is visited exactly
	// once (spec.md §4.4).
	OPUS
	// BranchTop only emits a subset whose score is a local peak against
	// both its ancestors and its descendants, tracking the best score
	// seen on each root-to-leaf path (the original's BranchTopMiner,
	// dropped by spec.md's distillation, restored here as permitted
	// enrichment — see DESIGN.md).
	BranchTop
)

// Scorer is the subset of scoring.Score plus scoring.Valued a Miner drives
// directly: the five refinement callbacks and the resulting (score,
// bound) pair.
type Scorer interface {
	scoring.Score
	Value() (score, bound float64)
}

// Options configures one mining run.
type Options struct {
	K      int
	Regime Regime
	// AcceptScoreDecrease, used only by Regime == BranchTop, matches the
	// original's !reject_score_decrease: when false, an extension whose
	// score is lower than its parent's is pruned outright instead of
	// merely being ineligible for emission.
	AcceptScoreDecrease bool
}

// Result is one accepted subset and the score it achieved.
type Result struct {
	Attrs []uint16
	Score float64
}

// Miner enumerates subsets of the non-target attributes, scoring each
// against a fixed target column.
type Miner struct {
	cols          map[uint16]*partition.Partition
	target        *partition.Partition
	scorer        Scorer
	queue         *topk.Queue
	opts          Options
	patternNumber int
	logger        log.Logger
}

// New returns a Miner over the given per-attribute partitions, scoring
// subsets of attrs (which must not include target) against target's
// partition using scorer. scorer must already have SetTarget called on it
// if it implements scoring.Target.
func New(cols map[uint16]*partition.Partition, target *partition.Partition, scorer Scorer, opts Options) *Miner {
	if opts.K <= 0 {
		opts.K = 1
	}
	return &Miner{
		cols:   cols,
		target: target,
		scorer: scorer,
		queue:  topk.NewQueue(opts.K),
		opts:   opts,
		logger: obslog.Nop(),
	}
}

// PatternNumber returns how many subsets (including the empty one) the
// last Run visited, for internal/stats reporting.
func (m *Miner) PatternNumber() int { return m.patternNumber }

// SetLogger installs logger for diagnostic output; nil restores the
// default no-op logger. cmd/smoothie wires its own logger in here.
func (m *Miner) SetLogger(logger log.Logger) {
	if logger == nil {
		logger = obslog.Nop()
	}
	m.logger = logger
}

// node is one subset under consideration: its attribute pattern, the
// partition it induces (the intersection of every attribute in pattern),
// and its score against the target.
type node struct {
	pattern []uint16
	col     *partition.Partition
	score   float64
	bound   float64
}

// Run enumerates subsets of attrs (the candidate attribute ids, excluding
// the target), starting from the empty subset, and returns the top K by
// score, best first.
func (m *Miner) Run(attrs []uint16, n int) []Result {
	m.patternNumber = 0
	top := partition.Top(n)
	score, bound := m.score(top)
	root := node{col: top, score: score, bound: bound}

	obslog.Debug(m.logger, "mining started", "attrs", len(attrs), "regime", m.opts.Regime, "k", m.opts.K)

	vars := varlist.New(attrs)
	if m.admissible(root.bound) {
		switch m.opts.Regime {
		case BranchTop:
			m.mineBranchTop(root, root.score, vars)
		default:
			m.mine(root, vars)
		}
	}

	entries := m.queue.Purge()
	out := make([]Result, len(entries))
	for i, e := range entries {
		out[i] = Result{Attrs: e.Subset, Score: e.Score}
	}
	obslog.Info(m.logger, "mining finished", "patterns", m.patternNumber, "results", len(out))
	return out
}

// score clones col, intersects the clone against the target (leaving col
// itself intact for further extension), and reads the scorer's result —
// the Go analogue of the original's const-qualified intersect overload
// ("Partition copy = *this; return copy.intersect(...)"), used whenever a
// candidate partition must be evaluated without being consumed.
func (m *Miner) score(col *partition.Partition) (score, bound float64) {
	probe := col.Clone()
	_ = probe.Intersect(m.target, m.scorer)
	score, bound = m.scorer.Value()
	if bound < score {
		// Never incorrect results (spec.md §7): a bound below its own
		// score can only cause a missed prune, not a wrong answer, but
		// it's worth a diagnostic since it means the bound isn't as
		// tight as the scorer assumes.
		obslog.Debug(m.logger, "bound below score", "score", score, "bound", bound)
	}
	return score, bound
}

// admissible reports whether a candidate with the given upper bound could
// still unseat the current worst kept result.
func (m *Miner) admissible(bound float64) bool {
	if !m.queue.Full() {
		return true
	}
	worst, _ := m.queue.Last()
	return bound > worst.Score
}

// push admits pattern into the top-K queue, including the empty subset
// at the root of the search — the original's mine() calls
// processor_.push(pattern_, current.state_) unconditionally, before
// checking whether field (the edge just taken) is empty, so the root's
// score is a candidate result like any other (spec.md §8 S1 expects the
// empty subset itself in the top-1 output).
func (m *Miner) push(pattern []uint16, score float64) {
	m.queue.Push(pattern, score)
}

// extend builds the subset node for pattern+attr: the structural
// intersection of cur's partition with attr's column (growing the
// subset), separate from and prior to scoring it against the target.
func (m *Miner) extend(cur node, attr uint16) node {
	newCol := cur.col.Clone()
	_ = newCol.Intersect(m.cols[attr], scoring.NoScore{})
	pattern := make([]uint16, len(cur.pattern)+1)
	copy(pattern, cur.pattern)
	pattern[len(cur.pattern)] = attr
	score, bound := m.score(newCol)
	return node{pattern: pattern, col: newCol, score: score, bound: bound}
}

type candidate struct {
	elem varlist.Elem
	node node
}

// buildCandidates walks vars once, extending cur by every remaining
// attribute, partitioning the results into admissible candidates (kept in
// vars) and inadmissible ones (removed from vars immediately, matching
// the original's "removed.push_back(field.remove())" for rejects).
func (m *Miner) buildCandidates(cur node, vars *varlist.List) (candidates []candidate, removed []varlist.Elem) {
	e, ok := vars.Front()
	for ok {
		next, hasNext := vars.Next(e)
		attr := vars.Attr(e)
		n := m.extend(cur, attr)
		if m.admissible(n.bound) {
			candidates = append(candidates, candidate{elem: e, node: n})
		} else {
			vars.Remove(e)
			removed = append(removed, e)
		}
		if !hasNext {
			break
		}
		e = next
	}
	// Explore the most promising bound first so the queue tightens
	// earlier, sharpening admissibility checks for the remaining
	// siblings (spec.md §4.4 "visit order affects pruning yield, not
	// correctness").
	slices.SortFunc(candidates, func(a, b candidate) int { return cmp.Compare(b.node.bound, a.node.bound) })
	return candidates, removed
}

// mine implements the Standard and OPUS regimes: visit cur, then its
// admissible extensions, restoring vars to its entry state before
// returning.
func (m *Miner) mine(cur node, vars *varlist.List) {
	m.push(cur.pattern, cur.score)
	m.patternNumber++

	candidates, removed := m.buildCandidates(cur, vars)

	switch m.opts.Regime {
	case OPUS:
		for i := len(candidates) - 1; i >= 0; i-- {
			vars.Remove(candidates[i].elem)
		}
		for _, c := range candidates {
			if m.admissible(c.node.bound) {
				m.mine(c.node, vars)
			}
			vars.Reinsert(c.elem)
		}
	default:
		for _, c := range candidates {
			vars.Remove(c.elem)
			removed = append(removed, c.elem)
			if m.admissible(c.node.bound) {
				m.mine(c.node, vars)
			}
		}
	}

	for i := len(removed) - 1; i >= 0; i-- {
		vars.Reinsert(removed[i])
	}
}

// mineBranchTop implements the BranchTop regime: a subset is only
// recorded when its score is a local peak, no ancestor on the current
// path and no descendant scores higher, per the original's
// BranchTopMiner. It returns the best score found anywhere in cur's
// subtree (including cur itself) so the caller can fold it into its own
// peak test.
func (m *Miner) mineBranchTop(cur node, bestAncestor float64, vars *varlist.List) float64 {
	if cur.score > bestAncestor {
		bestAncestor = cur.score
	}
	m.patternNumber++

	e, ok := vars.Front()
	var candidates []candidate
	var removed []varlist.Elem
	for ok {
		next, hasNext := vars.Next(e)
		attr := vars.Attr(e)
		n := m.extend(cur, attr)
		keep := m.admissible(n.bound) && (m.opts.AcceptScoreDecrease || n.score >= cur.score)
		if keep {
			candidates = append(candidates, candidate{elem: e, node: n})
		} else {
			vars.Remove(e)
			removed = append(removed, e)
		}
		if !hasNext {
			break
		}
		e = next
	}
	slices.SortFunc(candidates, func(a, b candidate) int { return cmp.Compare(b.node.bound, a.node.bound) })

	bestOffspring := cur.score
	for _, c := range candidates {
		vars.Remove(c.elem)
		removed = append(removed, c.elem)
		if m.admissible(c.node.bound) {
			best := m.mineBranchTop(c.node, bestAncestor, vars)
			if best > bestOffspring {
				bestOffspring = best
			}
		}
	}

	if bestAncestor <= cur.score && bestOffspring <= cur.score {
		m.push(cur.pattern, cur.score)
	}

	for i := len(removed) - 1; i >= 0; i-- {
		vars.Reinsert(removed[i])
	}
	return bestOffspring
}
