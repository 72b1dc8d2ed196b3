// Command smoothie is the CLI driver (spec.md §6): it reads a JSON
// transaction flow, builds the columnar partitions (or, under --fp-tree,
// the prefix tree) over every attribute but the target, enumerates
// attribute subsets scored against the target, and writes the top-K
// (subset, score) pairs back out as JSON, plus an optional statistics
// report. Flag parsing uses the standard library's flag package — CLI
// parsing itself is out of scope per spec.md §1, and no pack example
// carries a CLI framework strongly enough represented to justify pulling
// one in here (see DESIGN.md).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/go-kit/log"

	"github.com/P-Fred/Smoothie/internal/fptree"
	"github.com/P-Fred/Smoothie/internal/miner"
	"github.com/P-Fred/Smoothie/internal/obslog"
	"github.com/P-Fred/Smoothie/internal/partition"
	"github.com/P-Fred/Smoothie/internal/scoring"
	"github.com/P-Fred/Smoothie/internal/stats"
	"github.com/P-Fred/Smoothie/internal/stream"
	"github.com/P-Fred/Smoothie/internal/topk"
)

func main() {
	logger := obslog.Default()
	if err := run(os.Args[1:], logger); err != nil {
		obslog.Error(logger, "run failed", err)
		os.Exit(1)
	}
}

type config struct {
	target       int
	k            int
	threads      int
	rfi          bool
	smi          bool
	alpha        float64
	suzuki       bool
	adjusted     bool
	significance float64
	opus         bool
	fpTree       bool
	inputPath    string
	outputPath   string
	statsPath    string
}

func parseFlags(args []string) (config, error) {
	fs := flag.NewFlagSet("smoothie", flag.ContinueOnError)
	cfg := config{k: 1, alpha: 1.0, significance: 0.05}

	fs.IntVar(&cfg.target, "target", 0, "target attribute id; negative indexes from the end (required)")
	fs.IntVar(&cfg.k, "K", 1, "number of top subsets to keep")
	fs.IntVar(&cfg.threads, "threads", 0, "worker count; 0 leaves GOMAXPROCS untouched")
	fs.BoolVar(&cfg.rfi, "rfi", false, "score with reliable fraction of information")
	fs.BoolVar(&cfg.smi, "smi", false, "score with smoothed mutual information (the default scorer)")
	fs.Float64Var(&cfg.alpha, "alpha", 1.0, "smoothing parameter for --smi ([α] in spec.md)")
	fs.BoolVar(&cfg.suzuki, "suzuki", false, "score with Suzuki mutual information")
	fs.BoolVar(&cfg.adjusted, "adjusted", false, "score with chi-squared adjusted dependency")
	fs.Float64Var(&cfg.significance, "significance", 0.05, "significance level for --adjusted, a relative threshold in [0,1]")
	fs.BoolVar(&cfg.opus, "opus", false, "use the OPUS traversal ordering instead of the standard one")
	fs.BoolVar(&cfg.fpTree, "fp-tree", false, "enumerate over the FP-tree representation instead of the partition-based miner")
	fs.StringVar(&cfg.inputPath, "input", "", "input file path (stdin if empty)")
	fs.StringVar(&cfg.outputPath, "output", "", "output file path (stdout if empty)")
	fs.StringVar(&cfg.statsPath, "stats", "", "statistics file path (not written if empty)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	seen := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	if !seen["target"] {
		return cfg, errors.New("smoothie: --target is required")
	}
	if cfg.k <= 0 {
		cfg.k = 1
	}
	return cfg, nil
}

func run(args []string, logger log.Logger) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}

	if cfg.threads > 0 {
		// The original hands FPTree::build a fixed-size thread pool; an
		// errgroup-per-level (internal/fptree.Skip) scales with
		// GOMAXPROCS instead of a pool it owns, so --threads maps onto
		// the runtime's own scheduler width rather than a pool size.
		runtime.GOMAXPROCS(cfg.threads)
	}

	scorerKind, err := resolveScorerKind(cfg)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cfg.inputPath)
	if err != nil {
		return err
	}
	defer closeIn()
	out, closeOut, err := openOutput(cfg.outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	var statsOut io.Writer
	if cfg.statsPath != "" {
		sf, err := os.Create(cfg.statsPath)
		if err != nil {
			return err
		}
		defer sf.Close()
		statsOut = sf
	}

	return execute(cfg, scorerKind, in, out, statsOut, logger)
}

// execute runs one end-to-end mining pass: read transactions from in,
// enumerate and score subsets per cfg, write results to out and (if
// statsOut is non-nil) a report to statsOut. Split out from run so tests
// can drive it directly over in-memory readers/writers instead of files.
func execute(cfg config, scorerKind string, in io.Reader, out io.Writer, statsOut io.Writer, logger log.Logger) error {
	if scorerKind == "adjusted" {
		if err := miner.ValidateThreshold("significance", cfg.significance); err != nil {
			return err
		}
	}

	started := time.Now()

	txns, err := stream.ReadTransactions(in)
	if err != nil {
		return err
	}

	ps := partition.Load(toPartitionTxns(txns))
	attrs := ps.Attrs()
	targetAttr, err := resolveTarget(cfg.target, attrs)
	if err != nil {
		return err
	}
	targetCol := ps.Column(targetAttr)
	if targetCol == nil {
		return fmt.Errorf("smoothie: unknown target attribute %d", targetAttr)
	}

	newScorer := func() scorerValue {
		sc := buildScorer(scorerKind, cfg.alpha, cfg.significance)
		if t, ok := sc.(scoring.Target); ok {
			t.SetTarget(targetCol)
		}
		return sc
	}

	var results []stream.Result
	var patternNumber int
	if cfg.fpTree {
		results, patternNumber, err = runFPTree(txns, targetAttr, cfg, newScorer, logger)
	} else {
		cols := make(map[uint16]*partition.Partition, len(attrs))
		candidates := make([]uint16, 0, len(attrs))
		for _, a := range attrs {
			if a == targetAttr {
				continue
			}
			cols[a] = ps.Column(a)
			candidates = append(candidates, a)
		}
		results, patternNumber = runMiner(cols, targetCol, cfg, newScorer, candidates, ps.N(), logger)
	}
	if err != nil {
		return err
	}

	if err := stream.WriteResults(out, results); err != nil {
		return err
	}

	if statsOut != nil {
		report := stats.Report{TotalTime: time.Since(started), PatternNumber: patternNumber}
		if err := report.Write(statsOut); err != nil {
			return err
		}
	}

	obslog.Info(logger, "run complete", "results", len(results), "patterns", patternNumber)
	return nil
}

// resolveTarget maps cfg.target onto one of the dataset's observed
// attribute ids, per spec.md §6 "--target <int>: target attribute id;
// negative indexes from the end". A non-negative value names an
// attribute id directly; a negative value counts back from the end of
// the sorted attribute list, Python-slice style.
func resolveTarget(target int, attrs []uint16) (uint16, error) {
	if target >= 0 {
		for _, a := range attrs {
			if int(a) == target {
				return a, nil
			}
		}
		return 0, fmt.Errorf("smoothie: unknown target attribute %d", target)
	}
	idx := len(attrs) + target
	if idx < 0 || idx >= len(attrs) {
		return 0, fmt.Errorf("smoothie: target index %d out of range for %d attributes", target, len(attrs))
	}
	return attrs[idx], nil
}

func resolveScorerKind(cfg config) (string, error) {
	kind := "smi"
	chosen := 0
	if cfg.rfi {
		kind = "rfi"
		chosen++
	}
	if cfg.smi {
		kind = "smi"
		chosen++
	}
	if cfg.suzuki {
		kind = "suzuki"
		chosen++
	}
	if cfg.adjusted {
		kind = "adjusted"
		chosen++
	}
	if chosen > 1 {
		return "", errors.New("smoothie: at most one of --rfi/--smi/--suzuki/--adjusted may be given")
	}
	return kind, nil
}

// scorerValue is the method set every internal/scoring variant and
// internal/miner.Scorer/internal/fptree.Scorer share; a value of this
// type is assignable to either without an explicit conversion, since Go
// interface satisfaction is structural.
type scorerValue interface {
	Begin(nPartsX, nPartsY int)
	SubBegin()
	Update(count int)
	SubEnd()
	End()
	Value() (score, bound float64)
}

func buildScorer(kind string, alpha, significance float64) scorerValue {
	switch kind {
	case "rfi":
		return scoring.NewReliableFractionOfInformation()
	case "suzuki":
		return scoring.NewSuzukiInformation()
	case "adjusted":
		return scoring.NewAdjustedDependency(significance)
	default:
		return scoring.NewSmoothedMutualInformation(alpha)
	}
}

func runMiner(
	cols map[uint16]*partition.Partition,
	target *partition.Partition,
	cfg config,
	newScorer func() scorerValue,
	attrs []uint16,
	n int,
	logger log.Logger,
) ([]stream.Result, int) {
	regime := miner.Standard
	if cfg.opus {
		regime = miner.OPUS
	}
	m := miner.New(cols, target, newScorer(), miner.Options{K: cfg.k, Regime: regime})
	m.SetLogger(logger)
	out := m.Run(attrs, n)
	return toResults(out), m.PatternNumber()
}

func toResults(out []miner.Result) []stream.Result {
	results := make([]stream.Result, len(out))
	for i, r := range out {
		results[i] = stream.Result{Subset: sortedCopy(r.Attrs), Score: r.Score}
	}
	return results
}

func sortedCopy(attrs []uint16) []uint16 {
	cp := make([]uint16, len(attrs))
	copy(cp, attrs)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	return cp
}

func runFPTree(
	txns []stream.Transaction,
	targetAttr uint16,
	cfg config,
	newScorer func() scorerValue,
	logger log.Logger,
) ([]stream.Result, int, error) {
	tree := fptree.New(targetAttr)
	tree.SetLogger(logger)
	if err := tree.Build(toFPTreeTxns(txns)); err != nil {
		return nil, 0, err
	}

	proc := &fpProcessor{queue: topk.NewQueue(cfg.k)}
	factory := func() fptree.Scorer { return newScorer() }
	tree.Generate(proc, factory)

	entries := proc.queue.Purge()
	results := make([]stream.Result, len(entries))
	for i, e := range entries {
		results[i] = stream.Result{Subset: sortedCopy(e.Subset), Score: e.Score}
	}
	return results, proc.patternNumber, nil
}

// fpProcessor bridges fptree.Tree.Generate's push/emit/pop pattern walk
// into internal/topk's bounded best-K queue, the same sink
// internal/miner drains from.
type fpProcessor struct {
	path          []uint16
	queue         *topk.Queue
	patternNumber int
}

func (p *fpProcessor) Push(attr uint16) { p.path = append(p.path, attr) }
func (p *fpProcessor) Pop()             { p.path = p.path[:len(p.path)-1] }

func (p *fpProcessor) Emit(score, bound float64) {
	p.patternNumber++
	p.queue.Push(p.path, score)
}

func (p *fpProcessor) ToDevelop(bound float64) bool {
	if !p.queue.Full() {
		return true
	}
	worst, _ := p.queue.Last()
	return bound > worst.Score
}

func toPartitionTxns(txns []stream.Transaction) []partition.Transaction {
	out := make([]partition.Transaction, len(txns))
	for i, txn := range txns {
		row := make(partition.Transaction, len(txn))
		for j, av := range txn {
			row[j] = partition.AttrValue(av)
		}
		out[i] = row
	}
	return out
}

func toFPTreeTxns(txns []stream.Transaction) []fptree.Transaction {
	out := make([]fptree.Transaction, len(txns))
	for i, txn := range txns {
		row := make(fptree.Transaction, len(txn))
		for j, av := range txn {
			row[j] = fptree.Pair(av)
		}
		out[i] = row
	}
	return out
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
