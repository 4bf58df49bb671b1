package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/NevoleMarek/Weighted-SAT-solver/anneal"
	"github.com/NevoleMarek/Weighted-SAT-solver/bnb"
	"github.com/NevoleMarek/Weighted-SAT-solver/formula"
	"github.com/NevoleMarek/Weighted-SAT-solver/solver"
)

func newSolveCmd() *cobra.Command {
	var (
		engine   string
		timeout  time.Duration
		parallel int
		verbose  bool
		exactCfg = bnb.DefaultConfig()
		saCfg    = anneal.DefaultConfig()
	)
	cmd := &cobra.Command{
		Use:   "solve [flags] file.cnf",
		Short: "Solve a weighted instance",
		Long: `Solve reads an instance in the extended DIMACS format and prints the
answer as "c", "o", "s" and "v" lines. An "o" line is emitted every time the
search improves its best assignment. The exact engine proves optimality or
unsatisfiability when it runs to completion; the annealing engine only ever
reports the best assignment it found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(args[0], engine, timeout, parallel, verbose, exactCfg, saCfg)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&engine, "engine", "e", "bnb", `engine: "bnb" (exact) or "anneal" (heuristic)`)
	flags.DurationVar(&timeout, "timeout", 0, "give up after this long (0 means none)")
	flags.IntVar(&parallel, "parallel", 1, "run this many annealers concurrently and keep the best answer")
	flags.BoolVarP(&verbose, "verbose", "v", false, "report search progress and statistics")
	addExactFlags(flags, &exactCfg)
	addAnnealFlags(flags, &saCfg)
	return cmd
}

func addExactFlags(flags *pflag.FlagSet, cfg *bnb.Config) {
	flags.Var(&cfg.Order, "order", `exact branching order: "index" or "weight"`)
	flags.Int64Var(&cfg.MaxNodes, "max-nodes", cfg.MaxNodes, "stop the exact search after this many nodes (0 means none)")
}

func addAnnealFlags(flags *pflag.FlagSet, cfg *anneal.Config) {
	flags.Float64Var(&cfg.InitialTemp, "t0", cfg.InitialTemp, "starting temperature")
	flags.Float64Var(&cfg.Alpha, "alpha", cfg.Alpha, "geometric cooling rate, in (0, 1)")
	flags.IntVar(&cfg.IterationsPerTemp, "iters-per-temp", cfg.IterationsPerTemp, "moves per temperature step (0 means four per variable)")
	flags.Float64Var(&cfg.MinTemp, "min-temp", cfg.MinTemp, "stop once the temperature falls to this")
	flags.Int64Var(&cfg.MaxIterations, "max-iters", cfg.MaxIterations, "cap on the total number of moves (0 means none)")
	flags.IntVar(&cfg.StallLimit, "stall", cfg.StallLimit, "stop a restart after this many unimproving temperature steps (0 disables)")
	flags.IntVar(&cfg.Penalty, "penalty", cfg.Penalty, "fitness cost of a falsified clause (0 derives it from the formula)")
	flags.Var(&cfg.Init, "init", `initial assignment: "random", "all-false" or "all-true"`)
	flags.IntVar(&cfg.Restarts, "restarts", cfg.Restarts, "independent annealing runs")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for the annealing engine")
}

func runSolve(path, engine string, timeout time.Duration, parallel int, verbose bool, exactCfg bnb.Config, saCfg anneal.Config) error {
	f, err := loadFormula(path)
	if err != nil {
		return err
	}
	fmt.Printf("c solving %s\n", path)
	if verbose {
		fmt.Printf("c %d variables, %d clauses, total weight %d\n", f.NbVars, len(f.Clauses), f.TotalWeight())
	}
	printer := newImprovementPrinter(os.Stdout)
	s, err := buildSolver(f, engine, parallel, verbose, printer.improved, exactCfg, saCfg)
	if err != nil {
		return err
	}
	ctx := signalContext()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res := s.Solve(ctx)
	if verbose {
		printStats(s)
	}
	if res.Model != nil && !f.Satisfied(res.Model) {
		return errors.New("engine returned an infeasible model")
	}
	fmt.Printf("s %s\n", res.Status)
	if res.Model != nil {
		fmt.Printf("v %s\n", res.Model)
	}
	return nil
}

func loadFormula(path string) (*formula.Formula, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open instance")
	}
	defer file.Close()
	f, err := formula.ParseCNF(file)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse %q", path)
	}
	return f, nil
}

func buildSolver(f *formula.Formula, engine string, parallel int, verbose bool, improved func(solver.Result), exactCfg bnb.Config, saCfg anneal.Config) (solver.Solver, error) {
	switch engine {
	case "bnb":
		if parallel > 1 {
			return nil, errors.New("--parallel applies to the annealing engine only")
		}
		s, err := bnb.New(f, exactCfg)
		if err != nil {
			return nil, err
		}
		s.Verbose = verbose
		s.OnImprove = improved
		return s, nil
	case "anneal":
		if parallel <= 1 {
			s, err := anneal.New(f, saCfg)
			if err != nil {
				return nil, err
			}
			s.Verbose = verbose
			s.OnImprove = improved
			return s, nil
		}
		members := make([]solver.Solver, parallel)
		for i := range members {
			cfg := saCfg
			cfg.Seed = saCfg.Seed + int64(i)
			s, err := anneal.New(f, cfg)
			if err != nil {
				return nil, err
			}
			s.OnImprove = improved
			members[i] = s
		}
		return &solver.Portfolio{Solvers: members}, nil
	default:
		return nil, errors.Errorf("unknown engine %q", engine)
	}
}

// An improvementPrinter turns incumbent improvements into "o" lines.
// Portfolio members improve concurrently, so prints are serialized and a
// weight no better than an already printed one is dropped: the printed
// sequence is strictly increasing.
type improvementPrinter struct {
	mu   sync.Mutex
	out  io.Writer
	best int
}

func newImprovementPrinter(out io.Writer) *improvementPrinter {
	return &improvementPrinter{out: out, best: -1}
}

func (p *improvementPrinter) improved(res solver.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if res.Weight <= p.best {
		return
	}
	p.best = res.Weight
	fmt.Fprintf(p.out, "o %d\n", res.Weight)
}

func printStats(s solver.Solver) {
	switch e := s.(type) {
	case *bnb.Solver:
		fmt.Printf("c nb nodes: %d\nc nb decisions: %d\nc nb propagations: %d\n",
			e.Stats.NbNodes, e.Stats.NbDecisions, e.Stats.NbPropagations)
		fmt.Printf("c nb conflicts: %d\nc nb pruned: %d\nc nb solutions: %d\n",
			e.Stats.NbConflicts, e.Stats.NbPruned, e.Stats.NbSolutions)
	case *anneal.Solver:
		fmt.Printf("c nb moves: %d\nc nb accepted: %d\nc nb improvements: %d\n",
			e.Stats.NbMoves, e.Stats.NbAccepted, e.Stats.NbImprovements)
		fmt.Printf("c nb temperature steps: %d\nc nb restarts: %d\n",
			e.Stats.NbTempSteps, e.Stats.NbRestarts)
	}
}
