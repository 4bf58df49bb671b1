package bench

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/NevoleMarek/Weighted-SAT-solver/formula"
	"github.com/NevoleMarek/Weighted-SAT-solver/solver"
)

// An Algorithm builds a single-use solver for one run. The factory receives
// the run's seed; deterministic engines may ignore it.
type Algorithm struct {
	Name    string
	Factory func(f *formula.Formula, seed int64) (solver.Solver, error)
}

// A Case pairs one instance with one algorithm.
type Case struct {
	Instance  string
	Formula   *formula.Formula
	Algorithm Algorithm
}

// A Record aggregates the runs of one case. Weights cover only runs that
// produced a model; Times cover every run, in seconds.
type Record struct {
	Instance string
	Engine   string
	Runs     int

	NbOptimal int
	NbSat     int
	NbUnsat   int
	NbUnknown int
	NbErrors  int

	Weights IntStats
	Times   FloatStats
}

// A Runner executes benchmark cases. Every run gets its own solver seeded
// with BaseSeed plus the run index, so a suite is reproducible end to end.
type Runner struct {
	Runs     int
	BaseSeed int64
	Timeout  time.Duration // per-run limit; 0 means none
	Workers  int           // concurrent cases; 0 means NumCPU
	Logger   logrus.FieldLogger
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Logger != nil {
		return r.Logger
	}
	return logrus.StandardLogger()
}

// RunCase runs one case Runs times and aggregates the outcomes. Models are
// re-checked against the instance; an infeasible or misweighted model counts
// as an error, not as a solution.
func (r *Runner) RunCase(ctx context.Context, c Case) Record {
	runs := r.Runs
	if runs <= 0 {
		runs = 1
	}
	rec := Record{Instance: c.Instance, Engine: c.Algorithm.Name}
	log := r.logger().WithFields(logrus.Fields{
		"instance": c.Instance,
		"engine":   c.Algorithm.Name,
	})
	var weights []int
	var times []float64
	for i := 0; i < runs; i++ {
		if ctx.Err() != nil {
			break
		}
		res, elapsed, err := r.runOnce(ctx, c, r.BaseSeed+int64(i))
		rec.Runs++
		times = append(times, elapsed.Seconds())
		if err != nil {
			rec.NbErrors++
			log.WithField("run", i).Warn(err)
			continue
		}
		switch res.Status {
		case solver.Optimal:
			rec.NbOptimal++
		case solver.Sat:
			rec.NbSat++
		case solver.Unsat:
			rec.NbUnsat++
		default:
			rec.NbUnknown++
		}
		if res.Model != nil {
			weights = append(weights, res.Weight)
		}
		log.WithFields(logrus.Fields{
			"run":    i,
			"status": res.Status,
			"weight": res.Weight,
			"time":   elapsed,
		}).Debug("run finished")
	}
	rec.Weights = CalcIntStats(weights)
	rec.Times = CalcFloatStats(times)
	log.WithFields(logrus.Fields{
		"optimal": rec.NbOptimal,
		"sat":     rec.NbSat,
		"best":    rec.Weights.Best,
	}).Info("case finished")
	return rec
}

func (r *Runner) runOnce(ctx context.Context, c Case, seed int64) (solver.Result, time.Duration, error) {
	s, err := c.Algorithm.Factory(c.Formula, seed)
	if err != nil {
		return solver.Result{}, 0, err
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	start := time.Now()
	res := s.Solve(ctx)
	elapsed := time.Since(start)
	if res.Model != nil {
		if !c.Formula.Satisfied(res.Model) {
			return res, elapsed, errors.New("engine returned an infeasible model")
		}
		if w := c.Formula.Weight(res.Model); w != res.Weight {
			return res, elapsed, errors.Errorf("engine reported weight %d for a model worth %d", res.Weight, w)
		}
	}
	return res, elapsed, nil
}

// Run executes the cases, at most Workers of them at a time, and returns one
// record per case in the same order.
func (r *Runner) Run(ctx context.Context, cases []Case) []Record {
	records := make([]Record, len(cases))
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range cases {
		i := i
		g.Go(func() error {
			records[i] = r.RunCase(ctx, cases[i])
			return nil
		})
	}
	_ = g.Wait() // workers report through records, never through errors
	return records
}

// Cases materializes the suite's instance/engine cross product. Each
// instance is loaded once and shared by every engine.
func (s *Suite) Cases() ([]Case, error) {
	algos := make([]Algorithm, len(s.Engines))
	for i := range s.Engines {
		a, err := s.Engines[i].Algorithm()
		if err != nil {
			return nil, err
		}
		algos[i] = a
	}
	var cases []Case
	for i := range s.Instances {
		f, err := s.Instances[i].Formula()
		if err != nil {
			return nil, errors.Wrapf(err, "instance %q", s.Instances[i].Label())
		}
		for _, a := range algos {
			cases = append(cases, Case{
				Instance:  s.Instances[i].Label(),
				Formula:   f,
				Algorithm: a,
			})
		}
	}
	return cases, nil
}

// RunSuite runs a whole suite. Zero fields of r fall back to the suite's
// own runs, seed and timeout settings.
func RunSuite(ctx context.Context, s *Suite, r Runner) ([]Record, error) {
	cases, err := s.Cases()
	if err != nil {
		return nil, err
	}
	if r.Runs <= 0 {
		r.Runs = s.Runs
	}
	if r.BaseSeed == 0 {
		r.BaseSeed = s.Seed
	}
	if r.Timeout == 0 {
		timeout, err := s.PerRunTimeout()
		if err != nil {
			return nil, err
		}
		r.Timeout = timeout
	}
	return r.Run(ctx, cases), nil
}
