package anneal

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/NevoleMarek/Weighted-SAT-solver/formula"
	"github.com/NevoleMarek/Weighted-SAT-solver/solver"
)

// Stats describes a running or finished search.
type Stats struct {
	NbMoves        int64 // nb of attempted flips
	NbAccepted     int64 // nb of accepted flips
	NbImprovements int64 // nb of best-assignment improvements
	NbTempSteps    int64 // nb of completed temperature steps
	NbRestarts     int64 // nb of started trajectories
	Interrupted    bool  // true if the context cut the run short
}

// A Solver is a simulated annealing engine over one formula.
// Create it with New, set the public fields if needed, then call Solve once.
type Solver struct {
	// Verbose makes the solver log the search's progress on Logger.
	Verbose bool
	// Logger receives progress information. Defaults to the logrus standard
	// logger.
	Logger logrus.FieldLogger
	// OnImprove, when non-nil, is called with every new best assignment,
	// from the solving goroutine.
	OnImprove func(solver.Result)
	// Stats is updated during the search and final once Solve returns.
	Stats Stats

	f   *formula.Formula
	cfg Config
	occ *formula.Occurrences
	rng *rand.Rand

	cur       formula.Model
	nbTrue    []int32 // per clause, nb of literals satisfied by cur
	nbUnsat   int     // nb of clauses falsified by cur
	curWeight int     // weight of cur

	best       formula.Model
	bestWeight int

	lastReport time.Time
}

var _ solver.Solver = (*Solver)(nil)

// New returns a solver for f with the given configuration. Zero-valued
// fields are replaced by their defaults; an explicit penalty that does not
// exceed the formula's total weight is rejected, since it could make an
// infeasible assignment out-score a feasible one.
func New(f *formula.Formula, cfg Config) (*Solver, error) {
	def := DefaultConfig()
	if cfg.InitialTemp == 0 {
		cfg.InitialTemp = def.InitialTemp
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = def.Alpha
	}
	if cfg.MinTemp == 0 {
		cfg.MinTemp = cfg.InitialTemp / 100
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid annealing configuration")
	}
	total := f.TotalWeight()
	if cfg.Penalty == 0 {
		cfg.Penalty = total + 1
	} else if cfg.Penalty <= total {
		return nil, errors.Errorf("penalty %d does not exceed the total weight %d", cfg.Penalty, total)
	}
	if cfg.IterationsPerTemp == 0 {
		cfg.IterationsPerTemp = 4 * f.NbVars
	}
	if cfg.Init == "" {
		cfg.Init = InitRandom
	}
	if cfg.Restarts == 0 {
		cfg.Restarts = 1
	}
	return &Solver{
		Logger:     logrus.StandardLogger(),
		f:          f,
		cfg:        cfg,
		occ:        f.Occurrences(),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		nbTrue:     make([]int32, len(f.Clauses)),
		bestWeight: -1,
	}, nil
}

// Solve runs the configured restarts and returns the best feasible
// assignment ever visited, or Unknown when none was reached.
func (s *Solver) Solve(ctx context.Context) solver.Result {
	if s.Logger == nil {
		s.Logger = logrus.StandardLogger()
	}
	s.lastReport = time.Now()
	if s.Verbose {
		s.Logger.WithFields(logrus.Fields{
			"vars":     s.f.NbVars,
			"clauses":  len(s.f.Clauses),
			"restarts": s.cfg.Restarts,
			"penalty":  s.cfg.Penalty,
		}).Info("starting simulated annealing")
	}
restarts:
	for restart := 0; restart < s.cfg.Restarts; restart++ {
		s.Stats.NbRestarts++
		s.initState()
		temp := s.cfg.InitialTemp
		stall := 0
		for temp > s.cfg.MinTemp {
			select {
			case <-ctx.Done():
				s.Stats.Interrupted = true
				break restarts
			default:
			}
			improvedBefore := s.Stats.NbImprovements
			for i := 0; i < s.cfg.IterationsPerTemp; i++ {
				if s.cfg.MaxIterations > 0 && s.Stats.NbMoves >= s.cfg.MaxIterations {
					break restarts
				}
				s.Stats.NbMoves++
				v := formula.Var(s.rng.Intn(s.f.NbVars))
				dWeight, dUnsat := s.flipDelta(v)
				delta := dWeight - s.cfg.Penalty*dUnsat
				if delta >= 0 || s.rng.Float64() < math.Exp(float64(delta)/temp) {
					s.flip(v)
					s.Stats.NbAccepted++
					s.checkBest()
				}
			}
			s.Stats.NbTempSteps++
			temp *= s.cfg.Alpha
			if s.cfg.StallLimit > 0 {
				if s.Stats.NbImprovements == improvedBefore {
					stall++
					if stall >= s.cfg.StallLimit {
						break
					}
				} else {
					stall = 0
				}
			}
			s.progress(restart, temp)
		}
	}
	res := solver.Result{Status: solver.Unknown}
	if s.best != nil {
		res = solver.Result{Status: solver.Sat, Model: s.best, Weight: s.bestWeight}
	}
	if s.Verbose {
		s.Logger.WithFields(logrus.Fields{
			"status":   res.Status,
			"moves":    s.Stats.NbMoves,
			"accepted": s.Stats.NbAccepted,
			"best":     s.bestWeight,
		}).Info("annealing finished")
	}
	return res
}

// initState draws the restart's starting assignment and rebuilds the clause
// counters from scratch.
func (s *Solver) initState() {
	if s.cur == nil {
		s.cur = make(formula.Model, s.f.NbVars)
	}
	for v := range s.cur {
		switch s.cfg.Init {
		case InitAllFalse:
			s.cur[v] = false
		case InitAllTrue:
			s.cur[v] = true
		default:
			s.cur[v] = s.rng.Intn(2) == 1
		}
	}
	s.curWeight = 0
	for v, binding := range s.cur {
		if binding {
			s.curWeight += s.f.Weights[v]
		}
	}
	s.nbUnsat = 0
	for i, clause := range s.f.Clauses {
		s.nbTrue[i] = 0
		for _, lit := range clause {
			if s.cur[lit.Var()] == lit.IsPositive() {
				s.nbTrue[i]++
			}
		}
		if s.nbTrue[i] == 0 {
			s.nbUnsat++
		}
	}
	s.checkBest()
}

// flipDelta returns the weight and falsified-clause deltas of flipping v,
// without applying the move.
func (s *Solver) flipDelta(v formula.Var) (dWeight, dUnsat int) {
	gaining, losing := s.occ.Pos[v], s.occ.Neg[v]
	if s.cur[v] {
		gaining, losing = losing, gaining
		dWeight = -s.f.Weights[v]
	} else {
		dWeight = s.f.Weights[v]
	}
	for _, ci := range gaining {
		if s.nbTrue[ci] == 0 {
			dUnsat--
		}
	}
	for _, ci := range losing {
		if s.nbTrue[ci] == 1 {
			dUnsat++
		}
	}
	return dWeight, dUnsat
}

// flip applies the move and maintains the clause counters.
func (s *Solver) flip(v formula.Var) {
	gaining, losing := s.occ.Pos[v], s.occ.Neg[v]
	if s.cur[v] {
		gaining, losing = losing, gaining
		s.curWeight -= s.f.Weights[v]
	} else {
		s.curWeight += s.f.Weights[v]
	}
	s.cur[v] = !s.cur[v]
	for _, ci := range gaining {
		if s.nbTrue[ci] == 0 {
			s.nbUnsat--
		}
		s.nbTrue[ci]++
	}
	for _, ci := range losing {
		s.nbTrue[ci]--
		if s.nbTrue[ci] == 0 {
			s.nbUnsat++
		}
	}
}

// checkBest promotes the current assignment to best when it is feasible and
// strictly heavier than the best so far. The best assignment only ever
// improves, whatever the trajectory then does.
func (s *Solver) checkBest() {
	if s.nbUnsat != 0 || s.curWeight <= s.bestWeight {
		return
	}
	model := make(formula.Model, len(s.cur))
	copy(model, s.cur)
	s.best = model
	s.bestWeight = s.curWeight
	s.Stats.NbImprovements++
	if s.Verbose {
		s.Logger.WithField("weight", s.curWeight).Info("new best assignment")
	}
	if s.OnImprove != nil {
		s.OnImprove(solver.Result{Status: solver.Sat, Model: model, Weight: s.curWeight})
	}
}

// progress logs the search state at most once every few seconds.
func (s *Solver) progress(restart int, temp float64) {
	if !s.Verbose || time.Since(s.lastReport) < 3*time.Second {
		return
	}
	s.lastReport = time.Now()
	s.Logger.WithFields(logrus.Fields{
		"restart":  restart,
		"temp":     temp,
		"moves":    s.Stats.NbMoves,
		"accepted": s.Stats.NbAccepted,
		"best":     s.bestWeight,
	}).Info("still annealing")
}
