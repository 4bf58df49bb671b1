package bnb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/NevoleMarek/Weighted-SAT-solver/formula"
	"github.com/NevoleMarek/Weighted-SAT-solver/solver"
)

// An Order is a static branching order over the variables. It is fixed for a
// whole run, so two runs on the same formula explore the same tree and find
// the same optimum model.
type Order string

const (
	// OrderIndex branches on variables in ascending index order.
	OrderIndex = Order("index")
	// OrderWeight branches on variables by decreasing weight, ascending
	// index breaking ties.
	OrderWeight = Order("weight")
)

// Set implements the flag value contract, so an Order can be bound directly
// to a command-line flag.
func (o *Order) Set(s string) error {
	switch Order(s) {
	case OrderIndex, OrderWeight:
		*o = Order(s)
		return nil
	default:
		return errors.Errorf("unknown branching order %q", s)
	}
}

func (o *Order) String() string { return string(*o) }

// Type implements the flag value contract.
func (o *Order) Type() string { return "order" }

// Config holds the engine's tunables.
type Config struct {
	Order    Order // branching order; OrderIndex when empty
	MaxNodes int64 // maximum number of explored nodes; 0 means no limit
}

// DefaultConfig returns the configuration of an untuned, unbounded run.
func DefaultConfig() Config {
	return Config{Order: OrderIndex}
}

// Validate returns an error describing the first invalid field, if any.
func (cfg *Config) Validate() error {
	switch cfg.Order {
	case "", OrderIndex, OrderWeight:
	default:
		return errors.Errorf("unknown branching order %q", cfg.Order)
	}
	if cfg.MaxNodes < 0 {
		return errors.Errorf("negative node limit %d", cfg.MaxNodes)
	}
	return nil
}

// Stats describes a running or finished search.
type Stats struct {
	NbNodes        int64 // nb of explored nodes
	NbDecisions    int64 // nb of branching decisions
	NbPropagations int64 // nb of literals assigned by unit propagation
	NbConflicts    int64 // nb of falsified clauses met
	NbPruned       int64 // nb of subtrees cut by the weight bound
	NbSolutions    int64 // nb of incumbent improvements
	Interrupted    bool  // true if the node budget or the context cut the run short
}

// A Solver is an exact branch and bound engine over one formula.
// Create it with New, set the public fields if needed, then call Solve once.
type Solver struct {
	// Verbose makes the solver log the search's progress on Logger.
	Verbose bool
	// Logger receives progress information. Defaults to the logrus standard
	// logger.
	Logger logrus.FieldLogger
	// OnImprove, when non-nil, is called with every new incumbent, from the
	// solving goroutine.
	OnImprove func(solver.Result)
	// Stats is updated during the search and final once Solve returns.
	Stats Stats

	f     *formula.Formula
	cfg   Config
	order []formula.Var
	occ   *formula.Occurrences

	pm         formula.PartialModel
	trail      []formula.Lit
	propQueue  []formula.Lit
	nbTrue     []int32 // per clause, nb of literals currently satisfied
	nbFree     []int32 // per clause, nb of literals currently unbound
	nbSat      int     // nb of currently satisfied clauses
	curWeight  int     // total weight of the variables bound to true
	freeWeight int     // total weight of the unbound variables

	best       formula.Model
	bestWeight int

	lastReport time.Time
}

var _ solver.Solver = (*Solver)(nil)

// New returns a solver for f with the given configuration.
func New(f *formula.Formula, cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid branch and bound configuration")
	}
	if cfg.Order == "" {
		cfg.Order = OrderIndex
	}
	s := &Solver{
		Logger:     logrus.StandardLogger(),
		f:          f,
		cfg:        cfg,
		order:      branchingOrder(f, cfg.Order),
		occ:        f.Occurrences(),
		pm:         make(formula.PartialModel, f.NbVars),
		trail:      make([]formula.Lit, 0, f.NbVars),
		nbTrue:     make([]int32, len(f.Clauses)),
		nbFree:     make([]int32, len(f.Clauses)),
		freeWeight: f.TotalWeight(),
		bestWeight: -1,
	}
	for i, clause := range f.Clauses {
		s.nbFree[i] = int32(len(clause))
	}
	return s, nil
}

// branchingOrder computes the static variable order of the run.
func branchingOrder(f *formula.Formula, order Order) []formula.Var {
	vars := make([]formula.Var, f.NbVars)
	for i := range vars {
		vars[i] = formula.Var(i)
	}
	if order == OrderWeight {
		sort.SliceStable(vars, func(i, j int) bool {
			return f.Weights[vars[i]] > f.Weights[vars[j]]
		})
	}
	return vars
}

// A frame is one open decision of the explicit search stack.
type frame struct {
	decision formula.Lit // literal assigned first at this node
	mark     int         // trail length before the decision
	cursor   int         // position in the branching order at decision time
	flipped  bool        // whether the opposite branch was tried
}

// Solve explores the whole assignment tree, pruning subtrees that cannot
// beat the incumbent. It returns Optimal or Unsat when the tree was
// exhausted, Sat or Unknown when the node budget or ctx cut the run short.
func (s *Solver) Solve(ctx context.Context) solver.Result {
	if s.Logger == nil {
		s.Logger = logrus.StandardLogger()
	}
	s.lastReport = time.Now()
	if s.Verbose {
		s.Logger.WithFields(logrus.Fields{
			"vars":    s.f.NbVars,
			"clauses": len(s.f.Clauses),
			"order":   s.cfg.Order,
		}).Info("starting branch and bound search")
	}
	interrupted := false
	if !s.propagateRoot() {
		return s.finish(true)
	}
	var stack []frame
	cursor := 0
search:
	for {
		if s.cfg.MaxNodes > 0 && s.Stats.NbNodes >= s.cfg.MaxNodes {
			interrupted = true
			break
		}
		s.Stats.NbNodes++
		if s.Stats.NbNodes&1023 == 0 {
			select {
			case <-ctx.Done():
				interrupted = true
				break search
			default:
			}
			s.progress()
		}
		if s.nbSat == len(s.f.Clauses) {
			// Every clause holds: the best completion of this node binds
			// every unbound variable to true, and no descendant beats it.
			s.record()
		} else if s.bestWeight >= 0 && s.curWeight+s.freeWeight <= s.bestWeight {
			s.Stats.NbPruned++
		} else {
			// Some clause is still pending, so an unbound variable exists
			// at or after the cursor.
			for s.pm[s.order[cursor]] != 0 {
				cursor++
			}
			v := s.order[cursor]
			s.Stats.NbDecisions++
			stack = append(stack, frame{decision: v.Lit(), mark: len(s.trail), cursor: cursor})
			if s.propagate(v.Lit()) {
				continue
			}
		}
		// Backtrack to the deepest node with an untried branch.
		for {
			if len(stack) == 0 {
				break search
			}
			fr := &stack[len(stack)-1]
			s.backtrackTo(fr.mark)
			if !fr.flipped {
				fr.flipped = true
				cursor = fr.cursor
				if s.propagate(fr.decision.Negation()) {
					break
				}
				s.backtrackTo(fr.mark)
			}
			stack = stack[:len(stack)-1]
		}
	}
	res := s.finish(!interrupted)
	if s.Verbose {
		s.Logger.WithFields(logrus.Fields{
			"status":    res.Status,
			"nodes":     s.Stats.NbNodes,
			"conflicts": s.Stats.NbConflicts,
			"pruned":    s.Stats.NbPruned,
		}).Info("search finished")
	}
	return res
}

// propagateRoot propagates the formula's unit clauses. It returns false if
// they are contradictory, which proves unsatisfiability without any search.
func (s *Solver) propagateRoot() bool {
	for _, clause := range s.f.Clauses {
		if len(clause) == 1 && !s.propagate(clause[0]) {
			return false
		}
	}
	return true
}

// record turns the current node into the new incumbent. Every clause being
// satisfied, its best completion binds every unbound variable to true.
func (s *Solver) record() {
	weight := s.curWeight + s.freeWeight
	if weight <= s.bestWeight {
		return
	}
	model := make(formula.Model, s.f.NbVars)
	for v, binding := range s.pm {
		model[v] = binding >= 0
	}
	s.best = model
	s.bestWeight = weight
	s.Stats.NbSolutions++
	if s.Verbose {
		s.Logger.WithField("weight", weight).Info("new incumbent")
	}
	if s.OnImprove != nil {
		s.OnImprove(solver.Result{Status: solver.Sat, Model: model, Weight: weight})
	}
}

// propagate assigns l and everything it forces through unit clauses. It
// returns false if a clause was falsified; the trail then still records the
// partial work, so the caller rewinds with backtrackTo.
func (s *Solver) propagate(l formula.Lit) bool {
	s.propQueue = append(s.propQueue[:0], l)
	for head := 0; head < len(s.propQueue); head++ {
		l := s.propQueue[head]
		v := l.Var()
		if s.pm[v] != 0 {
			if (s.pm[v] > 0) != l.IsPositive() {
				s.Stats.NbConflicts++
				return false
			}
			continue
		}
		if !s.assign(l) {
			s.Stats.NbConflicts++
			return false
		}
		if head > 0 {
			s.Stats.NbPropagations++
		}
		falsified := s.occ.Neg[v]
		if !l.IsPositive() {
			falsified = s.occ.Pos[v]
		}
		for _, ci := range falsified {
			if s.nbTrue[ci] == 0 && s.nbFree[ci] == 1 {
				s.propQueue = append(s.propQueue, s.freeLit(ci))
			}
		}
	}
	return true
}

// assign binds l and updates the clause counters and the weight bookkeeping.
// It returns false if some clause became falsified. Counters are updated
// entirely even then, so backtrackTo always rewinds a consistent state.
func (s *Solver) assign(l formula.Lit) bool {
	v := l.Var()
	if l.IsPositive() {
		s.pm[v] = 1
		s.curWeight += s.f.Weights[v]
	} else {
		s.pm[v] = -1
	}
	s.freeWeight -= s.f.Weights[v]
	s.trail = append(s.trail, l)
	satisfied, falsified := s.occ.Pos[v], s.occ.Neg[v]
	if !l.IsPositive() {
		satisfied, falsified = falsified, satisfied
	}
	for _, ci := range satisfied {
		if s.nbTrue[ci] == 0 {
			s.nbSat++
		}
		s.nbTrue[ci]++
		s.nbFree[ci]--
	}
	conflict := false
	for _, ci := range falsified {
		s.nbFree[ci]--
		if s.nbTrue[ci] == 0 && s.nbFree[ci] == 0 {
			conflict = true
		}
	}
	return !conflict
}

// backtrackTo rewinds the trail to the given length, unbinding every
// variable assigned after it.
func (s *Solver) backtrackTo(mark int) {
	for len(s.trail) > mark {
		l := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		v := l.Var()
		if l.IsPositive() {
			s.curWeight -= s.f.Weights[v]
		}
		s.pm[v] = 0
		s.freeWeight += s.f.Weights[v]
		satisfied, falsified := s.occ.Pos[v], s.occ.Neg[v]
		if !l.IsPositive() {
			satisfied, falsified = falsified, satisfied
		}
		for _, ci := range satisfied {
			s.nbTrue[ci]--
			if s.nbTrue[ci] == 0 {
				s.nbSat--
			}
			s.nbFree[ci]++
		}
		for _, ci := range falsified {
			s.nbFree[ci]++
		}
	}
}

// freeLit returns the single unbound literal of a unit clause.
func (s *Solver) freeLit(ci int32) formula.Lit {
	for _, lit := range s.f.Clauses[ci] {
		if s.pm[lit.Var()] == 0 {
			return lit
		}
	}
	panic("no unbound literal in unit clause")
}

// progress logs the search state at most once every few seconds.
func (s *Solver) progress() {
	if !s.Verbose || time.Since(s.lastReport) < 3*time.Second {
		return
	}
	s.lastReport = time.Now()
	s.Logger.WithFields(logrus.Fields{
		"nodes":     s.Stats.NbNodes,
		"conflicts": s.Stats.NbConflicts,
		"pruned":    s.Stats.NbPruned,
		"best":      s.bestWeight,
	}).Info("still searching")
}

// finish builds the run's result. proven tells whether the whole tree was
// explored: a proven run yields Optimal or Unsat, an interrupted one only
// Sat or Unknown.
func (s *Solver) finish(proven bool) solver.Result {
	s.Stats.Interrupted = !proven
	if s.best == nil {
		if proven {
			return solver.Result{Status: solver.Unsat}
		}
		return solver.Result{Status: solver.Unknown}
	}
	status := solver.Sat
	if proven {
		status = solver.Optimal
	}
	return solver.Result{Status: status, Model: s.best, Weight: s.bestWeight}
}
