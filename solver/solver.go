package solver

import (
	"context"

	"github.com/NevoleMarek/Weighted-SAT-solver/formula"
)

// Status describes what a finished run proved about its formula.
// The four values are distinct on purpose: an interrupted exact search
// and a failed heuristic search must not look like a proof.
type Status byte

const (
	// Unknown means no feasible assignment was found and nothing was proven.
	Unknown = Status(iota)
	// Sat means a feasible assignment was found but not proven optimal.
	Sat
	// Unsat means the formula was proven to have no feasible assignment.
	Unsat
	// Optimal means a feasible assignment was found and proven optimal.
	Optimal
)

// String returns the content of the associated competition-style "s" line.
func (s Status) String() string {
	switch s {
	case Unknown:
		return "UNKNOWN"
	case Sat:
		return "SATISFIABLE"
	case Unsat:
		return "UNSATISFIABLE"
	case Optimal:
		return "OPTIMUM FOUND"
	default:
		panic("invalid status")
	}
}

// A Result is the outcome of a run.
// Model is non-nil iff the status is Sat or Optimal, so a feasible weight-0
// assignment is never mistaken for a failed search.
type Result struct {
	Status Status
	Model  formula.Model
	Weight int
}

// A Solver searches one formula for a feasible assignment of maximum weight.
// Solve blocks until the search finishes or ctx expires; implementations
// check ctx at bounded intervals, so cancellation is prompt but not
// immediate. A Solver carries search state and must not be shared between
// concurrent Solve calls.
type Solver interface {
	Solve(ctx context.Context) Result
}
