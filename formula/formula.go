package formula

import (
	"fmt"

	"github.com/pkg/errors"
)

// A Formula is a weighted CNF formula: a list of clauses over NbVars
// variables plus one non-negative weight per variable. A Formula is immutable
// once built; the search engines share it freely.
type Formula struct {
	NbVars  int      // Total nb of vars
	Clauses []Clause // List of non-empty clauses
	Weights []int    // Weights[v] is the weight of the variable v
}

// New builds a Formula from CNF-encoded clauses (positive and negative
// variable indices, no terminating 0) and one weight per variable.
// It rejects empty clauses, out-of-range literals, negative weights and
// weight vectors whose length is not nbVars. Clauses are literal sets: a
// duplicated literal is kept once and a tautological clause, true whatever
// the assignment, is dropped.
func New(nbVars int, clauses [][]int, weights []int) (*Formula, error) {
	if nbVars <= 0 {
		return nil, errors.Errorf("invalid number of variables %d", nbVars)
	}
	if len(weights) != nbVars {
		return nil, errors.Errorf("got %d weights for %d variables", len(weights), nbVars)
	}
	for i, weight := range weights {
		if weight < 0 {
			return nil, errors.Errorf("negative weight %d for variable %d", weight, i+1)
		}
	}
	f := &Formula{
		NbVars:  nbVars,
		Clauses: make([]Clause, 0, len(clauses)),
		Weights: weights,
	}
	for i, vals := range clauses {
		if len(vals) == 0 {
			return nil, errors.Errorf("empty clause at index %d", i)
		}
		clause := make(Clause, len(vals))
		for j, val := range vals {
			if val == 0 || val > nbVars || -val > nbVars {
				return nil, errors.Errorf("invalid literal %d in clause %d for formula with %d vars", val, i, nbVars)
			}
			clause[j] = IntToLit(val)
		}
		if clause = simplify(clause); clause != nil {
			f.Clauses = append(f.Clauses, clause)
		}
	}
	return f, nil
}

// simplify removes duplicate literals from c and returns nil when c is a
// tautology: a clause holding a variable in both polarities is true under
// every assignment and constrains nothing. Keeping clauses duplicate-free
// also keeps them listed at most once per variable in the occurrence lists,
// which the engines' incremental counters rely on.
func simplify(c Clause) Clause {
	res := c[:0]
	for _, lit := range c {
		dup := false
		for _, kept := range res {
			if kept == lit.Negation() {
				return nil
			}
			if kept == lit {
				dup = true
				break
			}
		}
		if !dup {
			res = append(res, lit)
		}
	}
	return res
}

// TotalWeight returns the sum of all variable weights, i.e the score of the
// all-true assignment when it is feasible and an upper bound on any score.
func (f *Formula) TotalWeight() int {
	total := 0
	for _, weight := range f.Weights {
		total += weight
	}
	return total
}

// Satisfied returns true iff the model satisfies every clause.
// The model must bind all NbVars variables.
func (f *Formula) Satisfied(m Model) bool {
	for _, clause := range f.Clauses {
		if !clause.satisfied(m) {
			return false
		}
	}
	return true
}

func (c Clause) satisfied(m Model) bool {
	for _, lit := range c {
		if m[lit.Var()] == lit.IsPositive() {
			return true
		}
	}
	return false
}

// Weight returns the sum of the weights of the variables bound to true in m.
// It does not check feasibility: the score of an infeasible model is
// meaningless on its own.
func (f *Formula) Weight(m Model) int {
	weight := 0
	for v, binding := range m {
		if binding {
			weight += f.Weights[v]
		}
	}
	return weight
}

// NbUnsat returns the number of clauses falsified by the model.
func (f *Formula) NbUnsat(m Model) int {
	nb := 0
	for _, clause := range f.Clauses {
		if !clause.satisfied(m) {
			nb++
		}
	}
	return nb
}

// CNF returns a DIMACS representation of the formula, including its weight
// line.
func (f *Formula) CNF() string {
	res := fmt.Sprintf("p cnf %d %d\n", f.NbVars, len(f.Clauses))
	res += "w"
	for _, weight := range f.Weights {
		res += fmt.Sprintf(" %d", weight)
	}
	res += " 0\n"
	for _, clause := range f.Clauses {
		res += fmt.Sprintf("%s\n", clause.CNF())
	}
	return res
}

// Occurrences maps each variable to the clauses it appears in. Both engines
// derive their incremental clause counters from it; it is read-only once
// built, so concurrent solvers may share a Formula but must each build or
// receive their own counters.
type Occurrences struct {
	Pos [][]int32 // Pos[v] lists the indices of the clauses where v occurs positively
	Neg [][]int32 // Neg[v] lists the indices of the clauses where v occurs negated
}

// Occurrences builds the variable-to-clause occurrence lists of f.
func (f *Formula) Occurrences() *Occurrences {
	occ := &Occurrences{
		Pos: make([][]int32, f.NbVars),
		Neg: make([][]int32, f.NbVars),
	}
	for i, clause := range f.Clauses {
		for _, lit := range clause {
			v := lit.Var()
			if lit.IsPositive() {
				occ.Pos[v] = append(occ.Pos[v], int32(i))
			} else {
				occ.Neg[v] = append(occ.Neg[v], int32(i))
			}
		}
	}
	return occ
}
