package formula

import "fmt"

// Basic types shared by the evaluator and the search engines.

// Status is the status of a clause or a literal under a partial assignment.
type Status byte

const (
	// Indet means the literal's variable is not assigned yet.
	Indet = Status(iota)
	// Sat means the clause or literal is satisfied.
	Sat
	// Unsat means the clause or literal is falsified.
	Unsat
	// Unit means the clause is not satisfied and contains exactly one
	// unassigned literal.
	Unit
	// Many means the clause is not satisfied and contains at least two
	// unassigned literals.
	Many
)

func (s Status) String() string {
	switch s {
	case Indet:
		return "INDETERMINATE"
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	case Unit:
		return "UNIT"
	case Many:
		return "MANY"
	default:
		panic("invalid status")
	}
}

// Var start at 0 ; thus the CNF variable 1 is encoded as the Var 0.
type Var int32

// Lit start at 0 and are positive ; the sign is the last bit.
// Thus the CNF literal -3 is encoded as 2 * (3-1) + 1 = 5.
type Lit int32

// IntToLit converts a CNF literal to a Lit.
func IntToLit(i int) Lit {
	if i < 0 {
		return Lit(2*(-i-1) + 1)
	}
	return Lit(2 * (i - 1))
}

// Lit returns the positive Lit associated to v.
func (v Var) Lit() Lit {
	return Lit(v * 2)
}

// SignedLit returns the Lit associated to v, negated if 'signed', positive else.
func (v Var) SignedLit(signed bool) Lit {
	if signed {
		return Lit(v*2) + 1
	}
	return Lit(v * 2)
}

// Var returns the variable of l.
func (l Lit) Var() Var {
	return Var(l / 2)
}

// Int returns the equivalent CNF literal.
func (l Lit) Int() int {
	sign := l&1 == 1
	res := int(l/2 + 1)
	if sign {
		return -res
	}
	return res
}

// IsPositive is true iff l is > 0.
func (l Lit) IsPositive() bool {
	return l%2 == 0
}

// Negation returns -l, i.e the positive version of l if it is negative,
// or the negative version otherwise.
func (l Lit) Negation() Lit {
	return l ^ 1
}

// A Clause is a non-empty disjunction of literals.
type Clause []Lit

// CNF returns a DIMACS CNF representation of the clause.
func (c Clause) CNF() string {
	res := ""
	for _, lit := range c {
		res += fmt.Sprintf("%d ", lit.Int())
	}
	return fmt.Sprintf("%s0", res)
}

// A Model is a total assignment: Model[v] is the binding of the variable v.
type Model []bool

// String returns the model as space-separated DIMACS literals.
func (m Model) String() string {
	res := ""
	for v, binding := range m {
		lit := Var(v).SignedLit(!binding)
		if v == 0 {
			res = fmt.Sprintf("%d", lit.Int())
		} else {
			res += fmt.Sprintf(" %d", lit.Int())
		}
	}
	return res
}

// A PartialModel maps each variable to its current binding: 0 means unbound,
// 1 means bound to true, -1 means bound to false.
type PartialModel []int8

// LitStatus returns Sat if l is satisfied by the partial assignment, Unsat if
// it is falsified and Indet if its variable is unbound.
func (pm PartialModel) LitStatus(l Lit) Status {
	switch binding := pm[l.Var()]; {
	case binding == 0:
		return Indet
	case (binding > 0) == l.IsPositive():
		return Sat
	default:
		return Unsat
	}
}

// Status returns the status of the clause under the partial assignment. The
// returned literal is the clause's single unbound literal when the status is
// Unit; its value is meaningless for any other status.
func (c Clause) Status(pm PartialModel) (Status, Lit) {
	var unit Lit
	nbFree := 0
	for _, lit := range c {
		switch pm.LitStatus(lit) {
		case Sat:
			return Sat, unit
		case Indet:
			unit = lit
			nbFree++
		}
	}
	switch nbFree {
	case 0:
		return Unsat, unit
	case 1:
		return Unit, unit
	default:
		return Many, unit
	}
}
