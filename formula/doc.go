// Package formula defines weighted CNF formulas and the evaluation
// primitives shared by the search engines.
//
// Definition
//
// A weighted formula is a plain CNF formula over variables 1..n together with
// one non-negative weight per variable. A total assignment is feasible when it
// satisfies every clause, and it then scores the sum of the weights of its
// true variables. The solvers in this module look for a feasible assignment of
// maximum score; setting every weight to 1 asks for a satisfying assignment
// with as many true variables as possible.
//
// File format
//
// Formulas are read and written in DIMACS CNF syntax extended with a single
// weight line:
//
//	c a 3-variable example
//	p cnf 3 2
//	w 2 1 4 0
//	1 -2 0
//	2 3 0
//
// The weight line lists one weight per variable, in variable order, and ends
// with 0. When it is absent every variable weighs 1, so ordinary MAX-SAT
// benchmark files are directly usable. Lines starting with '%' are treated as
// comments, as found in SATLIB instance trailers.
package formula
