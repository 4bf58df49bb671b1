// Package anneal implements a simulated annealing engine for weighted
// MAX-SAT.
//
// The engine walks the space of total assignments with single-variable
// flips. A state's fitness is its weight minus a penalty for every falsified
// clause; the penalty exceeds the formula's total weight, so any feasible
// assignment out-scores every infeasible one and maximizing fitness
// maximizes weight among the feasible states. Improving and sideways moves
// are always accepted, worsening moves with probability exp(delta/T), and
// the temperature T follows a geometric schedule. The best feasible
// assignment ever visited is tracked outside the trajectory, so accepted
// downhill moves never lose it.
//
// Annealing proves nothing: a run returns Sat with the best feasible
// assignment it saw, or Unknown when it never reached one, which must not be
// read as unsatisfiability.
package anneal
