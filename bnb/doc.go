// Package bnb implements an exact branch and bound engine for weighted
// MAX-SAT.
//
// The engine explores the tree of partial assignments depth-first with an
// explicit stack, so deep formulas cannot exhaust call stacks. At every node
// it keeps the weight already collected and the total weight still
// unassigned; their sum bounds every completion of the node, and a subtree
// whose bound cannot beat the incumbent is cut. Assigning a variable updates
// per-clause counters through the formula's occurrence lists, which makes
// falsified and unit clauses visible in time proportional to the variable's
// number of occurrences; unit clauses trigger propagation before any further
// branching, and a node satisfying every clause is completed in one step by
// binding all remaining variables to true.
//
// A finished run is a proof: Optimal when an incumbent exists, Unsat
// otherwise. A run cut short by its node budget or its context reports Sat
// or Unknown instead and sets Stats.Interrupted.
package bnb
