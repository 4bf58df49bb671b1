// Package solver defines the contract shared by the search engines: the
// outcome vocabulary, the Result of a run and the Solver interface that both
// the exact and the heuristic engine implement. It also provides Portfolio,
// which races several independent solvers and keeps the best answer.
package solver
