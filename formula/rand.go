package formula

import (
	"fmt"
	"math/rand"
)

// Rand returns a random formula with nbClauses clauses of clauseLen distinct
// variables each, signs drawn uniformly, and weights drawn uniformly from
// [1, maxWeight]. It panics on inconsistent parameters; generation is
// deterministic for a given rng state.
func Rand(rng *rand.Rand, nbVars, nbClauses, clauseLen, maxWeight int) *Formula {
	if nbVars < 1 || nbClauses < 0 || clauseLen < 1 || maxWeight < 1 {
		panic(fmt.Sprintf("invalid random formula parameters: %d vars, %d clauses, len %d, max weight %d", nbVars, nbClauses, clauseLen, maxWeight))
	}
	if clauseLen > nbVars {
		panic(fmt.Sprintf("cannot draw %d distinct variables out of %d", clauseLen, nbVars))
	}
	f := &Formula{
		NbVars:  nbVars,
		Clauses: make([]Clause, nbClauses),
		Weights: make([]int, nbVars),
	}
	for i := range f.Weights {
		f.Weights[i] = 1 + rng.Intn(maxWeight)
	}
	used := make(map[Var]bool, clauseLen)
	for i := range f.Clauses {
		clause := make(Clause, 0, clauseLen)
		for v := range used {
			delete(used, v)
		}
		for len(clause) < clauseLen {
			v := Var(rng.Intn(nbVars))
			if used[v] {
				continue
			}
			used[v] = true
			clause = append(clause, v.SignedLit(rng.Intn(2) == 1))
		}
		f.Clauses[i] = clause
	}
	return f
}
