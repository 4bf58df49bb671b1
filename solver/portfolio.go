package solver

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// A Portfolio runs several solvers concurrently on the same formula and
// keeps the best outcome. Members must own their search state; they may only
// share the read-only formula. As soon as one member returns a proven
// outcome (Optimal or Unsat) the remaining runs are cancelled, since no
// member can improve on a proof.
type Portfolio struct {
	Solvers []Solver
}

// Solve runs every member until completion, proof or ctx expiry, then
// reduces the results: a proven Unsat wins, then the heaviest Optimal, then
// the heaviest Sat, then Unknown. Ties keep the lowest-index member, so a
// portfolio of deterministic members is itself deterministic.
func (p *Portfolio) Solve(ctx context.Context) Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	results := make([]Result, len(p.Solvers))
	g, ctx := errgroup.WithContext(ctx)
	for i, member := range p.Solvers {
		i, member := i, member
		g.Go(func() error {
			results[i] = member.Solve(ctx)
			if results[i].Status == Optimal || results[i].Status == Unsat {
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait() // members report through results, never through errors
	best := Result{Status: Unknown}
	for _, res := range results {
		if res.Status == Unsat {
			return res
		}
		if res.Status == Unknown {
			continue
		}
		if best.Status == Unknown ||
			(res.Status == Optimal && best.Status == Sat) ||
			(res.Status == best.Status && res.Weight > best.Weight) {
			best = res
		}
	}
	return best
}
