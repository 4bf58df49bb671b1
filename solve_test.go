package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NevoleMarek/Weighted-SAT-solver/anneal"
	"github.com/NevoleMarek/Weighted-SAT-solver/bnb"
	"github.com/NevoleMarek/Weighted-SAT-solver/formula"
	"github.com/NevoleMarek/Weighted-SAT-solver/solver"
)

func TestImprovementPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newImprovementPrinter(&buf)
	// A weight-0 first improvement still prints; later duplicates and
	// regressions, as portfolio members can report them, do not.
	for _, w := range []int{0, 3, 8, 5, 8, 12} {
		p.improved(solver.Result{Status: solver.Sat, Weight: w})
	}
	assert.Equal(t, "o 0\no 3\no 8\no 12\n", buf.String())
}

func TestBuildSolverStreamsImprovements(t *testing.T) {
	f, err := formula.New(2, [][]int{{-1, -2}}, []int{1, 10})
	require.NoError(t, err)
	var buf bytes.Buffer
	p := newImprovementPrinter(&buf)
	s, err := buildSolver(f, "bnb", 1, false, p.improved, bnb.DefaultConfig(), anneal.DefaultConfig())
	require.NoError(t, err)
	res := s.Solve(context.Background())
	require.Equal(t, solver.Optimal, res.Status)
	require.Equal(t, 10, res.Weight)
	// The exact engine visits the incumbents 1 then 10 in index order.
	assert.Equal(t, "o 1\no 10\n", buf.String())
}

func TestBuildSolverWiresPortfolio(t *testing.T) {
	f, err := formula.New(2, [][]int{{-1, -2}}, []int{1, 10})
	require.NoError(t, err)
	p := newImprovementPrinter(&bytes.Buffer{})
	s, err := buildSolver(f, "anneal", 3, false, p.improved, bnb.DefaultConfig(), anneal.DefaultConfig())
	require.NoError(t, err)
	port, ok := s.(*solver.Portfolio)
	require.True(t, ok, "expected a portfolio, got %T", s)
	require.Len(t, port.Solvers, 3)
	for i, member := range port.Solvers {
		sa, ok := member.(*anneal.Solver)
		require.True(t, ok, "expected an annealer at %d, got %T", i, member)
		assert.NotNil(t, sa.OnImprove, "member %d does not report improvements", i)
	}
}
