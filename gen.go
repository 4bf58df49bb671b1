package main

import (
	"io"
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/NevoleMarek/Weighted-SAT-solver/formula"
)

func newGenCmd() *cobra.Command {
	var (
		nbVars    int
		nbClauses int
		clauseLen int
		maxWeight int
		seed      int64
		output    string
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a random weighted instance",
		Long: `Gen writes a uniform random instance in the extended DIMACS format:
every clause holds distinct variables with random signs, and every variable
gets a weight drawn from [1, max-weight]. The same seed always yields the
same instance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if nbVars <= 0 {
				return errors.Errorf("need at least one variable, got %d", nbVars)
			}
			if clauseLen <= 0 || clauseLen > nbVars {
				return errors.Errorf("clause length %d must lie in [1, %d]", clauseLen, nbVars)
			}
			if nbClauses < 0 {
				return errors.Errorf("negative number of clauses %d", nbClauses)
			}
			if maxWeight <= 0 {
				return errors.Errorf("maximum weight %d must be positive", maxWeight)
			}
			if nbClauses == 0 {
				nbClauses = 4 * nbVars
			}
			rng := rand.New(rand.NewSource(seed))
			f := formula.Rand(rng, nbVars, nbClauses, clauseLen, maxWeight)
			out := io.Writer(os.Stdout)
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return errors.Wrap(err, "could not create output file")
				}
				defer file.Close()
				out = file
			}
			_, err := io.WriteString(out, f.CNF())
			return err
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&nbVars, "vars", 20, "number of variables")
	flags.IntVar(&nbClauses, "clauses", 0, "number of clauses (0 means four per variable)")
	flags.IntVar(&clauseLen, "len", 3, "literals per clause")
	flags.IntVar(&maxWeight, "max-weight", 100, "weights are drawn uniformly from [1, max-weight]")
	flags.Int64Var(&seed, "seed", 0, "random seed")
	flags.StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}
