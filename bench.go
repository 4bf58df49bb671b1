package main

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/NevoleMarek/Weighted-SAT-solver/bench"
)

func newBenchCmd() *cobra.Command {
	var (
		runs    int
		seed    int64
		timeout time.Duration
		workers int
		output  string
	)
	cmd := &cobra.Command{
		Use:   "bench [flags] suite.yaml",
		Short: "Run a benchmark suite",
		Long: `Bench runs every engine of a YAML suite against every instance,
aggregates weights and run times, and prints a table. Flags override the
suite's own runs, seed and timeout settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := bench.LoadSuite(args[0])
			if err != nil {
				return err
			}
			records, err := bench.RunSuite(signalContext(), suite, bench.Runner{
				Runs:     runs,
				BaseSeed: seed,
				Timeout:  timeout,
				Workers:  workers,
				Logger:   log.StandardLogger(),
			})
			if err != nil {
				return err
			}
			if err := bench.WriteTable(os.Stdout, records); err != nil {
				return err
			}
			if output != "" {
				if err := bench.WriteCSV(output, records); err != nil {
					return err
				}
				log.WithField("path", output).Info("wrote CSV report")
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&runs, "runs", 0, "runs per case (0 means the suite's setting)")
	flags.Int64Var(&seed, "seed", 0, "base seed (0 means the suite's setting)")
	flags.DurationVar(&timeout, "timeout", 0, "per-run limit (0 means the suite's setting)")
	flags.IntVar(&workers, "workers", 0, "concurrent cases (0 means one per CPU)")
	flags.StringVarP(&output, "output", "o", "", "also write the records to this CSV file")
	return cmd
}
