package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wsat",
		Short: "A weighted MAX-SAT solver",
		Long: `wsat maximizes the total weight of the variables assigned true in a
propositional formula, subject to every clause being satisfied. It ships an
exact branch-and-bound engine, a simulated annealing engine, a random
instance generator and a benchmark harness.`,
		SilenceUsage: true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newSolveCmd(), newGenCmd(), newBenchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context cancelled by the first interrupt or
// termination signal. A second signal exits the process directly.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
