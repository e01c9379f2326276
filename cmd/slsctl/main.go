// Command slsctl drives the stochastic local-search engine over a
// small assertion-DSL input file: parse, lower onto the term DAG, run
// bound initialisation and global_search, and report the result —
// a cobra command tree the way ehrlich-b-wingthing's cmd/wt/main.go
// builds its own CLI (SPEC_FULL.md §4.M).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitrdm/arithsls/internal/slslog"
)

func main() {
	var logLevel, logFile string

	root := &cobra.Command{
		Use:   "slsctl",
		Short: "Stochastic local search over mixed integer/real arithmetic constraints",
		Long: `slsctl parses a .sls assertion file, lowers it onto the term DAG and
atom store, and runs the stochastic local-search engine's global
lookahead loop to completion or to a move budget.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return slslog.Init(logLevel, logFile)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "optional log file, in addition to stdout")

	root.AddCommand(solveCmd(), watchCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
