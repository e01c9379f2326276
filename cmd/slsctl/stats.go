package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitrdm/arithsls/internal/store"
)

func statsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "stats <run-id>",
		Short: "Print a previously persisted run's statistics and best values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("slsctl: stats requires --db")
			}
			runID := args[0]

			sink, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer sink.Close()

			steps, restarts, flips, tried, applied, err := sink.LoadStats(runID)
			if err != nil {
				return err
			}
			fmt.Printf("run %s\n", runID)
			fmt.Printf("  steps=%d restarts=%d flips=%d moves_tried=%d moves_applied=%d\n",
				steps, restarts, flips, tried, applied)

			values, err := sink.LoadBestValues(runID)
			if err != nil {
				return err
			}
			if len(values) == 0 {
				return nil
			}

			ids := make([]int, 0, len(values))
			for id := range values {
				ids = append(ids, id)
			}
			sort.Ints(ids)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VAR\tVALUE")
			for _, id := range ids {
				fmt.Fprintf(w, "%d\t%s\n", id, values[id])
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite path the run was persisted to")
	return cmd
}
