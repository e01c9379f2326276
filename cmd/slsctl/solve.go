package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gitrdm/arithsls/internal/config"
	"github.com/gitrdm/arithsls/internal/store"
)

func solveCmd() *cobra.Command {
	var configPath string
	var dbPath string
	var maxMoves int
	var overrides []string

	cmd := &cobra.Command{
		Use:   "solve <file.sls>",
		Short: "Parse a .sls file and run local search over its assertions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(configPath, overrides)
			if err != nil {
				return err
			}

			result, err := solveFile(args[0], p, maxMoves)
			if err != nil {
				return err
			}

			runID := uuid.New().String()
			printResult(result, runID)

			sink, err := openSink(dbPath)
			if err != nil {
				return err
			}
			defer sink.Close()
			return persistRun(sink, runID, p, result)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML parameter file (config.Default() used if omitted)")
	cmd.Flags().StringVar(&dbPath, "db", "", "optional SQLite path to persist the run snapshot")
	cmd.Flags().IntVar(&maxMoves, "max-moves", 0, "move budget override (0 uses the config's max_moves_base)")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "override a parameter, e.g. --set paws-init=5")
	return cmd
}

// loadParams starts from config.Default(), optionally overlays a YAML
// file, then applies --set overrides last so they always win.
func loadParams(configPath string, overrides []string) (config.Params, error) {
	p := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return p, err
		}
		p = loaded
	}
	if err := config.ApplyOverrides(&p, overrides); err != nil {
		return p, err
	}
	return p, nil
}

// openSink returns a Noop sink when dbPath is empty, matching
// SPEC_FULL.md §4.L's "persistence is additive, Noop is the default".
func openSink(dbPath string) (store.Sink, error) {
	if dbPath == "" {
		return store.Noop{}, nil
	}
	return store.Open(dbPath)
}

// printResult reports sat/unsat/unknown in colour, then every declared
// variable's final value.
func printResult(r *solveResult, runID string) {
	var status string
	printer := color.New(color.FgYellow)
	switch {
	case r.host.Unsat():
		status = "unsat"
		printer = color.New(color.FgRed)
	case r.sat:
		status = "sat"
		printer = color.New(color.FgGreen)
	default:
		status = "unknown"
	}
	printer.Println(status)

	stats := r.eng.CollectStatistics()
	fmt.Printf("run %s: %d steps, %d restarts\n", runID, stats.Steps, stats.Restarts)
	for _, name := range r.sortedNames() {
		fmt.Printf("  %s = %s\n", name, r.valueOf(name))
	}
}

// persistRun flattens result into the primitive fields store.Sink
// expects, keyed by runID.
func persistRun(sink store.Sink, runID string, p config.Params, r *solveResult) error {
	if err := sink.SaveRun(runID, string(p.Backend), p.Seed); err != nil {
		return err
	}
	values := make(map[int]string, len(r.names))
	for name, v := range r.names {
		values[int(v)] = r.valueOf(name)
	}
	if err := sink.SaveBestValues(runID, values); err != nil {
		return err
	}
	stats := r.eng.CollectStatistics()
	return sink.SaveStats(runID, stats.Steps, stats.Restarts, stats.Flips, stats.MovesTried, stats.MovesApplied)
}
