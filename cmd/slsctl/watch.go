package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gitrdm/arithsls/internal/slslog"
)

func watchCmd() *cobra.Command {
	var configPath string
	var maxMoves int
	var overrides []string

	cmd := &cobra.Command{
		Use:   "watch <file.sls>",
		Short: "Re-solve a .sls file every time it changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			p, err := loadParams(configPath, overrides)
			if err != nil {
				return err
			}

			solveOnce := func() {
				result, err := solveFile(path, p, maxMoves)
				if err != nil {
					slslog.Log.Error("solve failed", "path", path, "err", err)
					return
				}
				printResult(result, uuid.New().String())
			}
			solveOnce()

			fw, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("slsctl: watch: %w", err)
			}
			defer fw.Close()
			if err := fw.Add(path); err != nil {
				return fmt.Errorf("slsctl: watch %s: %w", path, err)
			}

			color.Cyan("watching %s for changes (ctrl-c to stop)", path)
			for {
				select {
				case ev, ok := <-fw.Events:
					if !ok {
						return nil
					}
					if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					solveOnce()
				case watchErr, ok := <-fw.Errors:
					if !ok {
						return nil
					}
					slslog.Log.Warn("watch error", "err", watchErr)
				}
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML parameter file (config.Default() used if omitted)")
	cmd.Flags().IntVar(&maxMoves, "max-moves", 0, "move budget override (0 uses the config's max_moves_base)")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "override a parameter, e.g. --set paws-init=5")
	return cmd
}
