package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toongen/internal/generator"
	"toongen/internal/logging"
	"toongen/internal/watch"
)

// watchCmd regenerates shaders whenever their inputs change
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate shaders when property blocks or templates change",
	Long: `Generates every shader set once, then watches each set's property blocks
and templates and regenerates the set after a change has settled.
Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	runner, fsys, err := newRunner()
	if err != nil {
		return err
	}
	log := logging.For(logger, logging.CategoryWatch)

	ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sets, err := selectedSets(cfg)
	if err != nil {
		return err
	}
	if _, err := runner.RunAll(ctx, sets); err != nil {
		// Keep watching so the broken input can be fixed in place.
		log.Error("Initial generation failed", zap.Error(err))
	}

	owners, err := inputOwners(fsys, sets)
	if err != nil {
		return err
	}
	files := make([]string, 0, len(owners))
	for path := range owners {
		files = append(files, path)
	}

	w, err := watch.New(files, cfg.GetDebounce(), regenerate(runner, sets, owners, log), logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d file(s); press Ctrl+C to stop\n", len(files))

	<-ctx.Done()
	w.Stop()

	stats := w.Stats()
	log.Info("Watch stopped",
		zap.Int("events", stats.Events),
		zap.Int("regenerations", stats.Triggers),
		zap.Int("errors", stats.Errors))
	return nil
}

// inputOwners maps each absolute input path to the indexes of the shader
// sets that read it.
func inputOwners(fsys *generator.OSFileSystem, sets []generator.ShaderSet) (map[string][]int, error) {
	owners := make(map[string][]int)
	add := func(path string, idx int) error {
		if path == "" {
			return nil
		}
		abs, err := filepath.Abs(fsys.Resolve(path))
		if err != nil {
			return err
		}
		list := owners[abs]
		if len(list) > 0 && list[len(list)-1] == idx {
			return nil
		}
		owners[abs] = append(list, idx)
		return nil
	}

	for i, set := range sets {
		inputs := []string{set.Common, set.Tessellation}
		for _, t := range set.Targets {
			inputs = append(inputs, t.Template)
		}
		for _, path := range inputs {
			if err := add(path, i); err != nil {
				return nil, err
			}
		}
	}
	return owners, nil
}

// regenerate returns the watch handler that reruns every set owning one of
// the changed files. A failing set is logged and left for the next change.
func regenerate(runner *generator.Runner, sets []generator.ShaderSet, owners map[string][]int, log *zap.Logger) watch.Handler {
	return func(ctx context.Context, changed []string) {
		affected := make(map[int]bool)
		for _, path := range changed {
			for _, idx := range owners[path] {
				affected[idx] = true
			}
		}

		for i, set := range sets {
			if !affected[i] {
				continue
			}
			log.Info("Inputs changed, regenerating", zap.String("set", set.Name), zap.Strings("changed", changed))
			if _, err := runner.Run(ctx, set); err != nil {
				log.Error("Regeneration failed", zap.String("set", set.Name), zap.Error(err))
			}
		}
	}
}
