package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toongen/internal/diff"
	"toongen/internal/logging"
)

// generateCmd writes every configured shader set
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate every configured shader set",
	Long: `Reads the property blocks and templates of each shader set, merges the
properties and writes the generated shaders. Nothing in a set is written
unless all of its shaders could be generated.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

// checkCmd reports stale generated shaders without writing
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report generated shaders that are out of date",
	Long: `Generates every shader set in memory and prints a diff for each shader
whose file differs from what would be written. The auto-generated timestamp
line is ignored. Exits with status 1 when anything is out of date.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	runner, _, err := newRunner()
	if err != nil {
		return err
	}

	sets, err := selectedSets(cfg)
	if err != nil {
		return err
	}

	results, err := runner.RunAll(cmdContext(cmd), sets)
	out := cmd.OutOrStdout()
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, r := range res.Outputs {
			fmt.Fprintf(out, "%s %s (%s)\n", styles.OK.Render("generated"), r.Target.Output, res.Set)
		}
	}
	return err
}

func runCheck(cmd *cobra.Command, args []string) error {
	runner, _, err := newRunner()
	if err != nil {
		return err
	}
	sets, err := selectedSets(cfg)
	if err != nil {
		return err
	}
	log := logging.For(logger, logging.CategoryCheck)
	ctx := cmdContext(cmd)
	out := cmd.OutOrStdout()

	stale := 0
	for _, set := range sets {
		drifts, err := runner.Check(ctx, set)
		if err != nil {
			return fmt.Errorf("shader set %q: %w", set.Name, err)
		}
		for _, d := range drifts {
			stale++
			log.Info("Shader out of date",
				zap.String("set", set.Name),
				zap.String("target", d.Target.Name),
				zap.String("path", d.Target.Output),
				zap.Bool("missing", d.Diff.IsNew))
			fmt.Fprint(out, diff.Unified(d.Diff, styleDiffLine))
		}
	}

	if stale > 0 {
		fmt.Fprintf(out, "%s %d shader(s) out of date; run toongen generate\n", styles.Removed.Render("stale"), stale)
		return errStale
	}
	fmt.Fprintln(out, styles.OK.Render("all generated shaders are up to date"))
	return nil
}

// styleDiffLine colours one line of unified diff output.
func styleDiffLine(part diff.Part, line string) string {
	switch part {
	case diff.PartFileHeader:
		return styles.Header.Render(line)
	case diff.PartHunkHeader:
		return styles.Hunk.Render(line)
	case diff.PartAdded:
		return styles.Added.Render(line)
	case diff.PartRemoved:
		return styles.Removed.Render(line)
	default:
		return line
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
