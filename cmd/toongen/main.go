package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toongen/internal/config"
	"toongen/internal/generator"
	"toongen/internal/logging"
	"toongen/internal/template"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	setNames   []string

	// Set up by PersistentPreRunE
	logger *zap.Logger
	cfg    *config.Config
)

// errStale is returned by check when a generated shader is out of date.
var errStale = errors.New("generated shaders are out of date")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "toongen",
	Short: "Generate the toon shaders from their shared property blocks",
	Long: `toongen merges the common and tessellation property blocks of the toon
shader package and renders them into the UnityToon shader templates.

Run without a subcommand to generate every configured shader set.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "Workspace directory that shader paths are relative to")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Config file (relative to the workspace)")
	rootCmd.PersistentFlags().StringSliceVar(&setNames, "set", nil, "Only process the named shader sets (default: all)")

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errStale) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// setup loads the config and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(resolveConfigPath())
	if err != nil {
		return err
	}

	logger, err = logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		Categories: cfg.Logging.Categories,
	}, verbose)
	if err != nil {
		return err
	}
	logging.For(logger, logging.CategoryConfig).Debug("Config loaded",
		zap.String("path", resolveConfigPath()),
		zap.Int("shader_sets", len(cfg.ShaderSets)))
	return nil
}

func workspaceDir() string {
	if workspace == "" {
		return "."
	}
	return workspace
}

func resolveConfigPath() string {
	if configPath == "" {
		configPath = config.DefaultPath
	}
	if filepath.IsAbs(configPath) {
		return configPath
	}
	return filepath.Join(workspaceDir(), configPath)
}

// newRunner validates the config and builds a runner rooted at the workspace.
func newRunner() (*generator.Runner, *generator.OSFileSystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config %s: %w", resolveConfigPath(), err)
	}
	fsys := generator.NewOSFileSystem(workspaceDir())
	return generator.NewRunner(fsys, generatorOptions(cfg), logger), fsys, nil
}

func generatorOptions(c *config.Config) generator.Options {
	return generator.Options{
		Applier: &template.Applier{
			Placeholders: template.Placeholders{
				Common:       c.Placeholders.Common,
				Tessellation: c.Placeholders.Tessellation,
			},
			Indent:        c.Indent,
			CommentPrefix: c.CommentPrefix,
		},
		TimestampLayout: c.TimestampLayout,
		Strict:          c.Strict,
	}
}

func shaderSets(c *config.Config) []generator.ShaderSet {
	sets := make([]generator.ShaderSet, 0, len(c.ShaderSets))
	for _, s := range c.ShaderSets {
		sets = append(sets, toShaderSet(s))
	}
	return sets
}

// selectedSets returns the sets named by --set, in flag order, or every
// configured set when the flag is absent.
func selectedSets(c *config.Config) ([]generator.ShaderSet, error) {
	if len(setNames) == 0 {
		return shaderSets(c), nil
	}
	sets := make([]generator.ShaderSet, 0, len(setNames))
	for _, name := range setNames {
		s, ok := c.Set(name)
		if !ok {
			return nil, fmt.Errorf("unknown shader set %q", name)
		}
		sets = append(sets, toShaderSet(s))
	}
	return sets, nil
}

func toShaderSet(s config.ShaderSetConfig) generator.ShaderSet {
	set := generator.ShaderSet{
		Name:         s.Name,
		Common:       s.Common,
		Tessellation: s.Tessellation,
	}
	for _, t := range s.Targets {
		set.Targets = append(set.Targets, generator.Target{
			Name:        t.Name,
			Template:    t.Template,
			Output:      t.Output,
			Tessellated: t.Tessellated,
		})
	}
	return set
}
