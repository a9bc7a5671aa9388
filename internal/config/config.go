package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the workspace.
const DefaultPath = "toongen.yaml"

// Config holds all toongen configuration.
type Config struct {
	// Rendering
	Indent          string            `yaml:"indent"`
	CommentPrefix   string            `yaml:"comment_prefix"`
	TimestampLayout string            `yaml:"timestamp_layout"`
	Strict          bool              `yaml:"strict"` // require a balanced Properties block in every source
	Placeholders    PlaceholderConfig `yaml:"placeholders"`

	// What to generate
	ShaderSets []ShaderSetConfig `yaml:"shader_sets"`

	Logging LoggingConfig `yaml:"logging"`
	Watch   WatchConfig   `yaml:"watch"`
}

// PlaceholderConfig names the template tokens.
type PlaceholderConfig struct {
	Common       string `yaml:"common"`
	Tessellation string `yaml:"tessellation"`
}

// ShaderSetConfig is a group of shaders generated from the same sources.
type ShaderSetConfig struct {
	Name         string         `yaml:"name"`
	Common       string         `yaml:"common"`
	Tessellation string         `yaml:"tessellation,omitempty"`
	Targets      []TargetConfig `yaml:"targets"`
}

// TargetConfig is one generated shader.
type TargetConfig struct {
	Name        string `yaml:"name"`
	Template    string `yaml:"template"`
	Output      string `yaml:"output"`
	Tessellated bool   `yaml:"tessellated,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // console, json
	File       string          `yaml:"file,omitempty"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

const (
	partsDir      = "com.unity.toonshader/Runtime/Shaders/Common/Parts"
	integratedDir = "com.unity.toonshader/Runtime/Integrated/Shaders"
)

// DefaultConfig returns the default configuration: the toon shader package
// layout with UnityToon and UnityToonTessellation generated from one set.
func DefaultConfig() *Config {
	return &Config{
		Indent:          "        ",
		CommentPrefix:   "//Auto-generated on ",
		TimestampLayout: "Mon Jan 02 15:04:05 UTC 2006",
		Placeholders: PlaceholderConfig{
			Common:       "[COMMON_PROPERTIES]",
			Tessellation: "[TESSELLATION_PROPERTIES]",
		},
		ShaderSets: []ShaderSetConfig{
			{
				Name:         "UnityToon",
				Common:       partsDir + "/CommonProperties.shaderblock",
				Tessellation: partsDir + "/TessellationProperties.shaderblock",
				Targets: []TargetConfig{
					{
						Name:     "UnityToon",
						Template: partsDir + "/UnityToon.shadertemplate",
						Output:   integratedDir + "/UnityToon.shader",
					},
					{
						Name:        "UnityToonTessellation",
						Template:    partsDir + "/UnityToonTessellation.shadertemplate",
						Output:      integratedDir + "/UnityToonTessellation.shader",
						Tessellated: true,
					},
				},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("TOONGEN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("TOONGEN_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if strict := os.Getenv("TOONGEN_STRICT"); strict != "" {
		if v, err := strconv.ParseBool(strict); err == nil {
			c.Strict = v
		}
	}
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// ValidLevels and ValidFormats list the accepted logging settings.
var (
	ValidLevels  = []string{"debug", "info", "warn", "warning", "error"}
	ValidFormats = []string{"console", "json"}
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Placeholders.Common == "" {
		return fmt.Errorf("placeholders.common must not be empty")
	}
	if len(c.ShaderSets) == 0 {
		return fmt.Errorf("no shader_sets configured")
	}

	sets := make(map[string]bool)
	outputs := make(map[string]string)
	for i, set := range c.ShaderSets {
		if set.Name == "" {
			return fmt.Errorf("shader_sets[%d]: name is required", i)
		}
		if sets[set.Name] {
			return fmt.Errorf("duplicate shader set %q", set.Name)
		}
		sets[set.Name] = true

		if set.Common == "" {
			return fmt.Errorf("shader set %q: common properties path is required", set.Name)
		}
		if len(set.Targets) == 0 {
			return fmt.Errorf("shader set %q: no targets", set.Name)
		}
		for j, target := range set.Targets {
			if target.Output == "" {
				return fmt.Errorf("shader set %q: targets[%d]: output is required", set.Name, j)
			}
			if owner, dup := outputs[target.Output]; dup {
				return fmt.Errorf("output %s is generated by both %q and %q", target.Output, owner, set.Name)
			}
			outputs[target.Output] = set.Name
		}
	}

	if !contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if !contains(ValidFormats, c.Logging.Format) {
		return fmt.Errorf("invalid logging format: %s (valid: %v)", c.Logging.Format, ValidFormats)
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
		}
	}
	return nil
}

// Set returns the shader set with the given name.
func (c *Config) Set(name string) (ShaderSetConfig, bool) {
	for _, set := range c.ShaderSets {
		if set.Name == name {
			return set, true
		}
	}
	return ShaderSetConfig{}, false
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
