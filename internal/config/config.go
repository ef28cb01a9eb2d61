package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/revet/domain"
)

// Default review settings
const (
	// DefaultMinSeverity reports every tier
	DefaultMinSeverity = "style"

	// DefaultFailOn makes only security findings fail the run
	DefaultFailOn = "security"
)

// Default performance settings
const (
	DefaultMaxGoroutines     = 4
	DefaultTimeoutSeconds    = 300
	DefaultDetectorTimeoutMs = 2000
)

// Config represents the main configuration structure
type Config struct {
	// Review holds review engine configuration
	Review ReviewConfig `json:"review" mapstructure:"review" yaml:"review"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Performance holds worker pool and timeout configuration
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`
}

// ReviewConfig holds configuration for the review engine
type ReviewConfig struct {
	// ExcludePatterns removes matching paths from analysis (*, **, ?)
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// MinSeverity is the minimum severity tier to report
	MinSeverity string `json:"min_severity" mapstructure:"min_severity" yaml:"min_severity"`

	// FailOn is the severity tier at or above which the run exits non-zero
	FailOn string `json:"fail_on" mapstructure:"fail_on" yaml:"fail_on"`

	// LanguageOverrides maps file extensions (with dot) to language tags
	LanguageOverrides map[string]string `json:"language_overrides" mapstructure:"language_overrides" yaml:"language_overrides"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, sarif
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// ShowExcerpts controls whether matched excerpts are rendered
	ShowExcerpts bool `json:"show_excerpts" mapstructure:"show_excerpts" yaml:"show_excerpts"`
}

// PerformanceConfig holds worker pool configuration
type PerformanceConfig struct {
	// MaxGoroutines bounds the file worker pool (0 = NumCPU)
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds the whole review run
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// DetectorTimeoutMs bounds a single detector invocation
	DetectorTimeoutMs int `json:"detector_timeout_ms" mapstructure:"detector_timeout_ms" yaml:"detector_timeout_ms"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Review: ReviewConfig{
			ExcludePatterns: []string{
				// test paths are excluded by default, matching the
				// guideline catalog's own exclusion of test code
				"**/*test*/**",
				"**/*.test.*",
				"**/*.spec.*",
				"**/testdata/**",
				// dependencies and build outputs
				"node_modules/**",
				"vendor/**",
				"dist/**",
				"build/**",
				// generated and minified files
				"*.min.js",
				"*.map",
				// version control
				".git/**",
			},
			MinSeverity:       DefaultMinSeverity,
			FailOn:            DefaultFailOn,
			LanguageOverrides: map[string]string{},
		},
		Output: OutputConfig{
			Format:       "text",
			ShowExcerpts: true,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:     DefaultMaxGoroutines,
			TimeoutSeconds:    DefaultTimeoutSeconds,
			DetectorTimeoutMs: DefaultDetectorTimeoutMs,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// New viper instance per load to avoid race conditions
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// searchConfigInDirectory searches for configuration files in a directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for configuration files in common locations,
// walking up from the target path
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		"revet.yaml",
		"revet.yml",
		".revet.yaml",
		".revet.yml",
		"revet.json",
		".revet.json",
	}

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}
				if parent := filepath.Dir(dir); parent == dir {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "revet"), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", "revet"), candidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv("REVET_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if _, ok := domain.ParseSeverity(c.Review.MinSeverity); !ok {
		return fmt.Errorf("invalid review.min_severity '%s', must be one of: security, correctness, style", c.Review.MinSeverity)
	}

	failOn, ok := domain.ParseSeverity(c.Review.FailOn)
	if !ok {
		return fmt.Errorf("invalid review.fail_on '%s', must be one of: security, correctness, style", c.Review.FailOn)
	}
	// failing every run on style findings defeats the tiering
	if failOn == domain.SeverityStyle {
		return fmt.Errorf("review.fail_on cannot be 'style'; use security or correctness")
	}

	for ext := range c.Review.LanguageOverrides {
		if ext == "" || ext[0] != '.' {
			return fmt.Errorf("invalid language override extension '%s', must start with '.'", ext)
		}
	}

	validFormats := map[string]bool{
		"text":  true,
		"json":  true,
		"yaml":  true,
		"sarif": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, sarif", c.Output.Format)
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}
	if c.Performance.DetectorTimeoutMs < 0 {
		return fmt.Errorf("performance.detector_timeout_ms must be >= 0, got %d", c.Performance.DetectorTimeoutMs)
	}

	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("review", config.Review)
	v.Set("output", config.Output)
	v.Set("performance", config.Performance)

	return v.WriteConfig()
}
