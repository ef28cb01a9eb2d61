package service

import (
	"github.com/ludo-technologies/revet/domain"
	"github.com/ludo-technologies/revet/internal/config"
)

// ConfigurationLoaderImpl implements the ConfigurationLoader interface
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.ReviewRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}

	req := c.convertToReviewRequest(cfg)
	req.ConfigPath = path
	return req, nil
}

// LoadDefaultConfig loads the default configuration, searching the usual
// config file locations first
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.ReviewRequest {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err == nil {
		return c.convertToReviewRequest(cfg)
	}

	// Fall back to hardcoded default configuration
	return c.convertToReviewRequest(config.DefaultConfig())
}

// MergeConfig merges CLI flags with configuration file
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.ReviewRequest, override *domain.ReviewRequest) *domain.ReviewRequest {
	// Start with base configuration
	merged := *base

	// The changeset always comes from the command invocation
	if len(override.Changeset) > 0 {
		merged.Changeset = override.Changeset
	}

	if len(override.ExcludeGlobs) > 0 {
		merged.ExcludeGlobs = override.ExcludeGlobs
	}

	if override.MinSeverity != "" {
		merged.MinSeverity = override.MinSeverity
	}

	if override.FailOn != "" {
		merged.FailOn = override.FailOn
	}

	if len(override.LanguageOverrides) > 0 {
		merged.LanguageOverrides = override.LanguageOverrides
	}

	// Output configuration
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}

	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}

	// Config path is always from override if provided
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	return &merged
}

// FromConfig builds a ReviewRequest from an already-loaded configuration
func (c *ConfigurationLoaderImpl) FromConfig(cfg *config.Config) *domain.ReviewRequest {
	return c.convertToReviewRequest(cfg)
}

// convertToReviewRequest converts a Config to ReviewRequest
func (c *ConfigurationLoaderImpl) convertToReviewRequest(cfg *config.Config) *domain.ReviewRequest {
	minSeverity, _ := domain.ParseSeverity(cfg.Review.MinSeverity)
	failOn, _ := domain.ParseSeverity(cfg.Review.FailOn)

	return &domain.ReviewRequest{
		// The changeset is set by the caller, not from config
		ExcludeGlobs:      cfg.Review.ExcludePatterns,
		MinSeverity:       minSeverity,
		FailOn:            failOn,
		LanguageOverrides: cfg.Review.LanguageOverrides,
		OutputFormat:      domain.OutputFormat(cfg.Output.Format),
	}
}
