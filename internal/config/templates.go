package config

import "fmt"

// Strictness selects how aggressive the generated configuration is
type Strictness string

const (
	StrictnessLenient  Strictness = "lenient"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// strictness presets: min_severity / fail_on pairs
func strictnessPreset(s Strictness) (minSeverity, failOn string) {
	switch s {
	case StrictnessLenient:
		return "correctness", "security"
	case StrictnessStrict:
		return "style", "correctness"
	default:
		return "style", "security"
	}
}

// GetMinimalConfigTemplate returns a config template with essential
// options only
func GetMinimalConfigTemplate() string {
	return `# revet configuration
review:
  min_severity: style     # security | correctness | style
  fail_on: security       # exit non-zero at or above this tier
  exclude_patterns:
    - "**/*test*/**"
    - "**/*.test.*"
    - "node_modules/**"
output:
  format: text            # text | json | yaml | sarif
`
}

// GetFullConfigTemplate returns a fully documented config template for the
// given strictness preset
func GetFullConfigTemplate(strictness Strictness) string {
	minSeverity, failOn := strictnessPreset(strictness)

	return fmt.Sprintf(`# revet configuration
# Generated with the %s preset.

review:
  # Minimum severity tier to report: security | correctness | style
  min_severity: %s

  # Exit non-zero when any finding is at or above this tier.
  # Allowed: security | correctness
  fail_on: %s

  # Paths matching any pattern are excluded from analysis.
  # Supports *, ** and ?; matching is case-sensitive.
  exclude_patterns:
    - "**/*test*/**"
    - "**/*.test.*"
    - "**/*.spec.*"
    - "**/testdata/**"
    - "node_modules/**"
    - "vendor/**"
    - "dist/**"
    - "build/**"
    - "*.min.js"
    - "*.map"
    - ".git/**"

  # Map nonstandard file extensions to language tags.
  language_overrides: {}
  #  .mjsx: javascript

output:
  # Output format: text | json | yaml | sarif
  format: text

  # Include the matched source excerpt with each finding.
  show_excerpts: true

performance:
  # Parallel file workers (0 = number of CPUs).
  max_goroutines: %d

  # Whole-run deadline in seconds (0 = no deadline).
  timeout_seconds: %d

  # Per-detector-invocation deadline in milliseconds.
  detector_timeout_ms: %d
`, strictness, minSeverity, failOn,
		DefaultMaxGoroutines, DefaultTimeoutSeconds, DefaultDetectorTimeoutMs)
}
