package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatSARIF OutputFormat = "sarif"
)

// Severity represents the priority tier of a finding
type Severity string

const (
	SeveritySecurity    Severity = "security"
	SeverityCorrectness Severity = "correctness"
	SeverityStyle       Severity = "style"
)

// Rank returns the numeric priority of a severity; higher sorts first
func (s Severity) Rank() int {
	switch s {
	case SeveritySecurity:
		return 3
	case SeverityCorrectness:
		return 2
	case SeverityStyle:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is at or above the given minimum severity
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// ParseSeverity converts a string into a Severity, reporting validity
func ParseSeverity(value string) (Severity, bool) {
	switch Severity(value) {
	case SeveritySecurity, SeverityCorrectness, SeverityStyle:
		return Severity(value), true
	}
	return "", false
}

// ChangedFile is a single (path, content) entry of a changeset
type ChangedFile struct {
	Path    string `json:"path"`
	Content []byte `json:"-"`
}

// SourceUnit is a changed file prepared for analysis. It is created once
// per review invocation and read-only to all downstream components.
type SourceUnit struct {
	// Path is the changeset-relative file path
	Path string `json:"path"`

	// Language is inferred from the file extension (empty if unknown)
	Language string `json:"language,omitempty"`

	// Content is the full file text
	Content []byte `json:"-"`

	// Excluded is derived by the file filter
	Excluded bool `json:"excluded,omitempty"`
}

// LineRange is an inclusive 1-based line span within a file
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Normalize orders the endpoints and clamps them to valid line numbers
func (lr LineRange) Normalize() LineRange {
	if lr.Start < 1 {
		lr.Start = 1
	}
	if lr.End < lr.Start {
		lr.End = lr.Start
	}
	return lr
}

// RawMatch is a single detector hit before prioritization. Transient;
// only the priority resolver consumes it.
type RawMatch struct {
	RuleID  string
	Path    string
	Lines   LineRange
	Excerpt string
}

// Finding is a reported rule violation, the unit returned to callers
type Finding struct {
	RuleID       string    `json:"rule_id" yaml:"rule_id"`
	Severity     Severity  `json:"severity" yaml:"severity"`
	Category     Category  `json:"category" yaml:"category"`
	Path         string    `json:"path" yaml:"path"`
	Lines        LineRange `json:"lines" yaml:"lines"`
	Message      string    `json:"message" yaml:"message"`
	Excerpt      string    `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	SuggestedFix string    `json:"suggested_fix,omitempty" yaml:"suggested_fix,omitempty"`
}

// DetectorFailure records a detector invocation that errored, panicked or
// timed out. Failures are reported alongside findings and never abort the
// run.
type DetectorFailure struct {
	RuleID string `json:"rule_id" yaml:"rule_id"`
	Path   string `json:"path" yaml:"path"`
	Cause  string `json:"cause" yaml:"cause"`
}

// ReviewRequest represents a single review invocation
type ReviewRequest struct {
	// Changeset is the ordered set of changed files to review
	Changeset []ChangedFile

	// ExcludeGlobs removes matching paths from analysis
	ExcludeGlobs []string

	// MinSeverity drops findings below this tier from the output
	MinSeverity Severity

	// FailOn controls the failing exit status threshold
	FailOn Severity

	// LanguageOverrides maps file extensions (with dot) to language tags
	LanguageOverrides map[string]string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer

	// ConfigPath is the configuration file used, for traceability
	ConfigPath string
}

// ReviewSummary provides aggregate statistics for a review run
type ReviewSummary struct {
	FilesChanged  int `json:"files_changed" yaml:"files_changed"`
	FilesAnalyzed int `json:"files_analyzed" yaml:"files_analyzed"`
	FilesExcluded int `json:"files_excluded" yaml:"files_excluded"`

	TotalFindings       int `json:"total_findings" yaml:"total_findings"`
	SecurityFindings    int `json:"security_findings" yaml:"security_findings"`
	CorrectnessFindings int `json:"correctness_findings" yaml:"correctness_findings"`
	StyleFindings       int `json:"style_findings" yaml:"style_findings"`

	DetectorFailures int `json:"detector_failures" yaml:"detector_failures"`

	// Partial is set when the run was cancelled or a filter pattern had to
	// be skipped, so callers never mistake partial output for a clean pass.
	Partial bool `json:"partial" yaml:"partial"`
}

// ReviewResponse represents the complete result of a review run
type ReviewResponse struct {
	Findings []Finding         `json:"findings" yaml:"findings"`
	Failures []DetectorFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Summary  ReviewSummary     `json:"summary" yaml:"summary"`

	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// ShouldFail reports whether the run must exit non-zero given the
// configured fail-on threshold
func (r *ReviewResponse) ShouldFail(failOn Severity) bool {
	for _, f := range r.Findings {
		if f.Severity.AtLeast(failOn) {
			return true
		}
	}
	return false
}

// ReviewService defines the core review engine
type ReviewService interface {
	// Review analyzes the changeset and returns ordered findings
	Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error)
}

// OutputFormatter renders a review response in a given format
type OutputFormatter interface {
	Write(response *ReviewResponse, format OutputFormat, writer io.Writer) error
}

// ConfigurationLoader defines the interface for loading configuration
type ConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*ReviewRequest, error)

	// LoadDefaultConfig loads the default configuration
	LoadDefaultConfig() *ReviewRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *ReviewRequest, override *ReviewRequest) *ReviewRequest
}

// ChangesetProvider supplies the (path, content) pairs to review. Concrete
// providers read the working tree, the git index or a revision diff; the
// engine itself never touches the filesystem.
type ChangesetProvider interface {
	Changeset(ctx context.Context) ([]ChangedFile, error)
}
