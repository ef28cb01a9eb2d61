package domain

import "fmt"

// CatalogError reports a malformed rule catalog. It is the only fatal
// error in the taxonomy: a run cannot proceed without a valid catalog.
type CatalogError struct {
	RuleID  string
	Message string
}

func (e *CatalogError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("catalog: %s", e.Message)
	}
	return fmt.Sprintf("catalog: rule %q: %s", e.RuleID, e.Message)
}

// NewCatalogError creates a CatalogError for the given rule
func NewCatalogError(ruleID, format string, args ...any) *CatalogError {
	return &CatalogError{RuleID: ruleID, Message: fmt.Sprintf(format, args...)}
}

// FilterError reports a malformed exclusion glob. Fatal for that pattern
// only: the pattern is skipped, affected files are treated as included and
// the run continues with a tooling warning.
type FilterError struct {
	Pattern string
	Message string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter: pattern %q: %s", e.Pattern, e.Message)
}

// ConfigError reports an invalid configuration bundle
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps an underlying error with configuration context
func NewConfigError(message string, err error) *ConfigError {
	return &ConfigError{Message: message, Err: err}
}
