// Package filter decides which changed files enter analysis. Matching is
// pure: no I/O happens beyond the provided path strings.
package filter

import (
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/ludo-technologies/revet/domain"
)

// Filter evaluates exclusion globs against changeset paths. Patterns
// support *, ** and ?; matching is case-sensitive. A path is excluded when
// it matches any pattern.
type Filter struct {
	matcher *gitignore.GitIgnore

	// Errors holds the per-pattern failures encountered at compile time.
	// A malformed pattern is fatal for that pattern only: it is skipped
	// and affected files stay included.
	Errors []*domain.FilterError
}

// New compiles the exclusion patterns. Malformed patterns are collected in
// Errors rather than aborting the run.
func New(excludeGlobs []string) *Filter {
	f := &Filter{}

	valid := make([]string, 0, len(excludeGlobs))
	for _, pattern := range excludeGlobs {
		if err := validatePattern(pattern); err != nil {
			f.Errors = append(f.Errors, err)
			continue
		}
		valid = append(valid, pattern)
	}

	f.matcher = gitignore.CompileIgnoreLines(valid...)
	return f
}

// Include reports whether the path should enter analysis
func (f *Filter) Include(path string) bool {
	if f.matcher == nil {
		return true
	}
	return !f.matcher.MatchesPath(path)
}

// validatePattern rejects globs the matcher would silently misread
func validatePattern(pattern string) *domain.FilterError {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return &domain.FilterError{Pattern: pattern, Message: "empty pattern"}
	}

	depth := 0
	for _, r := range trimmed {
		switch r {
		case '[':
			depth++
		case ']':
			if depth == 0 {
				return &domain.FilterError{Pattern: pattern, Message: "unmatched ']' in character class"}
			}
			depth--
		}
	}
	if depth != 0 {
		return &domain.FilterError{Pattern: pattern, Message: "unterminated character class"}
	}

	return nil
}
