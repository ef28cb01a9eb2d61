// Package detector implements the per-rule matchers. Every detector is
// deterministic and side-effect-free given identical input, which is what
// makes review runs idempotent.
package detector

import (
	"context"
	"strings"

	"github.com/ludo-technologies/revet/domain"
)

// Detector checks one rule against one source unit
type Detector interface {
	// RuleID is the catalog rule this detector implements
	RuleID() string

	// Kind tags the matching technique
	Kind() domain.DetectorKind

	// Detect scans the unit and returns zero or more raw matches
	Detect(ctx context.Context, unit *domain.SourceUnit) ([]domain.RawMatch, error)
}

// Registry maps rule ids to their detectors
type Registry struct {
	byRule map[string]Detector
}

// NewRegistry builds a registry holding all built-in detectors
func NewRegistry() *Registry {
	r := &Registry{byRule: make(map[string]Detector)}
	for _, d := range builtinDetectors() {
		r.Register(d)
	}
	return r
}

// Register adds a detector, replacing any previous detector for the rule
func (r *Registry) Register(d Detector) {
	r.byRule[d.RuleID()] = d
}

// Lookup returns the detector for a rule id
func (r *Registry) Lookup(ruleID string) (Detector, bool) {
	d, ok := r.byRule[ruleID]
	return d, ok
}

// Len returns the number of registered detectors
func (r *Registry) Len() int {
	return len(r.byRule)
}

func builtinDetectors() []Detector {
	ds := heuristicDetectors()
	ds = append(ds, syntacticDetectors()...)
	ds = append(ds, semanticDetectors()...)
	return ds
}

const maxExcerptLen = 160

// excerptOf trims a matched line for reporting
func excerptOf(line string) string {
	line = strings.TrimSpace(line)
	if len(line) > maxExcerptLen {
		return line[:maxExcerptLen] + "..."
	}
	return line
}

// splitLines splits content preserving 1-based line numbering
func splitLines(content []byte) []string {
	return strings.Split(string(content), "\n")
}
