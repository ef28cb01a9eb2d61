package service

import (
	"sort"
	"strings"

	"github.com/ludo-technologies/revet/domain"
	"github.com/ludo-technologies/revet/internal/catalog"
)

// Resolver turns raw detector matches into the final ordered finding list.
// Its sort key makes output deterministic regardless of the order workers
// finished in.
type Resolver struct {
	catalog *catalog.Catalog
}

// NewResolver creates a resolver bound to the active catalog
func NewResolver(cat *catalog.Catalog) *Resolver {
	return &Resolver{catalog: cat}
}

type matchKey struct {
	ruleID string
	path   string
	lines  domain.LineRange
}

// Resolve groups matches by (ruleId, path, normalizedLineRange), merges
// each group into one finding, orders the result and applies the minimum
// severity cut. No finding is silently dropped: distinct rules firing on
// overlapping ranges surface separately.
func (r *Resolver) Resolve(matches []domain.RawMatch, minSeverity domain.Severity) []domain.Finding {
	groups := make(map[matchKey][]domain.RawMatch)
	for _, m := range matches {
		key := matchKey{ruleID: m.RuleID, path: m.Path, lines: m.Lines.Normalize()}
		groups[key] = append(groups[key], m)
	}

	findings := make([]domain.Finding, 0, len(groups))
	for key, group := range groups {
		rule, ok := r.catalog.ByID(key.ruleID)
		if !ok {
			// matches only originate from catalog rules; an unknown id
			// would be an engine bug, never user input
			continue
		}

		excerpts := make([]string, 0, len(group))
		seen := make(map[string]bool, len(group))
		for _, m := range group {
			if m.Excerpt == "" || seen[m.Excerpt] {
				continue
			}
			seen[m.Excerpt] = true
			excerpts = append(excerpts, m.Excerpt)
		}
		sort.Strings(excerpts)
		excerpt := strings.Join(excerpts, " | ")

		findings = append(findings, domain.Finding{
			RuleID:       rule.ID,
			Severity:     rule.Severity,
			Category:     rule.Category,
			Path:         key.path,
			Lines:        key.lines,
			Message:      rule.Rationale,
			Excerpt:      excerpt,
			SuggestedFix: catalog.RenderFix(rule, firstExcerpt(excerpts), key.path, key.lines.Start),
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Lines.Start != b.Lines.Start {
			return a.Lines.Start < b.Lines.Start
		}
		return a.RuleID < b.RuleID
	})

	if minSeverity == "" {
		return findings
	}
	out := findings[:0]
	for _, f := range findings {
		if f.Severity.AtLeast(minSeverity) {
			out = append(out, f)
		}
	}
	return out
}

func firstExcerpt(excerpts []string) string {
	if len(excerpts) == 0 {
		return ""
	}
	return excerpts[0]
}
