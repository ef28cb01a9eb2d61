// Package catalog holds the immutable rule catalog. The catalog is loaded
// and validated exactly once per process; after load it is read-only, so
// workers share it without locking.
package catalog

import (
	_ "embed"
	"regexp"
	"sort"
	"sync"

	"github.com/ludo-technologies/revet/domain"
	"gopkg.in/yaml.v3"
)

// DefaultRulesYAML contains the embedded rule set
//
//go:embed rules.yaml
var DefaultRulesYAML []byte

// supported fixTemplate placeholders; anything else fails catalog load
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_]+)\s*\}\}`)

var knownPlaceholders = map[string]bool{
	"excerpt": true,
	"path":    true,
	"line":    true,
	"rule":    true,
}

// Catalog is the validated, immutable set of rule definitions
type Catalog struct {
	rules  []domain.RuleDefinition
	byID   map[string]*domain.RuleDefinition
	numVer int
}

type rulesFile struct {
	Version int                     `yaml:"version"`
	Rules   []domain.RuleDefinition `yaml:"rules"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the process-wide catalog built from the embedded rule
// set. The load happens once; every subsequent call returns the same
// immutable catalog (or the same CatalogError).
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(DefaultRulesYAML)
	})
	return defaultCatalog, defaultErr
}

// Load parses and validates a rule set. It fails fast with a CatalogError
// on duplicate ids, unknown categories or unresolvable fix templates.
func Load(data []byte) (*Catalog, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domain.NewCatalogError("", "failed to parse rule set: %v", err)
	}

	if len(file.Rules) == 0 {
		return nil, domain.NewCatalogError("", "rule set is empty")
	}

	validCategories := domain.ValidCategories()

	c := &Catalog{
		rules:  make([]domain.RuleDefinition, 0, len(file.Rules)),
		byID:   make(map[string]*domain.RuleDefinition, len(file.Rules)),
		numVer: file.Version,
	}

	for _, rule := range file.Rules {
		if rule.ID == "" {
			return nil, domain.NewCatalogError("", "rule with empty id")
		}
		if _, exists := c.byID[rule.ID]; exists {
			return nil, domain.NewCatalogError(rule.ID, "duplicate rule id")
		}
		if !validCategories[rule.Category] {
			return nil, domain.NewCatalogError(rule.ID, "unknown category %q", rule.Category)
		}
		switch rule.DetectorKind {
		case domain.DetectorKindSyntactic, domain.DetectorKindSemantic, domain.DetectorKindHeuristicText:
		default:
			return nil, domain.NewCatalogError(rule.ID, "unknown detector kind %q", rule.DetectorKind)
		}
		if len(rule.AppliesTo) == 0 {
			return nil, domain.NewCatalogError(rule.ID, "applies_to cannot be empty")
		}
		if err := validateFixTemplate(rule.ID, rule.FixTemplate); err != nil {
			return nil, err
		}

		// Severity is assigned here, from the versioned mapping table,
		// never declared by the rule itself.
		severity, ok := SeverityFor(rule.Category)
		if !ok {
			return nil, domain.NewCatalogError(rule.ID, "category %q has no severity mapping", rule.Category)
		}
		rule.Severity = severity

		c.rules = append(c.rules, rule)
	}

	// Stable id order so AllRules is deterministic regardless of file order
	sort.Slice(c.rules, func(i, j int) bool { return c.rules[i].ID < c.rules[j].ID })
	for i := range c.rules {
		c.byID[c.rules[i].ID] = &c.rules[i]
	}

	return c, nil
}

// validateFixTemplate rejects placeholders that cannot be resolved at
// render time
func validateFixTemplate(ruleID, template string) error {
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !knownPlaceholders[match[1]] {
			return domain.NewCatalogError(ruleID, "fix template references unknown placeholder %q", match[1])
		}
	}
	return nil
}

// AllRules returns every rule definition in stable id order
func (c *Catalog) AllRules() []domain.RuleDefinition {
	out := make([]domain.RuleDefinition, len(c.rules))
	copy(out, c.rules)
	return out
}

// RulesFor returns the rules applicable to the given language tag,
// including rules that apply to any language
func (c *Catalog) RulesFor(language string) []domain.RuleDefinition {
	var out []domain.RuleDefinition
	for _, rule := range c.rules {
		if rule.AppliesToLanguage(language) {
			out = append(out, rule)
		}
	}
	return out
}

// ByID returns the rule with the given id
func (c *Catalog) ByID(id string) (*domain.RuleDefinition, bool) {
	rule, ok := c.byID[id]
	return rule, ok
}

// Len returns the number of rules in the catalog
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Version returns the rule set version declared in the source file
func (c *Catalog) Version() int {
	return c.numVer
}
