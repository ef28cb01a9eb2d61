package domain

// Category classifies a rule by the guideline area it enforces
type Category string

const (
	CategoryComments     Category = "comments"
	CategoryEnvironment  Category = "environment"
	CategoryFunctions    Category = "functions"
	CategoryGeneral      Category = "general"
	CategoryLangSpecific Category = "language-specific"
	CategoryNames        Category = "names"
	CategoryTests        Category = "tests"
	CategorySecurity     Category = "security"
	CategoryCommits      Category = "commits"

	// CategoryTooling marks engine-originated warnings (e.g. a malformed
	// exclude pattern), not guideline violations.
	CategoryTooling Category = "tooling"
)

// DetectorKind identifies the matching technique a rule's detector uses
type DetectorKind string

const (
	// DetectorKindSyntactic matches structural patterns against a parsed
	// representation of the source.
	DetectorKindSyntactic DetectorKind = "syntactic"

	// DetectorKindSemantic performs lightweight, best-effort flow reasoning.
	DetectorKindSemantic DetectorKind = "semantic"

	// DetectorKindHeuristicText scans raw text with regex/token heuristics.
	DetectorKindHeuristicText DetectorKind = "heuristic-text"
)

// LanguageAny marks a rule as applicable to every language
const LanguageAny = "any"

// RuleDefinition describes a single review rule. Definitions are created
// once at catalog load and are immutable afterwards.
type RuleDefinition struct {
	// ID is the unique, stable rule identifier (e.g. "no-eval")
	ID string `json:"id" yaml:"id"`

	// Category is the guideline area this rule belongs to
	Category Category `json:"category" yaml:"category"`

	// Severity is derived from Category at catalog load time
	Severity Severity `json:"severity" yaml:"-"`

	// AppliesTo lists language tags the rule applies to, or ["any"]
	AppliesTo []string `json:"applies_to" yaml:"applies_to"`

	// DetectorKind selects the matching technique
	DetectorKind DetectorKind `json:"detector_kind" yaml:"detector_kind"`

	// Rationale is the human-readable explanation of the rule
	Rationale string `json:"rationale" yaml:"rationale"`

	// FixTemplate renders the suggested fix; supported placeholders are
	// {{excerpt}}, {{path}}, {{line}} and {{rule}}
	FixTemplate string `json:"fix_template" yaml:"fix_template"`
}

// AppliesToLanguage reports whether the rule applies to the given language
// tag. Rules tagged "any" apply to every language, including files whose
// language could not be inferred.
func (r *RuleDefinition) AppliesToLanguage(language string) bool {
	for _, tag := range r.AppliesTo {
		if tag == LanguageAny || tag == language {
			return true
		}
	}
	return false
}

// ValidCategories returns the set of categories a rule may declare
func ValidCategories() map[Category]bool {
	return map[Category]bool{
		CategoryComments:     true,
		CategoryEnvironment:  true,
		CategoryFunctions:    true,
		CategoryGeneral:      true,
		CategoryLangSpecific: true,
		CategoryNames:        true,
		CategoryTests:        true,
		CategorySecurity:     true,
		CategoryCommits:      true,
		CategoryTooling:      true,
	}
}
