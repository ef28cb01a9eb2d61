package catalog

import "github.com/ludo-technologies/revet/domain"

// SeverityMapVersion identifies the category-to-severity mapping revision.
// The mapping is data, not detector logic, so it can be reviewed and
// changed independently of the detectors.
const SeverityMapVersion = 1

// severityByCategory is the explicit, versioned mapping from rule category
// to severity tier. Security rules are always security; categories about
// boundary, input validation and error handling map to correctness;
// naming, formatting and structure map to style.
var severityByCategory = map[domain.Category]domain.Severity{
	domain.CategorySecurity:     domain.SeveritySecurity,
	domain.CategoryGeneral:      domain.SeverityCorrectness,
	domain.CategoryEnvironment:  domain.SeverityCorrectness,
	domain.CategoryFunctions:    domain.SeverityCorrectness,
	domain.CategoryTests:        domain.SeverityCorrectness,
	domain.CategoryComments:     domain.SeverityStyle,
	domain.CategoryNames:        domain.SeverityStyle,
	domain.CategoryLangSpecific: domain.SeverityStyle,
	domain.CategoryCommits:      domain.SeverityStyle,
	domain.CategoryTooling:      domain.SeverityStyle,
}

// SeverityFor returns the severity tier assigned to a category
func SeverityFor(category domain.Category) (domain.Severity, bool) {
	sev, ok := severityByCategory[category]
	return sev, ok
}
