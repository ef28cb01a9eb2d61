package catalog

import (
	"strconv"
	"strings"

	"github.com/ludo-technologies/revet/domain"
)

// RenderFix substitutes the supported placeholders into a rule's fix
// template. Substitution uses the same pattern load-time validation does,
// so any spacing inside the braces that validates also renders.
func RenderFix(rule *domain.RuleDefinition, excerpt, path string, line int) string {
	values := map[string]string{
		"excerpt": excerpt,
		"path":    path,
		"line":    strconv.Itoa(line),
		"rule":    rule.ID,
	}
	rendered := placeholderPattern.ReplaceAllStringFunc(rule.FixTemplate, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		if value, ok := values[name]; ok {
			return value
		}
		return m
	})
	return strings.TrimSpace(rendered)
}
