package detector

import (
	"context"
	"regexp"

	"github.com/ludo-technologies/revet/domain"
)

// taintFlowDetector implements the unsanitized-input-flow rule with a
// line-level approximation of data flow: collect variables assigned from
// input sources, propagate taint through simple assignments, then flag
// sink lines that use a tainted value without a sanitizer on the path.
// Best-effort by design; it must never block the run.
type taintFlowDetector struct{}

func (d *taintFlowDetector) RuleID() string            { return "unsanitized-input-flow" }
func (d *taintFlowDetector) Kind() domain.DetectorKind { return domain.DetectorKindSemantic }

var (
	sourceExprRe = regexp.MustCompile(`\breq\.(?:query|body|params)\b|\bprocess\.argv\b|\bprompt\s*\(|\b(?:window|document)\.location\b`)
	assignRe     = regexp.MustCompile(`(?:const|let|var)?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(.+)$`)
	sinkRe       = regexp.MustCompile(`\beval\s*\(|\.innerHTML\s*=|\bdocument\.write\s*\(|\bexec(?:Sync)?\s*\(|\.query\s*\(|dangerouslySetInnerHTML`)
	sanitizerRe  = regexp.MustCompile(`\b(?:sanitize|escape|validate|encodeURIComponent|parseInt|parseFloat|Number)\s*\(|\bNumber\.is`)
)

// taint propagation passes; two is enough for the straight-line chains
// this approximation targets
const taintPasses = 2

func (d *taintFlowDetector) Detect(ctx context.Context, unit *domain.SourceUnit) ([]domain.RawMatch, error) {
	lines := splitLines(unit.Content)

	tainted := make(map[string]bool)

	for pass := 0; pass < taintPasses; pass++ {
		for _, line := range lines {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			m := assignRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name, rhs := m[1], m[2]
			if sanitizerRe.MatchString(rhs) {
				continue
			}
			if sourceExprRe.MatchString(rhs) || usesTainted(rhs, tainted) {
				tainted[name] = true
			}
		}
	}

	var matches []domain.RawMatch
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		if !sinkRe.MatchString(line) || sanitizerRe.MatchString(line) {
			continue
		}
		if !sourceExprRe.MatchString(line) && !usesTainted(line, tainted) {
			continue
		}
		lineNo := i + 1
		matches = append(matches, domain.RawMatch{
			RuleID:  d.RuleID(),
			Path:    unit.Path,
			Lines:   domain.LineRange{Start: lineNo, End: lineNo},
			Excerpt: excerptOf(line),
		})
	}
	return matches, nil
}

func usesTainted(expr string, tainted map[string]bool) bool {
	for name := range tainted {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(expr) {
			return true
		}
	}
	return false
}

func semanticDetectors() []Detector {
	return []Detector{&taintFlowDetector{}}
}
