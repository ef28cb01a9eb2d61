package detector

import (
	"context"
	"regexp"
	"strings"

	"github.com/ludo-technologies/revet/domain"
)

// lineScanDetector is the shared implementation for heuristic-text rules:
// a compiled pattern applied line by line, with an optional extra filter to
// cut false positives.
type lineScanDetector struct {
	ruleID  string
	pattern *regexp.Regexp

	// accept, when set, must also approve the line for a match to count
	accept func(line string) bool
}

func (d *lineScanDetector) RuleID() string            { return d.ruleID }
func (d *lineScanDetector) Kind() domain.DetectorKind { return domain.DetectorKindHeuristicText }

func (d *lineScanDetector) Detect(ctx context.Context, unit *domain.SourceUnit) ([]domain.RawMatch, error) {
	var matches []domain.RawMatch
	for i, line := range splitLines(unit.Content) {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		if !d.pattern.MatchString(line) {
			continue
		}
		if d.accept != nil && !d.accept(line) {
			continue
		}
		lineNo := i + 1
		matches = append(matches, domain.RawMatch{
			RuleID:  d.ruleID,
			Path:    unit.Path,
			Lines:   domain.LineRange{Start: lineNo, End: lineNo},
			Excerpt: excerptOf(line),
		})
	}
	return matches, nil
}

var (
	evalPattern        = regexp.MustCompile(`\beval\s*\(|\bnew\s+Function\s*\(`)
	awsKeyPattern      = regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)
	credentialPattern  = regexp.MustCompile(`(?i)\b(api[_-]?key|apikey|secret|token|passw(?:or)?d)\b\s*[:=]\s*["'][A-Za-z0-9+/_\-]{16,}["']`)
	insecureURLPattern = regexp.MustCompile(`["']http://[^"'\s]+["']?`)
	sqlConcatPattern   = regexp.MustCompile(`(?i)["'](?:select|insert|update|delete)\b[^"']*["']\s*\+`)
	mathRandomPattern  = regexp.MustCompile(`\bMath\.random\s*\(`)
	securityWordRe     = regexp.MustCompile(`(?i)\b(token|secret|session|key|nonce|password|otp)\b`)
	looseEqPattern     = regexp.MustCompile(`(^|[^=!<>])(==|!=)([^=]|$)`)
	processEnvPattern  = regexp.MustCompile(`\bprocess\.env\.`)
	focusedTestPattern = regexp.MustCompile(`\b(?:fdescribe|fit)\s*\(|\.only\s*\(`)
	todoPattern        = regexp.MustCompile(`(?i)//.*\b(todo|fixme)\b|(?i)#.*\b(todo|fixme)\b`)
	todoReferenceRe    = regexp.MustCompile(`#\d+|\b[A-Z]{2,}-\d+\b|https?://`)
	shortNamePattern   = regexp.MustCompile(`\b(?:const|let|var)\s+([a-hl-z])\s*=`)
	consolePattern     = regexp.MustCompile(`\bconsole\.(?:log|debug|trace)\s*\(`)

	// safe plain-HTTP hosts that are not transport findings
	localHTTPRe = regexp.MustCompile(`http://(?:localhost|127\.0\.0\.1|0\.0\.0\.0|\[::1\])|http://(?:www\.)?w3\.org|http://schemas\.`)
)

func heuristicDetectors() []Detector {
	return []Detector{
		&lineScanDetector{ruleID: "no-eval", pattern: evalPattern},
		&credentialDetector{},
		&lineScanDetector{
			ruleID:  "insecure-transport",
			pattern: insecureURLPattern,
			accept:  func(line string) bool { return !localHTTPRe.MatchString(line) },
		},
		&lineScanDetector{ruleID: "sql-string-concat", pattern: sqlConcatPattern},
		&lineScanDetector{
			ruleID:  "insecure-random",
			pattern: mathRandomPattern,
			accept:  func(line string) bool { return securityWordRe.MatchString(line) },
		},
		&lineScanDetector{
			ruleID:  "loose-equality",
			pattern: looseEqPattern,
			accept:  func(line string) bool { return !strings.Contains(line, "===") && !strings.Contains(line, "!==") },
		},
		&lineScanDetector{ruleID: "env-direct-access", pattern: processEnvPattern},
		&lineScanDetector{ruleID: "focused-test", pattern: focusedTestPattern},
		&commentedCodeDetector{},
		&lineScanDetector{
			ruleID:  "todo-without-reference",
			pattern: todoPattern,
			accept:  func(line string) bool { return !todoReferenceRe.MatchString(line) },
		},
		&lineScanDetector{
			ruleID:  "single-letter-name",
			pattern: shortNamePattern,
			accept:  func(line string) bool { return !strings.HasPrefix(strings.TrimSpace(line), "for") },
		},
		&lineScanDetector{ruleID: "debug-print", pattern: consolePattern},
	}
}

// credentialDetector combines key-shaped literal detection with
// assignment-shaped credential detection
type credentialDetector struct{}

func (d *credentialDetector) RuleID() string            { return "hardcoded-credentials" }
func (d *credentialDetector) Kind() domain.DetectorKind { return domain.DetectorKindHeuristicText }

func (d *credentialDetector) Detect(ctx context.Context, unit *domain.SourceUnit) ([]domain.RawMatch, error) {
	var matches []domain.RawMatch
	for i, line := range splitLines(unit.Content) {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		if !awsKeyPattern.MatchString(line) && !credentialPattern.MatchString(line) {
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

// commentedCodeDetector flags runs of two or more comment lines whose
// content looks like code rather than prose
type commentedCodeDetector struct{}

func (d *commentedCodeDetector) RuleID() string            { return "commented-out-code" }
func (d *commentedCodeDetector) Kind() domain.DetectorKind { return domain.DetectorKindHeuristicText }

var commentLineRe = regexp.MustCompile(`^\s*(//|#)\s?(.*)$`)
var codeLikeRe = regexp.MustCompile(`[;{}]\s*$|\)\s*;?\s*$|^\s*(if|for|while|return|function|const|let|var|def)\b.*[({:=]`)

func (d *commentedCodeDetector) Detect(ctx context.Context, unit *domain.SourceUnit) ([]domain.RawMatch, error) {
	lines := splitLines(unit.Content)

	var matches []domain.RawMatch
	blockStart := -1
	codeLike := 0
	var first string

	flush := func(end int) {
		// at least two comment lines, majority of them code-shaped
		if blockStart >= 0 && end-blockStart >= 2 && codeLike*2 >= end-blockStart {
			matches = append(matches, domain.RawMatch{
				RuleID:  d.RuleID(),
				Path:    unit.Path,
				Lines:   domain.LineRange{Start: blockStart + 1, End: end},
				Excerpt: excerptOf(first),
			})
		}
		blockStart = -1
		codeLike = 0
		first = ""
	}

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		m := commentLineRe.FindStringSubmatch(line)
		if m == nil {
			flush(i)
			continue
		}
		body := m[2]
		if blockStart < 0 {
			blockStart = i
			first = line
		}
		if codeLikeRe.MatchString(body) {
			codeLike++
		}
	}
	flush(len(lines))

	return matches, nil
}
