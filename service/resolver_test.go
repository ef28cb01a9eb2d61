package service

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/ludo-technologies/revet/domain"
	"github.com/ludo-technologies/revet/internal/catalog"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return NewResolver(cat)
}

func rawMatch(ruleID, path string, start, end int, excerpt string) domain.RawMatch {
	return domain.RawMatch{
		RuleID:  ruleID,
		Path:    path,
		Lines:   domain.LineRange{Start: start, End: end},
		Excerpt: excerpt,
	}
}

func TestResolveDeduplicatesIdenticalMatches(t *testing.T) {
	r := testResolver(t)

	findings := r.Resolve([]domain.RawMatch{
		rawMatch("no-eval", "a.js", 3, 3, "eval(x)"),
		rawMatch("no-eval", "a.js", 3, 3, "eval(x)"),
	}, "")

	if len(findings) != 1 {
		t.Fatalf("expected 1 finding after dedup, got %d", len(findings))
	}
	if findings[0].Excerpt != "eval(x)" {
		t.Errorf("unexpected excerpt %q", findings[0].Excerpt)
	}
}

func TestResolveMergesExcerptsInGroup(t *testing.T) {
	r := testResolver(t)

	findings := r.Resolve([]domain.RawMatch{
		rawMatch("no-eval", "a.js", 3, 3, "eval(y)"),
		rawMatch("no-eval", "a.js", 3, 3, "eval(x)"),
	}, "")

	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Excerpt != "eval(x) | eval(y)" {
		t.Errorf("expected merged excerpts in stable order, got %q", findings[0].Excerpt)
	}
}

func TestResolveKeepsDistinctRulesOnSameRange(t *testing.T) {
	r := testResolver(t)

	// two different rules firing on the same line stay separate findings
	findings := r.Resolve([]domain.RawMatch{
		rawMatch("no-eval", "a.js", 3, 3, "eval(req.query.q)"),
		rawMatch("unsanitized-input-flow", "a.js", 3, 3, "eval(req.query.q)"),
	}, "")

	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
}

func TestResolveNormalizesLineRanges(t *testing.T) {
	r := testResolver(t)

	// inverted and equal ranges collapse to the same group
	findings := r.Resolve([]domain.RawMatch{
		rawMatch("no-eval", "a.js", 7, 3, "eval(x)"),
		rawMatch("no-eval", "a.js", 3, 7, "eval(x)"),
	}, "")

	if len(findings) != 1 {
		t.Fatalf("expected normalized ranges to merge, got %d findings", len(findings))
	}
	if findings[0].Lines.Start != 3 || findings[0].Lines.End != 7 {
		t.Errorf("expected normalized range 3-7, got %d-%d", findings[0].Lines.Start, findings[0].Lines.End)
	}
}

func TestResolveOrderingSeverityPathLineRule(t *testing.T) {
	r := testResolver(t)

	matches := []domain.RawMatch{
		rawMatch("single-letter-name", "a.js", 1, 1, "const q = f()"), // style
		rawMatch("loose-equality", "b.js", 2, 2, "a == b"),            // correctness
		rawMatch("no-eval", "z.js", 9, 9, "eval(x)"),                  // security
		rawMatch("loose-equality", "a.js", 5, 5, "a == b"),            // correctness
		rawMatch("no-eval", "a.js", 5, 5, "eval(x)"),                  // security
		rawMatch("hardcoded-credentials", "a.js", 5, 5, `key = "..."`), // security, same position as no-eval
	}

	findings := r.Resolve(matches, "")

	wantOrder := []struct {
		ruleID string
		path   string
		line   int
	}{
		{"hardcoded-credentials", "a.js", 5},
		{"no-eval", "a.js", 5},
		{"no-eval", "z.js", 9},
		{"loose-equality", "a.js", 5},
		{"loose-equality", "b.js", 2},
		{"single-letter-name", "a.js", 1},
	}

	if len(findings) != len(wantOrder) {
		t.Fatalf("expected %d findings, got %d", len(wantOrder), len(findings))
	}
	for i, want := range wantOrder {
		got := findings[i]
		if got.RuleID != want.ruleID || got.Path != want.path || got.Lines.Start != want.line {
			t.Errorf("position %d: got (%s, %s, %d), want (%s, %s, %d)",
				i, got.RuleID, got.Path, got.Lines.Start, want.ruleID, want.path, want.line)
		}
	}
}

func TestResolveDeterministicUnderShuffle(t *testing.T) {
	r := testResolver(t)

	matches := []domain.RawMatch{
		rawMatch("no-eval", "a.js", 1, 1, "eval(a)"),
		rawMatch("no-eval", "b.js", 2, 2, "eval(b)"),
		rawMatch("loose-equality", "a.js", 3, 3, "x == y"),
		rawMatch("debug-print", "c.js", 4, 4, "console.log(1)"),
		rawMatch("env-direct-access", "a.js", 5, 5, "process.env.X"),
	}

	baseline := r.Resolve(matches, "")

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]domain.RawMatch, len(matches))
		copy(shuffled, matches)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got := r.Resolve(shuffled, "")
		if !reflect.DeepEqual(baseline, got) {
			t.Fatalf("trial %d: resolve output depends on input order", trial)
		}
	}
}

func TestResolveMinSeverityCut(t *testing.T) {
	r := testResolver(t)

	matches := []domain.RawMatch{
		rawMatch("no-eval", "a.js", 1, 1, "eval(a)"),              // security
		rawMatch("loose-equality", "a.js", 2, 2, "a == b"),        // correctness
		rawMatch("single-letter-name", "a.js", 3, 3, "let q = 1"), // style
	}

	all := r.Resolve(matches, domain.SeverityStyle)
	if len(all) != 3 {
		t.Errorf("style cut should keep everything, got %d", len(all))
	}

	correctness := r.Resolve(matches, domain.SeverityCorrectness)
	if len(correctness) != 2 {
		t.Errorf("correctness cut should keep 2, got %d", len(correctness))
	}
	for _, f := range correctness {
		if f.Severity == domain.SeverityStyle {
			t.Errorf("style finding survived the correctness cut: %s", f.RuleID)
		}
	}

	security := r.Resolve(matches, domain.SeveritySecurity)
	if len(security) != 1 || security[0].RuleID != "no-eval" {
		t.Errorf("security cut should keep only no-eval, got %+v", security)
	}
}

func TestResolveBuildsFindingFromCatalog(t *testing.T) {
	r := testResolver(t)

	findings := r.Resolve([]domain.RawMatch{
		rawMatch("no-eval", "src/app.js", 12, 12, "eval(userInput)"),
	}, "")

	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Severity != domain.SeveritySecurity {
		t.Errorf("severity = %s, want security", f.Severity)
	}
	if f.Category != domain.CategorySecurity {
		t.Errorf("category = %s, want security", f.Category)
	}
	if f.Message == "" {
		t.Error("finding message should carry the rule rationale")
	}
	if f.SuggestedFix == "" {
		t.Error("finding should carry a rendered suggested fix")
	}
}

func TestResolveEmptyInput(t *testing.T) {
	r := testResolver(t)
	findings := r.Resolve(nil, "")
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}
}
