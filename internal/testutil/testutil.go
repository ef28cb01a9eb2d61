// Package testutil provides helper functions for testing revet components
package testutil

import (
	"testing"

	"github.com/ludo-technologies/revet/domain"
)

// Unit builds a SourceUnit for tests
func Unit(path, language, content string) *domain.SourceUnit {
	return &domain.SourceUnit{
		Path:     path,
		Language: language,
		Content:  []byte(content),
	}
}

// Changeset builds a changeset from path/content pairs
func Changeset(pairs ...string) []domain.ChangedFile {
	if len(pairs)%2 != 0 {
		panic("testutil.Changeset: odd number of arguments")
	}
	var files []domain.ChangedFile
	for i := 0; i < len(pairs); i += 2 {
		files = append(files, domain.ChangedFile{
			Path:    pairs[i],
			Content: []byte(pairs[i+1]),
		})
	}
	return files
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if condition is false
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse fails the test if condition is true
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}

// FindingsForRule filters findings by rule id
func FindingsForRule(findings []domain.Finding, ruleID string) []domain.Finding {
	var out []domain.Finding
	for _, f := range findings {
		if f.RuleID == ruleID {
			out = append(out, f)
		}
	}
	return out
}
