package detector

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ludo-technologies/revet/domain"
	"github.com/ludo-technologies/revet/internal/parser"
)

// treeScanDetector is the shared implementation for syntactic rules: parse
// the unit into a CST and collect matches from a node visitor.
type treeScanDetector struct {
	ruleID string
	match  func(n *sitter.Node, source []byte) bool
}

func (d *treeScanDetector) RuleID() string            { return d.ruleID }
func (d *treeScanDetector) Kind() domain.DetectorKind { return domain.DetectorKindSyntactic }

func (d *treeScanDetector) Detect(ctx context.Context, unit *domain.SourceUnit) ([]domain.RawMatch, error) {
	tree, err := parser.ParseLanguage(ctx, unit.Language, unit.Content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var matches []domain.RawMatch
	tree.Walk(func(n *sitter.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		if d.match(n, tree.Source) {
			matches = append(matches, domain.RawMatch{
				RuleID:  d.ruleID,
				Path:    unit.Path,
				Lines:   nodeLines(n),
				Excerpt: nodeExcerpt(n, tree.Source),
			})
		}
		return true
	})
	if err := ctx.Err(); err != nil {
		return matches, err
	}
	return matches, nil
}

func syntacticDetectors() []Detector {
	return []Detector{
		&treeScanDetector{ruleID: "no-var", match: matchVarDeclaration},
		&treeScanDetector{ruleID: "empty-catch", match: matchEmptyCatch},
		&treeScanDetector{ruleID: "constants-over-inheritance", match: matchConstantsClass},
	}
}

// matchVarDeclaration matches `var` declarations; let/const parse as
// lexical_declaration and never hit this.
func matchVarDeclaration(n *sitter.Node, _ []byte) bool {
	return n.Type() == "variable_declaration"
}

// matchEmptyCatch matches catch clauses whose body holds no statements
func matchEmptyCatch(n *sitter.Node, _ []byte) bool {
	if n.Type() != "catch_clause" {
		return false
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "statement_block" {
			return child.NamedChildCount() == 0
		}
	}
	return false
}

// matchConstantsClass matches classes whose body consists solely of field
// definitions, i.e. a class used as a constant holder
func matchConstantsClass(n *sitter.Node, _ []byte) bool {
	if n.Type() != "class_declaration" {
		return false
	}
	var body *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "class_body" {
			body = child
			break
		}
	}
	if body == nil || body.NamedChildCount() == 0 {
		return false
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		switch body.NamedChild(i).Type() {
		case "field_definition", "public_field_definition":
		default:
			return false
		}
	}
	return true
}

func nodeLines(n *sitter.Node) domain.LineRange {
	return domain.LineRange{
		Start: int(n.StartPoint().Row) + 1,
		End:   int(n.EndPoint().Row) + 1,
	}
}

func nodeExcerpt(n *sitter.Node, source []byte) string {
	content := n.Content(source)
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[:idx]
	}
	return excerptOf(content)
}
