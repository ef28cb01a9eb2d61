// Package parser wraps tree-sitter for the syntactic detectors. Detectors
// pattern-match the concrete syntax tree directly; no separate AST layer
// is built.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Parser wraps a tree-sitter parser for JavaScript/TypeScript
type Parser struct {
	parser *sitter.Parser
	isTS   bool
}

// NewParser creates a new JavaScript parser
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return &Parser{parser: p}
}

// NewTypeScriptParser creates a new TypeScript parser
func NewTypeScriptParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(tsx.GetLanguage())
	return &Parser{parser: p, isTS: true}
}

// IsTypeScript returns true if this parser is configured for TypeScript
func (p *Parser) IsTypeScript() bool {
	return p.isTS
}

// Close frees the underlying parser resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Tree is a parsed source file. Callers must Close it when done.
type Tree struct {
	tree   *sitter.Tree
	Source []byte
}

// Root returns the root node of the parse tree
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Close frees the parse tree
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Walk visits named nodes in preorder. Returning false skips the node's
// children.
func (t *Tree) Walk(visit func(n *sitter.Node) bool) {
	walk(t.Root(), visit)
}

func walk(n *sitter.Node, visit func(n *sitter.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), visit)
	}
}

// Parse parses source code into a tree
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse source: %v", err)
	}
	return &Tree{tree: tree, Source: source}, nil
}

// ParseLanguage parses source in the named language. Only JavaScript and
// TypeScript have grammars wired; other languages report an error so the
// caller can record a detector failure instead of guessing.
func ParseLanguage(ctx context.Context, language string, source []byte) (*Tree, error) {
	var p *Parser
	switch language {
	case "typescript":
		p = NewTypeScriptParser()
	case "javascript":
		p = NewParser()
	default:
		return nil, fmt.Errorf("no grammar for language %q", language)
	}
	defer p.Close()

	return p.Parse(ctx, source)
}
