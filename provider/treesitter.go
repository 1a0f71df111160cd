package provider

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/lexcodex/protosync/prototype"
)

// CTreeSitter extracts function symbols from C files with a tree-sitter
// parse. It is the fallback when no language server is configured, and it
// keeps tests hermetic: no external process, same RawSymbol shape.
type CTreeSitter struct {
	language *sitter.Language
}

// NewCTreeSitter creates the tree-sitter backed provider.
func NewCTreeSitter() *CTreeSitter {
	return &CTreeSitter{language: sitter.NewLanguage(c.Language())}
}

// DocumentSymbols parses the file and reports each function definition and
// each bodiless prototype. The reported name carries the parameter list,
// matching what a language server reports for C functions.
func (p *CTreeSitter) DocumentSymbols(ctx context.Context, path string) ([]prototype.RawSymbol, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", path)
	}
	defer tree.Close()

	// Non-nil even when empty: a successful parse of a file with no
	// functions is an answer, not a missing one.
	symbols := []prototype.RawSymbol{}
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "function_definition":
			if decl := functionDeclarator(n.ChildByFieldName("declarator")); decl != nil {
				symbols = append(symbols, rawFromNode(n, decl, source, ""))
			}
			// Bodies hold no further function symbols in C.
			return false
		case "declaration":
			if decl := functionDeclarator(n.ChildByFieldName("declarator")); decl != nil {
				symbols = append(symbols, rawFromNode(n, decl, source, prototype.DetailDeclaration))
			}
			return false
		}
		return true
	})
	return symbols, nil
}

// Close implements SymbolProvider; there is no process to stop.
func (p *CTreeSitter) Close() error { return nil }

func rawFromNode(node, declarator *sitter.Node, source []byte, detail string) prototype.RawSymbol {
	return prototype.RawSymbol{
		Name:      nodeText(declarator, source),
		Kind:      prototype.KindFunction,
		Detail:    detail,
		StartLine: int(node.StartPosition().Row),
		EndLine:   int(node.EndPosition().Row) + 1,
	}
}

// functionDeclarator descends through pointer declarators to a
// function_declarator whose name is a plain identifier. Function-pointer
// variables parenthesize their name and are rejected here.
func functionDeclarator(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "function_declarator":
			if name := node.ChildByFieldName("declarator"); name != nil && name.Kind() == "identifier" {
				return node
			}
			return nil
		case "pointer_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return nil
		}
	}
	return nil
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree visits nodes depth-first; the visitor returns false to skip a
// node's children.
func walkTree(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		walkTree(node.Child(i), visit)
	}
}
