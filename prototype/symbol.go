// Package prototype implements the pure text-synthesis core of protosync:
// extracting function symbols from provider output, merging prototypes into a
// header's guard region, rewriting a standalone source file, and computing
// the edits that remove redundant forward declarations. Nothing in this
// package touches the filesystem; callers feed it document snapshots and
// apply the results through a workspace transaction.
package prototype

import (
	"errors"
	"strings"
)

// Kind classifies a raw provider symbol. Only functions matter here; every
// other construct a provider reports is ignored by the extractor.
type Kind int

const (
	KindUnknown Kind = iota
	KindFunction
)

// DetailDeclaration is the provider detail string that flags a bodiless
// prototype, as opposed to a full definition.
const DetailDeclaration = "declaration"

// EntryPointName is never emitted into a prototype block.
const EntryPointName = "main"

// RawSymbol is one entry of a symbol provider's response, normalized to the
// fields the extractor needs. StartLine is zero-based; EndLine is exclusive.
type RawSymbol struct {
	Name      string
	Kind      Kind
	Detail    string
	StartLine int
	EndLine   int
}

// Symbol is one extracted function declaration or definition.
type Symbol struct {
	// Name is the bare identifier, with any parameter list the provider
	// appended to its reported name stripped off.
	Name string
	// Declarator is the provider's reported name verbatim, parameter list
	// included. It is what a rendered prototype statement carries.
	Declarator string
	// Prefix is the verbatim text that precedes Name on its (trimmed)
	// source line: return type and qualifiers.
	Prefix string
	// DeclarationOnly is true for a prototype with no body.
	DeclarationOnly bool
	// Origin is the path of the document the symbol was extracted from.
	Origin string
	// StartLine is zero-based; EndLine is exclusive.
	StartLine int
	EndLine   int
}

// Statement renders the symbol as a single prototype statement.
func (s Symbol) Statement() string {
	return s.Prefix + s.Declarator + ";"
}

// ErrSymbolsUnavailable reports that the symbol provider returned no result
// for a document that requires one.
var ErrSymbolsUnavailable = errors.New("symbol provider returned no result")

// Options controls extraction for one document.
type Options struct {
	// ExcludeEntryPoint drops the program entry point. Set for source
	// documents; a header cannot declare main.
	ExcludeEntryPoint bool
	// Origin is recorded on every extracted symbol.
	Origin string
}

// Extract turns a provider response for one document into the normalized
// symbol list the synthesis functions consume, preserving provider order.
// A nil raw slice means the provider had no answer at all, which is fatal:
// the extractor cannot distinguish "no functions" from "no analysis".
func Extract(lines []string, raw []RawSymbol, opts Options) ([]Symbol, error) {
	if raw == nil {
		return nil, ErrSymbolsUnavailable
	}
	symbols := make([]Symbol, 0, len(raw))
	for _, rs := range raw {
		if rs.Kind != KindFunction {
			continue
		}
		declarator := strings.TrimSpace(rs.Name)
		name := declarator
		if idx := strings.Index(name, "("); idx >= 0 {
			name = name[:idx]
		}
		if opts.ExcludeEntryPoint && name == EntryPointName {
			continue
		}
		symbols = append(symbols, Symbol{
			Name:            name,
			Declarator:      declarator,
			Prefix:          prefixOnLine(lines, rs.StartLine, name),
			DeclarationOnly: rs.Detail == DetailDeclaration,
			Origin:          opts.Origin,
			StartLine:       rs.StartLine,
			EndLine:         rs.EndLine,
		})
	}
	return symbols, nil
}

// prefixOnLine returns the trimmed start line's text up to the first
// occurrence of name.
func prefixOnLine(lines []string, line int, name string) string {
	if line < 0 || line >= len(lines) {
		return ""
	}
	trimmed := strings.TrimSpace(lines[line])
	idx := strings.Index(trimmed, name)
	if idx < 0 {
		return ""
	}
	return trimmed[:idx]
}

// SplitLines breaks document text into lines without their terminators.
// A trailing newline does not produce a phantom empty final line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
