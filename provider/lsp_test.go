package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/protosync/prototype"
)

func TestKindOfMapsFunctionsOnly(t *testing.T) {
	assert.Equal(t, prototype.KindFunction, kindOf(protocol.SymbolKindFunction))
	assert.Equal(t, prototype.KindUnknown, kindOf(protocol.SymbolKindStruct))
	assert.Equal(t, prototype.KindUnknown, kindOf(protocol.SymbolKindVariable))
}

func TestCollectDocumentSymbolsFlattensChildren(t *testing.T) {
	input := []protocol.DocumentSymbol{
		{
			Name: "add(int a, int b)",
			Kind: protocol.SymbolKindFunction,
			Range: protocol.Range{
				Start: protocol.Position{Line: 2},
				End:   protocol.Position{Line: 4},
			},
			Children: []protocol.DocumentSymbol{
				{
					Name: "a",
					Kind: protocol.SymbolKindVariable,
					Range: protocol.Range{
						Start: protocol.Position{Line: 2},
						End:   protocol.Position{Line: 2},
					},
				},
			},
		},
	}

	var out []prototype.RawSymbol
	collectDocumentSymbols(&out, input)

	assert.Len(t, out, 2)
	assert.Equal(t, "add(int a, int b)", out[0].Name)
	assert.Equal(t, prototype.KindFunction, out[0].Kind)
	assert.Equal(t, 2, out[0].StartLine)
	assert.Equal(t, 5, out[0].EndLine)
	assert.Equal(t, prototype.KindUnknown, out[1].Kind)
}

func TestPathToURI(t *testing.T) {
	assert.Equal(t, "file:///src/add.c", pathToURI("/src/add.c"))
}
