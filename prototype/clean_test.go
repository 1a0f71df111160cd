package prototype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeclarationRanges(t *testing.T) {
	symbols := []Symbol{
		{Name: "helper", DeclarationOnly: true, Origin: "add.c", StartLine: 2, EndLine: 3},
		{Name: "add", Origin: "add.c", StartLine: 4, EndLine: 7},
		{Name: "other", DeclarationOnly: true, Origin: "add.h", StartLine: 3, EndLine: 4},
	}

	ranges := DeclarationRanges(symbols, "add.c", 20)

	// Only the declaration physically written in the source document
	// qualifies; definitions and header prototypes stay untouched.
	assert.Equal(t, []LineRange{{Start: 2, End: 3}}, ranges)
}

func TestDeclarationRangesClampToDocument(t *testing.T) {
	symbols := []Symbol{
		{Name: "tail", DeclarationOnly: true, Origin: "add.c", StartLine: 9, EndLine: 11},
	}

	ranges := DeclarationRanges(symbols, "add.c", 10)
	assert.Equal(t, []LineRange{{Start: 9, End: 10}}, ranges)
}

func TestDeclarationRangesDropDegenerate(t *testing.T) {
	symbols := []Symbol{
		{Name: "past", DeclarationOnly: true, Origin: "add.c", StartLine: 12, EndLine: 13},
	}

	assert.Empty(t, DeclarationRanges(symbols, "add.c", 10))
}
