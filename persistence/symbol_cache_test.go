package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/protosync/prototype"
)

func openCache(t *testing.T) *SymbolCache {
	t.Helper()
	cache, err := NewSymbolCache(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestSymbolCacheRoundTrip(t *testing.T) {
	cache := openCache(t)
	hash := ContentHash("int add(int a, int b) { return a + b; }\n")
	symbols := []prototype.RawSymbol{
		{Name: "add(int a, int b)", Kind: prototype.KindFunction, StartLine: 0, EndLine: 1},
	}

	require.NoError(t, cache.Put("/src/add.c", hash, symbols))

	got, ok, err := cache.Get("/src/add.c", hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, symbols, got)
}

func TestSymbolCacheStaleHashMisses(t *testing.T) {
	cache := openCache(t)
	require.NoError(t, cache.Put("/src/add.c", ContentHash("old"), nil))

	_, ok, err := cache.Get("/src/add.c", ContentHash("new"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSymbolCacheMiss(t *testing.T) {
	cache := openCache(t)
	_, ok, err := cache.Get("/src/unseen.c", ContentHash(""))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSymbolCacheOverwrite(t *testing.T) {
	cache := openCache(t)
	first := []prototype.RawSymbol{{Name: "one()", Kind: prototype.KindFunction}}
	second := []prototype.RawSymbol{{Name: "two()", Kind: prototype.KindFunction}}

	require.NoError(t, cache.Put("/src/f.c", ContentHash("v1"), first))
	require.NoError(t, cache.Put("/src/f.c", ContentHash("v2"), second))

	got, ok, err := cache.Get("/src/f.c", ContentHash("v2"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, got)
}
