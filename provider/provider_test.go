package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/protosync/prototype"
)

type fakeProvider struct {
	calls   int
	symbols []prototype.RawSymbol
	closed  bool
}

func (f *fakeProvider) DocumentSymbols(ctx context.Context, path string) ([]prototype.RawSymbol, error) {
	f.calls++
	return f.symbols, nil
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

func TestRegistryRoutesByExtension(t *testing.T) {
	fake := &fakeProvider{symbols: []prototype.RawSymbol{{Name: "add(int a, int b)", Kind: prototype.KindFunction}}}
	reg := NewRegistry(time.Minute)
	reg.Register("c", fake)
	reg.Register("h", fake)

	symbols, err := reg.DocumentSymbols(context.Background(), "/tmp/add.c")
	require.NoError(t, err)
	assert.Len(t, symbols, 1)

	_, err = reg.DocumentSymbols(context.Background(), "/tmp/notes.txt")
	assert.Error(t, err)
}

func TestRegistryCachesWithinTTL(t *testing.T) {
	fake := &fakeProvider{}
	reg := NewRegistry(time.Minute)
	reg.Register("c", fake)

	_, err := reg.DocumentSymbols(context.Background(), "/tmp/add.c")
	require.NoError(t, err)
	_, err = reg.DocumentSymbols(context.Background(), "/tmp/add.c")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)

	reg.Invalidate("/tmp/add.c")
	_, err = reg.DocumentSymbols(context.Background(), "/tmp/add.c")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestRegistryClosesEachProviderOnce(t *testing.T) {
	fake := &fakeProvider{}
	reg := NewRegistry(time.Minute)
	reg.Register("c", fake)
	reg.Register("h", fake)

	require.NoError(t, reg.Close())
	assert.True(t, fake.closed)
}
