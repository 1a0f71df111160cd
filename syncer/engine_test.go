package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/protosync/persistence"
	"github.com/lexcodex/protosync/prototype"
	"github.com/lexcodex/protosync/provider"
	"github.com/lexcodex/protosync/workspace"
)

const addSource = `#include <stdio.h>

static int add(int a, int b) {
    return a + b;
}

int main(void) {
    printf("%d\n", add(1, 2));
    return 0;
}
`

const addHeaderWant = `#ifndef ADD_H
#define ADD_H

static int add(int a, int b);

#endif // ADD_H
`

// countingProvider wraps another provider and records query volume.
type countingProvider struct {
	inner provider.SymbolProvider
	calls int
}

func (p *countingProvider) DocumentSymbols(ctx context.Context, path string) ([]prototype.RawSymbol, error) {
	p.calls++
	return p.inner.DocumentSymbols(ctx, path)
}

func (p *countingProvider) Close() error { return p.inner.Close() }

// silentProvider mimics a language server with no analysis for the file.
type silentProvider struct{}

func (silentProvider) DocumentSymbols(context.Context, string) ([]prototype.RawSymbol, error) {
	return nil, nil
}

func (silentProvider) Close() error { return nil }

func newTestEngine(t *testing.T, headerMode bool, cache *persistence.SymbolCache, p provider.SymbolProvider) *Engine {
	t.Helper()
	if p == nil {
		p = provider.NewCTreeSitter()
	}
	reg := provider.NewRegistry(time.Minute)
	reg.Register("c", p)
	reg.Register("h", p)
	t.Cleanup(func() { _ = reg.Close() })
	return NewEngine(workspace.NewStore(), reg, cache, headerMode, nil)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSyncCreatesMissingHeader(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "add.c")
	writeFile(t, src, addSource)

	e := newTestEngine(t, true, nil, nil)
	plan, err := e.Sync(context.Background(), src)
	require.NoError(t, err)

	assert.True(t, plan.CreatedHeader)
	assert.Equal(t, addHeaderWant, readFile(t, filepath.Join(dir, "add.h")))
	assert.Equal(t, "#include \"add.h\"\n"+addSource, readFile(t, src))
}

func TestSyncIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "add.c")
	writeFile(t, src, addSource)

	e := newTestEngine(t, true, nil, nil)
	_, err := e.Sync(context.Background(), src)
	require.NoError(t, err)
	srcAfter := readFile(t, src)
	hdrAfter := readFile(t, filepath.Join(dir, "add.h"))

	plan, err := e.Sync(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.Equal(t, srcAfter, readFile(t, src))
	assert.Equal(t, hdrAfter, readFile(t, filepath.Join(dir, "add.h")))
}

func TestSyncRemovesSourceDeclarations(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "util.c")
	hdr := filepath.Join(dir, "util.h")
	writeFile(t, src, `#include "util.h"

void helper(void);

void helper(void) {
}
`)
	writeFile(t, hdr, `#ifndef UTIL_H
#define UTIL_H

void helper(void);

#endif // UTIL_H
`)

	e := newTestEngine(t, true, nil, nil)
	plan, err := e.Sync(context.Background(), src)
	require.NoError(t, err)

	assert.False(t, plan.CreatedHeader)
	assert.NotContains(t, readFile(t, src), "void helper(void);")
	assert.Contains(t, readFile(t, hdr), "void helper(void);")
}

func TestSyncKeepsExternalPrototypes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "util.c")
	hdr := filepath.Join(dir, "util.h")
	writeFile(t, src, `#include "util.h"

void helper(void) {
}
`)
	// extra is defined in another translation unit; only the header
	// knows about it.
	writeFile(t, hdr, `#ifndef UTIL_H
#define UTIL_H

void helper(void);
void extra(void);

#endif // UTIL_H
`)

	e := newTestEngine(t, true, nil, nil)
	_, err := e.Sync(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, `#ifndef UTIL_H
#define UTIL_H

void helper(void);
void extra(void);

#endif // UTIL_H
`, readFile(t, hdr))

	plan, err := e.Sync(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

func TestSyncNoHeaderMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "standalone.c")
	writeFile(t, src, addSource)

	e := newTestEngine(t, false, nil, nil)
	_, err := e.Sync(context.Background(), src)
	require.NoError(t, err)

	want := `#include <stdio.h>

static int add(int a, int b);

static int add(int a, int b) {
    return a + b;
}

int main(void) {
    printf("%d\n", add(1, 2));
    return 0;
}
`
	assert.Equal(t, want, readFile(t, src))
	assert.NoFileExists(t, filepath.Join(dir, "standalone.h"))

	plan, err := e.Sync(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

func TestSyncSymbolsUnavailable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "add.c")
	writeFile(t, src, addSource)

	e := newTestEngine(t, true, nil, silentProvider{})
	_, err := e.Sync(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, prototype.ErrSymbolsUnavailable)
	assert.NoFileExists(t, filepath.Join(dir, "add.h"))
}

func TestPlanStagesWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "add.c")
	writeFile(t, src, addSource)

	e := newTestEngine(t, true, nil, nil)
	plan, err := e.Plan(context.Background(), src)
	require.NoError(t, err)

	staged, err := plan.Stage()
	require.NoError(t, err)
	assert.Equal(t, addHeaderWant, staged[filepath.Join(dir, "add.h")])
	assert.Equal(t, "#include \"add.h\"\n"+addSource, staged[src])

	assert.NoFileExists(t, filepath.Join(dir, "add.h"))
	assert.Equal(t, addSource, readFile(t, src))
}

func TestSyncServesSecondRunFromSymbolCache(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "util.c")
	hdr := filepath.Join(dir, "util.h")
	// Already synchronized, so runs change nothing and content hashes
	// stay stable across them.
	writeFile(t, src, `#include "util.h"

void helper(void) {
}
`)
	writeFile(t, hdr, `#ifndef UTIL_H
#define UTIL_H

void helper(void);

#endif // UTIL_H
`)

	cache, err := persistence.NewSymbolCache(filepath.Join(dir, "symbols.db"))
	require.NoError(t, err)
	defer cache.Close()

	counting := &countingProvider{inner: provider.NewCTreeSitter()}

	first := newTestEngine(t, true, cache, counting)
	plan, err := first.Sync(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.Equal(t, 2, counting.calls)

	// A fresh registry has no in-memory cache; only the SQLite cache can
	// keep the provider idle.
	second := newTestEngine(t, true, cache, counting)
	plan, err = second.Sync(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.Equal(t, 2, counting.calls)
}

func TestTargetsSingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "add.c")
	writeFile(t, src, addSource)

	targets, err := Targets(src)
	require.NoError(t, err)
	assert.Equal(t, []string{src}, targets)
}

func TestTargetsWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	writeFile(t, filepath.Join(dir, "a.c"), "")
	writeFile(t, filepath.Join(dir, "a.h"), "")
	writeFile(t, filepath.Join(dir, "sub", "b.c"), "")
	writeFile(t, filepath.Join(dir, ".git", "c.c"), "")

	targets, err := Targets(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.c"),
		filepath.Join(dir, "sub", "b.c"),
	}, targets)
}
