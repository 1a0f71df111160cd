// Package provider supplies function symbols for documents. The core never
// parses C itself; it asks a SymbolProvider, which is either a language
// server spoken to over LSP or a tree-sitter parse of the file.
package provider

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lexcodex/protosync/prototype"
)

// SymbolProvider answers structural symbol queries for single documents.
// A nil, nil return means the provider had no analysis for the document.
type SymbolProvider interface {
	DocumentSymbols(ctx context.Context, path string) ([]prototype.RawSymbol, error)
	Close() error
}

// Registry routes symbol queries to a provider by file extension and caches
// responses for a short TTL, so the source and header queries of one run, or
// a rapid watch-mode burst, do not hit the provider twice for the same file.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]SymbolProvider
	cache     map[string]cacheEntry
	ttl       time.Duration
}

type cacheEntry struct {
	symbols    []prototype.RawSymbol
	expiration time.Time
}

// NewRegistry creates a registry with the given cache TTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl == 0 {
		ttl = time.Minute
	}
	return &Registry{
		providers: make(map[string]SymbolProvider),
		cache:     make(map[string]cacheEntry),
		ttl:       ttl,
	}
}

// Register installs a provider for a file extension (without the dot).
func (r *Registry) Register(ext string, p SymbolProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[ext] = p
}

// ForFile returns the provider responsible for the file's extension.
func (r *Registry) ForFile(path string) (SymbolProvider, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[ext]
	if !ok {
		return nil, fmt.Errorf("no symbol provider for extension %q", ext)
	}
	return p, nil
}

// DocumentSymbols queries through the TTL cache.
func (r *Registry) DocumentSymbols(ctx context.Context, path string) ([]prototype.RawSymbol, error) {
	r.mu.RLock()
	entry, ok := r.cache[path]
	r.mu.RUnlock()
	if ok && time.Now().Before(entry.expiration) {
		return entry.symbols, nil
	}

	p, err := r.ForFile(path)
	if err != nil {
		return nil, err
	}
	symbols, err := p.DocumentSymbols(ctx, path)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.cache[path] = cacheEntry{symbols: symbols, expiration: time.Now().Add(r.ttl)}
	r.mu.Unlock()
	return symbols, nil
}

// Invalidate drops the cached response for a path. Watch mode calls this
// when the file changes on disk.
func (r *Registry) Invalidate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, path)
}

// Close shuts down every registered provider, keeping the first error.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	closed := make(map[SymbolProvider]bool)
	for _, p := range r.providers {
		if closed[p] {
			continue
		}
		closed[p] = true
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
