// Package syncer runs one prototype synchronization end to end: pair the
// documents, query symbols, compute the new texts, and stage everything into
// a single transaction.
package syncer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexcodex/protosync/persistence"
	"github.com/lexcodex/protosync/prototype"
	"github.com/lexcodex/protosync/provider"
	"github.com/lexcodex/protosync/workspace"
)

// Engine wires the collaborators for synchronization runs.
type Engine struct {
	store      *workspace.Store
	symbols    *provider.Registry
	cache      *persistence.SymbolCache
	headerMode bool
	log        *slog.Logger
}

// NewEngine builds an engine. cache may be nil to disable caching.
func NewEngine(store *workspace.Store, symbols *provider.Registry, cache *persistence.SymbolCache, headerMode bool, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:      store,
		symbols:    symbols,
		cache:      cache,
		headerMode: headerMode,
		log:        log,
	}
}

// Plan is the computed outcome of one run, not yet applied.
type Plan struct {
	SourcePath    string
	HeaderPath    string
	CreatedHeader bool

	tx *workspace.Transaction
}

// Empty reports whether the run found nothing to change.
func (p *Plan) Empty() bool {
	return p.tx.Empty()
}

// Paths lists the files the plan touches.
func (p *Plan) Paths() []string {
	return p.tx.Paths()
}

// Stage returns the post-apply content of every touched file.
func (p *Plan) Stage() (map[string]string, error) {
	return p.tx.Stage()
}

// Apply commits the plan.
func (p *Plan) Apply() error {
	return p.tx.Apply()
}

// Plan computes the synchronization for one .c or .h file without touching
// the disk. All failures surface here; nothing is partially applied.
func (e *Engine) Plan(ctx context.Context, path string) (*Plan, error) {
	pair, err := e.store.ResolvePair(path, e.headerMode)
	if err != nil {
		return nil, err
	}

	rawSource, err := e.querySymbols(ctx, pair.Source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pair.Source.Path, err)
	}
	sourceSymbols, err := prototype.Extract(pair.Source.Lines(), rawSource, prototype.Options{
		ExcludeEntryPoint: true,
		Origin:            pair.Source.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pair.Source.Path, err)
	}

	tx := e.store.Begin()
	plan := &Plan{SourcePath: pair.Source.Path, tx: tx}

	if pair.Header == nil {
		rewritten := prototype.RewriteSource(sourceSymbols, pair.Source.Text)
		if rewritten != pair.Source.Text {
			tx.ReplaceAll(pair.Source.Path, rewritten)
		}
		e.log.Debug("planned in-source sync",
			"source", pair.Source.Path,
			"symbols", len(sourceSymbols),
			"changed", !plan.Empty())
		return plan, nil
	}

	plan.HeaderPath = pair.Header.Path
	plan.CreatedHeader = pair.Missing

	headerSymbols, err := e.headerSymbols(ctx, pair)
	if err != nil {
		return nil, err
	}
	// Source symbols first in source order, then the header's own
	// prototypes in header order.
	combined := append(append([]prototype.Symbol(nil), sourceSymbols...), headerSymbols...)

	headerText := prototype.SynthesizeHeader(combined, pair.Header.Text, pair.Header.BaseName())
	if pair.Missing {
		tx.CreateFile(pair.Header.Path)
	}
	if headerText != pair.Header.Text {
		tx.ReplaceAll(pair.Header.Path, headerText)
	}

	for _, r := range prototype.DeclarationRanges(sourceSymbols, pair.Source.Path, pair.Source.LineCount()) {
		tx.DeleteLines(pair.Source.Path, r)
	}
	if directive, ok := prototype.EnsureInclude(pair.Source.Text, pair.Header.BaseName()); ok {
		tx.InsertTop(pair.Source.Path, directive)
	}

	e.log.Debug("planned header sync",
		"source", pair.Source.Path,
		"header", pair.Header.Path,
		"created", pair.Missing,
		"symbols", len(combined))
	return plan, nil
}

// Sync plans and applies in one step.
func (e *Engine) Sync(ctx context.Context, path string) (*Plan, error) {
	plan, err := e.Plan(ctx, path)
	if err != nil {
		return nil, err
	}
	if plan.Empty() {
		return plan, nil
	}
	if err := plan.Apply(); err != nil {
		return nil, err
	}
	for _, touched := range plan.Paths() {
		e.symbols.Invalidate(touched)
	}
	return plan, nil
}

func (e *Engine) headerSymbols(ctx context.Context, pair *workspace.Pair) ([]prototype.Symbol, error) {
	if pair.Missing {
		return nil, nil
	}
	raw, err := e.querySymbols(ctx, pair.Header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pair.Header.Path, err)
	}
	if raw == nil {
		// A header the provider has nothing to say about is simply
		// empty of prototypes; only the source requires an answer.
		raw = []prototype.RawSymbol{}
	}
	return prototype.Extract(pair.Header.Lines(), raw, prototype.Options{
		Origin: pair.Header.Path,
	})
}

func (e *Engine) querySymbols(ctx context.Context, doc *workspace.Document) ([]prototype.RawSymbol, error) {
	hash := persistence.ContentHash(doc.Text)
	if e.cache != nil {
		symbols, ok, err := e.cache.Get(doc.Path, hash)
		if err != nil {
			e.log.Warn("symbol cache read failed", "path", doc.Path, "error", err)
		} else if ok {
			return symbols, nil
		}
	}
	symbols, err := e.symbols.DocumentSymbols(ctx, doc.Path)
	if err != nil {
		return nil, err
	}
	if e.cache != nil && symbols != nil {
		if err := e.cache.Put(doc.Path, hash, symbols); err != nil {
			e.log.Warn("symbol cache write failed", "path", doc.Path, "error", err)
		}
	}
	return symbols, nil
}

// Targets expands a file-or-directory argument into the list of files to
// synchronize: the path itself, or every .c file beneath a directory.
func Targets(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var targets []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if name := entry.Name(); path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".c") {
			targets = append(targets, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return targets, nil
}
