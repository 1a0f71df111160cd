package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexcodex/protosync/config"
	"github.com/lexcodex/protosync/persistence"
	"github.com/lexcodex/protosync/provider"
	"github.com/lexcodex/protosync/syncer"
	"github.com/lexcodex/protosync/workspace"
)

// runtime bundles everything a command needs: loaded config, the provider
// registry, the optional symbol cache, and the logger.
type runtime struct {
	cfg      *config.Config
	registry *provider.Registry
	cache    *persistence.SymbolCache
	log      *slog.Logger
}

func buildRuntime(noCache bool) (*runtime, error) {
	cfg, err := config.Load(flagWorkspace)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg)

	p, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	registry := provider.NewRegistry(0)
	registry.Register("c", p)
	registry.Register("h", p)

	rt := &runtime{cfg: cfg, registry: registry, log: log}
	if cfg.Cache.Enabled && !noCache {
		rt.cache = openCache(cfg, log)
	}
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil {
			rt.log.Warn("closing symbol cache", "error", err)
		}
	}
	if err := rt.registry.Close(); err != nil {
		rt.log.Warn("closing symbol provider", "error", err)
	}
}

func (rt *runtime) engine(headerMode bool) *syncer.Engine {
	return syncer.NewEngine(workspace.NewStore(), rt.registry, rt.cache, headerMode, rt.log)
}

func newProvider(cfg *config.Config) (provider.SymbolProvider, error) {
	if cfg.Server.Command != "" {
		return provider.NewLSPProvider(provider.ServerConfig{
			Command:    cfg.Server.Command,
			Args:       cfg.Server.Args,
			RootDir:    flagWorkspace,
			LanguageID: cfg.Server.LanguageID,
		})
	}
	return provider.NewCTreeSitter(), nil
}

func openCache(cfg *config.Config, log *slog.Logger) *persistence.SymbolCache {
	path := cfg.Cache.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(flagWorkspace, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn("symbol cache disabled", "path", path, "error", err)
		return nil
	}
	cache, err := persistence.NewSymbolCache(path)
	if err != nil {
		log.Warn("symbol cache disabled", "path", path, "error", err)
		return nil
	}
	return cache
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case flagVerbose:
		level = slog.LevelDebug
	case flagQuiet:
		level = slog.LevelWarn
	default:
		switch strings.ToLower(cfg.Logging.Level) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
