package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/config"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/importer"
	"github.com/llehouerou/crate/internal/library"
	"github.com/llehouerou/crate/internal/playlists"
	"github.com/llehouerou/crate/internal/state"
)

// env wires the components a command needs.
type env struct {
	cfg    *config.Config
	logger hclog.Logger
	out    io.Writer

	store     *catalog.Store
	index     *library.Index
	playlists *playlists.Registry
	journal   *state.Journal // nil when history is disabled or unavailable

	closers []io.Closer
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func openEnv(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, fail(errmsg.OpInitialize, err)
	}
	if v := c.String("catalog"); v != "" {
		cfg.CatalogPath = v
	}
	if v := c.String("history"); v != "" {
		cfg.History.Path = v
	}
	if v := c.String("log-file"); v != "" {
		cfg.Log.File = v
	}

	e := &env{cfg: cfg, out: c.App.Writer}

	if err := e.openLogger(); err != nil {
		return nil, fail(errmsg.OpInitialize, err)
	}

	if cfg.HistoryEnabled() {
		journal, err := state.Open(cfg.History.Path)
		if err != nil {
			// the catalog works without the journal
			e.logger.Warn("play history unavailable", "error", err)
		} else {
			e.journal = journal
			e.closers = append(e.closers, journal)
		}
	}

	catalogPath, err := cfg.ResolveCatalogPath()
	if err != nil {
		e.Close()
		return nil, fail(errmsg.OpCatalogLoad, err)
	}

	opts := []catalog.Option{catalog.WithLogger(e.logger)}
	if e.journal != nil {
		opts = append(opts, catalog.WithPlayRecorder(e.journal))
	}
	e.store = catalog.NewStore(catalog.NewFile(catalogPath), opts...)
	e.index = library.NewIndex(e.store)
	e.playlists = playlists.NewRegistry(e.store.File(), e.store, e.logger)

	e.logger.Debug("environment ready", "catalog", catalogPath, "history", e.journal != nil)
	return e, nil
}

func (e *env) openLogger() error {
	path, err := e.cfg.ResolveLogFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	e.closers = append(e.closers, f)

	e.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "crate",
		Level:  hclog.LevelFromString(e.cfg.LogLevel()),
		Output: f,
	})
	return nil
}

func (e *env) importer() *importer.Importer {
	return importer.New(importer.Config{
		Store:      e.store,
		Workers:    e.cfg.Workers(),
		Logger:     e.logger,
		Invalidate: []importer.Invalidator{e.index, e.playlists},
	})
}

func (e *env) Close() {
	if e.playlists != nil {
		e.playlists.Wait()
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

// withEnv opens the environment around a command action.
func withEnv(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(c, e)
	}
}
