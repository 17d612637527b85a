// Package app wires the driven adapters into the core services.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/deskref/internal/adapters/driven/config/env"
	"github.com/custodia-labs/deskref/internal/adapters/driven/config/file"
	"github.com/custodia-labs/deskref/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/deskref/internal/adapters/driven/querylog"
	"github.com/custodia-labs/deskref/internal/adapters/driven/similarity"
	"github.com/custodia-labs/deskref/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deskref/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/deskref/internal/connectors/filesystem"
	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/core/services"
	"github.com/custodia-labs/deskref/internal/corpus"
	"github.com/custodia-labs/deskref/internal/logger"
	"github.com/custodia-labs/deskref/internal/normalisers"
	"github.com/custodia-labs/deskref/internal/postprocessors"
)

// Options are the command-line overrides applied after every other layer.
type Options struct {
	// ConfigPath is the TOML file; empty means ~/.deskref/config.toml.
	ConfigPath string

	// EnvFile is loaded into the environment before it is read. Missing is fine.
	EnvFile string

	// DocsPath overrides DOCS_PATH when set.
	DocsPath string

	// Store replaces the TOML file store when set.
	Store driven.ConfigStore
}

// LoadSettings layers defaults, the TOML file, the env file and the
// environment, then validates the result.
func LoadSettings(opts Options) (domain.Settings, driven.ConfigStore, error) {
	settings := domain.DefaultSettings()

	store := opts.Store
	if store == nil {
		fileStore, err := configStore(opts.ConfigPath)
		if err != nil {
			return settings, nil, err
		}
		store = fileStore
	}
	if err := store.Apply(&settings); err != nil {
		return settings, nil, err
	}

	if err := env.LoadDotEnv(opts.EnvFile); err != nil {
		return settings, nil, err
	}
	if err := env.Apply(&settings); err != nil {
		return settings, nil, err
	}

	if opts.DocsPath != "" {
		settings.DocsPath = opts.DocsPath
	}
	if err := settings.Validate(); err != nil {
		return settings, nil, err
	}
	return settings, store, nil
}

func configStore(path string) (*file.ConfigStore, error) {
	if path != "" {
		return file.NewConfigStoreAt(path), nil
	}
	return file.NewConfigStore("")
}

// App holds the wired services for one process.
type App struct {
	Settings   domain.Settings
	Live       *corpus.Live
	Controller *services.RefreshController
	Retriever  *services.Retriever
	Corpus     *services.CorpusService
	QueryLog   driven.QueryLog
	Embedder   driven.EmbeddingService

	closers []io.Closer
}

// New validates settings and wires every adapter. No document is read
// until Start or Refresh is called.
func New(settings domain.Settings) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	a := &App{Settings: settings, Live: corpus.NewLive(nil)}
	if err := a.wire(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	s := a.Settings

	registry, err := normalisers.NewDefaultRegistry(s)
	if err != nil {
		return fmt.Errorf("normalisers: %w", err)
	}
	pipeline, err := postprocessors.NewDefaultPipeline(s)
	if err != nil {
		return fmt.Errorf("chunking pipeline: %w", err)
	}

	var embedder driven.EmbeddingService
	if s.UsesEmbedding() {
		svc, err := openai.NewEmbeddingService(openai.ConfigFromSettings(s))
		if err != nil {
			return err
		}
		a.closers = append(a.closers, svc)
		embedder = svc
		a.Embedder = svc
		logger.Debug("Embedding model: %s", svc.ModelName())
	}
	builder, err := similarity.NewBuilder(s, embedder)
	if err != nil {
		return err
	}

	snapshots, queryLog, err := a.storage()
	if err != nil {
		return err
	}
	a.QueryLog = queryLog

	sources, watchers := a.sources()
	opts := []services.RefreshOption{
		services.WithSnapshotStore(snapshots),
		services.WithWatcher(watchers),
	}
	if embedder != nil {
		opts = append(opts, services.WithEmbedder(embedder))
	}

	a.Controller = services.NewRefreshController(a.Live, sources, registry, pipeline, builder, s, opts...)
	a.Retriever = services.NewRetriever(a.Live, s, queryLog)
	a.Corpus = services.NewCorpusService(a.Live, a.Retriever, queryLog, s)
	return nil
}

// storage opens the snapshot store and the query log for the configured backend.
// QUERY_LOG_PATH, when set, always wins for the query log.
func (a *App) storage() (driven.SnapshotStore, driven.QueryLog, error) {
	var snapshots driven.SnapshotStore
	var queryLog driven.QueryLog

	switch a.Settings.Snapshot {
	case domain.SnapshotSQLite:
		store, err := sqlite.NewStore(a.Settings.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, store)
		logger.Debug("Snapshot store: %s", store.Path())
		snapshots, queryLog = store.SnapshotStore(), store.QueryLog()
	default:
		snapshots, queryLog = memory.NewSnapshotStore(), memory.NewQueryLog(memory.DefaultQueryLogCapacity)
	}

	if a.Settings.QueryLogPath != "" {
		f, err := querylog.NewFile(a.Settings.QueryLogPath)
		if err != nil {
			return nil, nil, err
		}
		queryLog = f
	}
	return snapshots, queryLog, nil
}

func (a *App) sources() ([]driven.DocumentSource, driven.Watcher) {
	var sources []driven.DocumentSource
	var watchers multiWatcher
	for _, root := range []string{a.Settings.DocsPath, a.Settings.ReferencePath} {
		if root == "" {
			continue
		}
		src := filesystem.New(root)
		sources = append(sources, src)
		watchers = append(watchers, src)
	}
	return sources, watchers
}

// Restore makes the last snapshot live, if there is one. A missing or
// unreadable snapshot leaves the empty index in place.
func (a *App) Restore(ctx context.Context) error {
	err := a.Controller.Restore(ctx)
	switch {
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		logger.Warn("Ignoring snapshot: %v", err)
		return nil
	}
}

// Start restores the last snapshot if there is one, then refreshes so the
// live index matches the sources.
func (a *App) Start(ctx context.Context) (*domain.RefreshResult, error) {
	if err := a.Restore(ctx); err != nil {
		return nil, err
	}
	return a.Controller.Refresh(ctx)
}

// Ping checks that the embedding service is reachable. It is a no-op when
// the scorer does not read embeddings.
func (a *App) Ping(ctx context.Context) error {
	if a.Embedder == nil {
		return nil
	}
	if err := a.Embedder.Ping(ctx); err != nil {
		return fmt.Errorf("%w: embedding service unreachable (%w); check EMBEDDING_BASE_URL and EMBEDDING_API_KEY",
			domain.ErrInvalidConfig, err)
	}
	return nil
}

// Close releases every adapter that holds a resource.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
