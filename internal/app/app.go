// Package app wires configuration, adapters and services into a runnable crawler.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/custodia-labs/reposcan/internal/adapters/driven/auth"
	"github.com/custodia-labs/reposcan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reposcan/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/reposcan/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/reposcan/internal/config"
	"github.com/custodia-labs/reposcan/internal/connectors/github"
	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
	"github.com/custodia-labs/reposcan/internal/core/services"
)

// App holds the wired services for one configured source.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Forge   driven.Forge
	Store   driven.Store
	Tokens  driven.TokenProvider
	Crawler *services.CrawlService
	Results *services.ResultService
}

// New opens the configured store and GitHub connector and builds the services.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenProvider(cfg.Forge.Token)
	if log != nil {
		log.Debug("forge credentials", zap.String("auth", tokens.AuthMethod().String()))
	}
	forge := github.New(github.Config{
		BaseURL:           cfg.Forge.BaseURL,
		GraphQLURL:        cfg.Forge.GraphQLURL,
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.Forge.RequestsPerSecond,
	}, tokens)

	a, err := Assemble(cfg, forge, store, tokens, log)
	if err != nil {
		return nil, errors.Join(err, forge.Close(), store.Close())
	}
	return a, nil
}

// Assemble builds the services on top of already constructed adapters.
func Assemble(
	cfg config.Config,
	forge driven.Forge,
	store driven.Store,
	tokens driven.TokenProvider,
	log *zap.Logger,
) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	crawler, err := services.NewCrawlService(forge, forge, forge, store, store, services.CrawlOptions{
		SourceKey:       cfg.Crawl.SourceKey,
		Language:        cfg.Crawl.Language,
		ManifestPath:    cfg.Crawl.ManifestPath,
		LockPath:        cfg.Crawl.LockPath,
		PageSize:        cfg.Crawl.PageSize,
		BatchSize:       cfg.Crawl.BatchSize,
		FlushOrder:      domain.FlushOrder(cfg.Crawl.FlushOrder),
		PersistPolicy:   domain.PersistPolicy(cfg.Crawl.PersistPolicy),
		DedupeCacheSize: cfg.Crawl.DedupeCacheSize,
		Logger:          log.Named("crawl"),
	})
	if err != nil {
		return nil, fmt.Errorf("build crawl service: %w", err)
	}

	return &App{
		Config:  cfg,
		Logger:  log,
		Forge:   forge,
		Store:   store,
		Tokens:  tokens,
		Crawler: crawler,
		Results: services.NewResultService(cfg.Crawl.SourceKey, store, store),
	}, nil
}

// OpenStore opens the store selected by storage.driver.
func OpenStore(ctx context.Context, cfg config.Config) (driven.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite, "":
		store, err := sqlite.NewStore(cfg.Storage.SQLite.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, postgres.Config{
			DSN:         cfg.Storage.Postgres.DSN,
			TablePrefix: cfg.Storage.Postgres.TablePrefix,
			MaxConns:    cfg.Storage.Postgres.MaxConns,
			MinConns:    cfg.Storage.Postgres.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", domain.ErrInvalidInput, cfg.Storage.Driver)
	}
}

// Close releases the forge and the store.
func (a *App) Close() error {
	return errors.Join(a.Forge.Close(), a.Store.Close())
}
