package main

import (
	"context"
	"fmt"

	"fertadvisor/fertilizer"
	"fertadvisor/logging"
	"fertadvisor/store"
)

type App struct {
	cfg      Config
	store    store.Store
	resolver *fertilizer.Resolver
	breaker  *BreakerRemote
}

// newApp wires storage, the crop table and the remote-then-local resolver.
func newApp(ctx context.Context, cfg Config) (*App, error) {
	engine, err := newEngine(cfg.Crops)
	if err != nil {
		return nil, err
	}

	var st store.Store
	switch cfg.Storage.Driver {
	case "memory":
		st = store.NewMemory()
	default:
		st, err = store.NewMongo(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDB)
		if err != nil {
			return nil, err
		}
	}

	app := &App{cfg: cfg, store: st}
	app.resolver, app.breaker = newResolver(engine, cfg.Scoring)
	return app, nil
}

func newEngine(cfg CropsConfig) (*fertilizer.Engine, error) {
	if cfg.TablePath == "" {
		return fertilizer.NewEngine(nil), nil
	}
	table, err := fertilizer.LoadCropTable(cfg.TablePath)
	if err != nil {
		return nil, fmt.Errorf("crop table: %w", err)
	}
	logging.Info().Str("path", cfg.TablePath).Strs("crops", table.Crops()).Msg("loaded crop table")
	return fertilizer.NewEngine(table), nil
}

// newResolver returns a local-only resolver when no scoring URL is set.
func newResolver(engine *fertilizer.Engine, cfg ScoringConfig) (*fertilizer.Resolver, *BreakerRemote) {
	if cfg.URL == "" {
		logging.Debug().Msg("no scoring url, answering every request locally")
		return fertilizer.NewResolver(engine), nil
	}
	breaker := NewBreakerRemote("scoring", NewScoringClient(cfg.URL, cfg.Timeout), cfg.Breaker)
	return fertilizer.NewResolver(engine, fertilizer.WithRemote(breaker, cfg.Timeout)), breaker
}

func (a *App) close(ctx context.Context) { _ = a.store.Close(ctx) }
