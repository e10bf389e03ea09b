package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/orestack/minereport/internal/extract"
	"github.com/orestack/minereport/internal/pipeline"
	"github.com/orestack/minereport/internal/registry"
	"github.com/orestack/minereport/internal/store"
)

// pipelineEnv holds the initialized store, registry, and pipeline needed by
// the ingest/batch/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Registry *registry.Registry
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, loads the standards registry, and builds
// the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	reg, err := registry.New()
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load standards registry")
	}

	limits := extract.DefaultLimits()
	if cfg.Extract.MaxBytes > 0 {
		limits.MaxBytes = cfg.Extract.MaxBytes
	}
	if cfg.Extract.TimeoutSecs > 0 {
		limits.Timeout = cfg.Extract.Timeout()
	}

	return &pipelineEnv{
		Store:    st,
		Registry: reg,
		Pipeline: pipeline.New(cfg, st, reg, extract.NewService(limits)),
	}, nil
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
		if err != nil {
			return nil, eris.Wrap(err, "open postgres store")
		}
		return st, nil
	case "sqlite", "":
		st, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "open sqlite store")
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
