package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/catalog"
	"github.com/fretsource/guitar-scout/internal/knowledge"
	"github.com/fretsource/guitar-scout/internal/pipeline"
	"github.com/fretsource/guitar-scout/internal/store"
	"github.com/fretsource/guitar-scout/pkg/anthropic"
	"github.com/fretsource/guitar-scout/pkg/reverb"
)

// pipelineEnv holds the initialized store, listing sources, and the
// pipeline needed by the find/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline

	redis *redis.Client
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.redis != nil {
		_ = pe.redis.Close()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the persistence backend selected by config.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, the Anthropic client, the knowledge
// base, and the listing source chain, then builds the Pipeline. Callers
// should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	kb, err := knowledge.Load()
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load knowledge base")
	}

	primary, err := buildSource(cfg.Catalog.Source, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	var fallback catalog.Source
	if cfg.Catalog.Fallback != "" && cfg.Catalog.Fallback != cfg.Catalog.Source {
		fallback, err = buildSource(cfg.Catalog.Fallback, st)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	env := &pipelineEnv{Store: st}

	// Shared Redis cache layer is optional; the LRU runs either way.
	if cfg.Cache.RedisAddr != "" {
		env.redis = redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		zap.L().Info("redis cache enabled", zap.String("addr", cfg.Cache.RedisAddr))
	}

	cached, err := catalog.NewCachedSource(primary, catalog.CacheOptions{
		LRUSize: cfg.Cache.LRUSize,
		Redis:   env.redis,
		TTL:     time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
	})
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "init search cache")
	}

	env.Pipeline = pipeline.New(pipeline.Options{
		LLM:       anthropic.NewClient(cfg.Anthropic.Key),
		Knowledge: kb,
		Primary:   cached,
		Fallback:  fallback,
		Runs:      st,
		AI:        cfg.Anthropic,
		Pipeline:  cfg.Pipeline,
	})

	zap.L().Info("pipeline initialized",
		zap.String("primary_source", primary.Name()),
		zap.String("store_driver", cfg.Store.Driver),
	)

	return env, nil
}

func buildSource(name string, st store.Store) (catalog.Source, error) {
	switch name {
	case "fixture":
		return catalog.NewFixtureSource(), nil
	case "store":
		return catalog.NewStoreSource(st), nil
	case "reverb":
		return reverb.NewClient(reverb.Options{
			BaseURL:    cfg.Reverb.BaseURL,
			Token:      cfg.Reverb.Token,
			Timeout:    time.Duration(cfg.Reverb.TimeoutSecs) * time.Second,
			RatePerSec: cfg.Reverb.RatePerSec,
		}), nil
	default:
		return nil, eris.Errorf("unknown catalog source %q", name)
	}
}
