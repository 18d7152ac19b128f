package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blocniti/blocniti/api"
	"github.com/blocniti/blocniti/internal/auth"
	"github.com/blocniti/blocniti/internal/cache"
	"github.com/blocniti/blocniti/internal/classify"
	"github.com/blocniti/blocniti/internal/config"
	"github.com/blocniti/blocniti/internal/schema"
	"github.com/blocniti/blocniti/internal/storage"
	"github.com/blocniti/blocniti/pkg/llm"
)

// app owns everything the server opens at startup.
type app struct {
	Deps    api.Deps
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	store, err := storage.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	schemas, err := schema.Default()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load schemas: %w", err)
	}

	provider, err := llm.New(ctx, cfg.Classifier, nil)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("classifier provider: %w", err)
	}
	a.closers = append(a.closers, provider.Close)
	if cfg.Classifier.Provider == llm.ProviderOpenRouter && cfg.Classifier.APIKey == "" {
		logger.Warn("OPENROUTER_API_KEY is not set; every issue will get the fallback classification")
	}

	rt, err := buildCache(ctx, cfg.Cache, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if rt != nil {
		a.closers = append(a.closers, rt.Close)
	}

	a.Deps = api.Deps{
		Store:      store,
		Classifier: classify.New(provider, schemas, cfg.Classifier.Timeout, logger),
		Schemas:    schemas,
		Sessions:   auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionDuration),
		Provider: auth.NewProvider(auth.ProviderConfig{
			LoginURL:    cfg.Auth.ProviderLoginURL,
			Secret:      cfg.Auth.ProviderSecret,
			Issuer:      cfg.Auth.Issuer,
			Audience:    cfg.Auth.Audience,
			CallbackURL: cfg.Auth.CallbackURL,
		}),
	}
	if rt != nil {
		a.Deps.Cache = cache.NewReadThrough(rt, cfg.Cache.TTL, logger)
	}
	return a, nil
}

// buildCache returns the configured response cache, or nil when caching is
// disabled.
func buildCache(ctx context.Context, cfg config.Cache, logger *slog.Logger) (cache.Cache, error) {
	switch cfg.Driver {
	case config.CacheNone:
		return nil, nil
	case config.CacheRedis:
		r := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, fmt.Errorf("connect redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("response cache", slog.String("driver", config.CacheRedis), slog.String("addr", cfg.RedisAddr))
		return r, nil
	default:
		logger.Info("response cache", slog.String("driver", config.CacheMemory))
		return cache.NewMemory(), nil
	}
}
