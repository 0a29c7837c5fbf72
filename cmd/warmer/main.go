package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviewflow/internal/adapters/catalog"
	"reviewflow/internal/adapters/observability"
	redisad "reviewflow/internal/adapters/redis"
	"reviewflow/internal/app"
	"reviewflow/internal/domain"
	"reviewflow/internal/shared"
)

type target struct {
	kind domain.SubjectKind
	id   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	var targets []target
	for _, id := range cfg.WarmPropertyIDs {
		targets = append(targets, target{domain.KindProperty, id})
	}
	for _, id := range cfg.WarmProviderIDs {
		targets = append(targets, target{domain.KindService, id})
	}

	log.Info().
		Str("base", cfg.CatalogBase).
		Int("workers", cfg.WarmWorkers).
		Int("subjects", len(targets)).
		Msg("warmer starting")
	if len(targets) == 0 {
		log.Warn().Msg("nothing to warm; set WARM_PROPERTY_IDS or WARM_PROVIDER_IDS")
		return
	}

	client, err := catalog.New(cfg.CatalogBase, cfg.CatalogKey, cfg.CatalogRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	subjects := app.NewCatalogService(client, cache, cfg.CacheTTL)

	workers := cfg.WarmWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, t := range targets {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("warm interrupted")
			break
		}

		wg.Add(1)
		go func(t target) {
			defer wg.Done()
			defer sem.Release(1)

			// drop the stale entry so the fetch goes to the catalog
			if err := subjects.Forget(ctx, t.kind, t.id); err != nil {
				log.Warn().Err(err).Str("kind", string(t.kind)).Str("id", t.id).Msg("cache evict failed")
			}
			sub, err := subjects.FetchSubject(ctx, t.kind, t.id)
			if err != nil {
				failed.Add(1)
				log.Warn().
					Err(err).
					Str("error_type", observability.LabelErr(err)).
					Str("kind", string(t.kind)).
					Str("id", t.id).
					Msg("warm failed")
				return
			}
			log.Info().Str("kind", string(t.kind)).Str("id", t.id).Str("name", sub.Name).Msg("warm ok")
		}(t)
	}

	wg.Wait()
	log.Info().Int("subjects", len(targets)).Int64("failed", failed.Load()).Msg("warm completed")
}
