package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"reviewflow/internal/adapters/catalog"
	server "reviewflow/internal/adapters/http_server"
	"reviewflow/internal/adapters/observability"
	redisad "reviewflow/internal/adapters/redis"
	"reviewflow/internal/app"
	"reviewflow/internal/shared"
	mysqlrepo "reviewflow/internal/storage/mysql"
)

const sweepEvery = time.Minute

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		// the API still works uncached-slow; reads fall through on cache errors
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}

	client, err := catalog.New(cfg.CatalogBase, cfg.CatalogKey, cfg.CatalogRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog client")
	}

	// deps
	repo := mysqlrepo.New(db)
	subjects := app.NewCatalogService(client, cache, cfg.CacheTTL)
	sessions := app.NewSessions(
		app.NewSubjectResolver(subjects),
		app.NewSubmissionService(repo, cache),
		app.SessionOptions{
			TTL:                 cfg.SessionTTL,
			RequireAspectRating: cfg.RequireAspectRating,
			Strict:              cfg.Strict,
		},
	)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New(15 * time.Second)
	srv.MountHandlers(&server.Handlers{Q: q, S: sessions})
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		t := time.NewTicker(sweepEvery)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				sessions.Sweep()
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("bye")
}
