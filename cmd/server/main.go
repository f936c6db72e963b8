package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/chat"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/events"
	"github.com/oggyb/muzz-matching/internal/httpapi"
	"github.com/oggyb/muzz-matching/internal/logger"
	"github.com/oggyb/muzz-matching/internal/server"
	"github.com/oggyb/muzz-matching/internal/service/match"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return err
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return err
	}
	defer redisCache.Close()

	if cfg.App.ENV == "development" {
		var users int64
		if err := database.Model(&db.User{}).Count(&users).Error; err == nil && users == 0 {
			if err := db.SeedDemoData(database, db.SeedOptions{}); err != nil {
				log.Error("failed to seed", "err", err)
			}
		}
	}

	// Inject logger into app context
	appCtx := app.New(cfg, database, redisCache, log)

	consumer := events.NewConsumer(
		redisCache,
		chat.NewLogTransport(logger.ForComponent(log, "chat")),
		cfg,
		logger.ForComponent(log, "events"),
	)

	registrars := []server.Registrar{
		match.NewRegistrar(appCtx),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.StartGRPCServer(gctx, cfg, log, registrars...)
	})
	g.Go(func() error {
		return server.StartHTTPServer(gctx, cfg, log, httpapi.NewRouter(appCtx))
	})
	g.Go(func() error {
		return consumer.Run(gctx)
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}
