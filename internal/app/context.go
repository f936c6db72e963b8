package app

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/discovery"
	"github.com/oggyb/muzz-matching/internal/events"
	"github.com/oggyb/muzz-matching/internal/guardian"
	"github.com/oggyb/muzz-matching/internal/logger"
	"github.com/oggyb/muzz-matching/internal/metrics"
	"github.com/oggyb/muzz-matching/internal/repository"
	"github.com/oggyb/muzz-matching/internal/swipe"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.) and the
// domain services both transports call into.
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger

	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Store     *repository.Store
	Publisher events.Publisher

	Discovery *discovery.Service
	Swipes    *swipe.Service
	Guardian  *guardian.Policy
}

// New creates a new AppContext and wires the domain services.
// Match events go to the Redis stream named by cfg.Events.Stream.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, log *slog.Logger) *AppContext {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := metrics.New(reg)
	store := repository.NewStore(db)
	publisher := events.NewStreamPublisher(rdb.Client, cfg.Events.Stream)

	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     log,
		Registry:   reg,
		Metrics:    m,
		Store:      store,
		Publisher:  publisher,
		Discovery:  discovery.NewService(store, cfg, m, logger.ForComponent(log, "discovery")),
		Swipes:     swipe.NewService(store, rdb, publisher, m, logger.ForComponent(log, "swipe")),
		Guardian:   guardian.NewPolicy(store, cfg.Guardian.AllowMessaging, m, logger.ForComponent(log, "guardian")),
	}
}
