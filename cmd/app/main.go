package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gameserver/internal/config"
	"gameserver/internal/db"
	"gameserver/internal/domain"
	"gameserver/internal/game"
	httpServer "gameserver/internal/http"
	"gameserver/internal/http/handlers"
	"gameserver/internal/http/middleware"
	"gameserver/internal/logger"
	"gameserver/internal/notify"
	"gameserver/internal/repository"
	"gameserver/internal/service"
	"gameserver/internal/ws"
)

// Version устанавливается при сборке
var Version = "dev"

// store - все, что приложению нужно от хранилища (postgres или память)
type store interface {
	service.MatchStore
	service.ProfileStore
	service.GameStore
	service.AuditStore
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// логгер еще не настроен, пишем в дефолтный
		logger.Fatal("load config", "error", err)
	}

	logger.Init(cfg.LogLevel, cfg.JSONLogs())
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st store
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, 30*time.Second)
		if err != nil {
			logger.Fatal("connect database", "error", err)
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate database", "error", err)
		}
		st = repository.NewPostgresStore(pool)
	default:
		log.Warn("using in-memory store, data is lost on restart")
		st = repository.NewMemoryStore()
	}

	// Redis нужен для рассылки обновлений между инстансами и для лимитов.
	// Без него работаем одним процессом.
	var (
		broker  notify.Broker = notify.NewLocalBroker()
		limiter *middleware.RateLimiter
	)
	if cfg.RedisURL != "" {
		rdb, err := notify.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("connect redis", "error", err)
		}
		defer rdb.Close()
		broker = notify.NewRedisBroker(rdb)
		limiter = middleware.NewRateLimiter(rdb, cfg.RateLimitPerMin)
		log.Info("redis enabled", "rate_limit_per_min", cfg.RateLimitPerMin)
	}

	registry := game.Default(cfg.DeckSeed())
	audit := service.NewAuditService(st)
	catalog := service.NewCatalogService(st, registry, cfg.StoreTimeout)
	catalog.SetAdmins(cfg.AdminIDs)
	if err := catalog.Seed(ctx, domain.DefaultGames()); err != nil {
		logger.Fatal("seed games", "error", err)
	}

	matches := service.NewMatchService(st, registry,
		service.WithBroker(broker),
		service.WithAudit(audit),
		service.WithStoreTimeout(cfg.StoreTimeout),
	)
	profiles := service.NewProfileService(st, st, audit, cfg.StoreTimeout)
	auth := service.NewJWTAuth(cfg.JWTSecret, cfg.JWTTTL)

	sweeper := service.NewSweeper(matches, cfg.WaitingTTL, cfg.IdleTTL, cfg.SweepInterval, cfg.RetryAttempts)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("start sweeper", "error", err)
	}

	r := httpServer.NewRouter(httpServer.Deps{
		Handler: &handlers.Handler{
			Matches:  matches,
			Profiles: profiles,
			Catalog:  catalog,
			Audit:    audit,
			Attempts: cfg.RetryAttempts,
		},
		Auth:          auth,
		Hub:           ws.NewHub(matches, broker, cfg.RetryAttempts),
		RateLimiter:   limiter,
		Store:         st,
		AllowedOrigin: cfg.AllowedOrigin,
		Version:       Version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	if err := sweeper.Stop(); err != nil {
		log.Warn("stop sweeper", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
