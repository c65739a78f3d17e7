package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/krishnasingh5/redis-learning/internal/album"
	"github.com/krishnasingh5/redis-learning/internal/cache"
	"github.com/krishnasingh5/redis-learning/internal/config"
	cronrunner "github.com/krishnasingh5/redis-learning/internal/cron"
	"github.com/krishnasingh5/redis-learning/internal/handler"
	"github.com/krishnasingh5/redis-learning/internal/logger"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = ".env"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	store := openStore(cfg, logger)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("cache store close failed", zap.Error(err))
		}
	}()

	if cfg.AlbumURL == "" {
		logger.Warn("ALBUM_URL is empty; photo routes will fail until it is set")
	}
	albumClient := &album.Client{
		BaseURL: cfg.AlbumURL,
		HTTP:    &http.Client{},
		Timeout: cfg.UpstreamTimeout,
	}
	aside := &cache.Aside{
		Store:    store,
		TTL:      cfg.CacheTTL(),
		Logger:   logger,
		Coalesce: cfg.CacheCoalesce,
	}

	if strings.EqualFold(cfg.AppEnv, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	photoHandler := &handler.PhotoHandler{
		Album:  albumClient,
		Cache:  aside,
		Logger: logger,
	}
	engine := newEngine(logger, store, photoHandler)

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	_, err = cronRunner.Add("@every 30s", func(ctx context.Context) {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			logger.Warn("cache store heartbeat failed", zap.String("backend", cfg.CacheBackend), zap.Error(err))
		}
	})
	if err != nil {
		logger.Warn("cron register store heartbeat failed", zap.Error(err))
	}
	if mem, ok := store.(*cache.MemoryStore); ok {
		_, err = cronRunner.Add("@every 1m", func(context.Context) {
			if n := mem.Sweep(); n > 0 {
				logger.Debug("memory cache swept", zap.Int("expired", n))
			}
		})
		if err != nil {
			logger.Warn("cron register memory sweep failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	logger.Info("server listening",
		zap.String("addr", srv.Addr),
		zap.String("backend", cfg.CacheBackend),
		zap.Duration("ttl", cfg.CacheTTL()),
	)
	if err := serve(ctx, srv, logger); err != nil {
		logger.Error("listen failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// serve runs srv until ctx is done or the listener fails, then shuts it down.
// It returns the listener error, if any, so callers unwind through their defers.
func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var listenErr error
	select {
	case <-ctx.Done():
	case listenErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", zap.Error(err))
	}
	return listenErr
}

func openStore(cfg config.Config, logger *zap.Logger) cache.Store {
	switch cfg.CacheBackend {
	case "", "redis":
		return cache.NewRedisStore(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "memcache", "memcached":
		servers := cfg.Memcache()
		if len(servers) == 0 {
			logger.Warn("CACHE_BACKEND=memcache but MEMCACHE_SERVERS is empty; falling back to memory")
			return cache.NewMemoryStore()
		}
		return cache.NewMemcacheStore(servers...)
	case "memory":
		return cache.NewMemoryStore()
	default:
		logger.Warn("unknown CACHE_BACKEND, falling back to memory", zap.String("backend", cfg.CacheBackend))
		return cache.NewMemoryStore()
	}
}
