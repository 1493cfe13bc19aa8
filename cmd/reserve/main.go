package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hikari/internal/api"
	"hikari/internal/cache"
	"hikari/internal/config"
	"hikari/internal/events"
	"hikari/internal/logging"
	"hikari/internal/metrics"
	"hikari/internal/models"
	"hikari/internal/profile"
	"hikari/internal/reservation"
	"hikari/internal/tablemap"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, logger)

	client, err := api.NewClient(cfg.Backend, cfg.Session, logging.Component(logger, "api"))
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	client.UseTableCache(initTableCache(cfg, redisClient, logger))

	bus := events.NewEventBus()
	page := reservation.NewPage(client, bus, reservation.Options{
		Authenticated:   cfg.Session.Authenticated,
		MaxOnlineGuests: cfg.Booking.MaxOnlineGuests,
		Fallback:        fallbackLayout(cfg),
	}, logging.Component(logger, "reservation"))

	sh := newShell(cfg, client, page, profile.NewPage(client, logging.Component(logger, "profile")), bus, os.Stdout, logger)
	if err := sh.start(ctx); err != nil {
		return err
	}

	logger.Info().Str("backend", cfg.Backend.BaseURL).Bool("authenticated", page.Authenticated()).Msg("reservation client started")
	err = sh.run(ctx, os.Stdin)
	logger.Info().Msg("reservation client stopped")
	return err
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, "reserve-main"), closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory cache")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initTableCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) cache.TableCache {
	memory := cache.NewMemoryTableCache(cfg.Cache.TablesTTL)
	if redisClient == nil {
		return memory
	}
	primary := cache.NewRedisTableCache(redisClient, cfg.Cache.TablesTTL)
	return cache.NewFailoverTableCache(primary, memory, logging.Component(logger, "cache"))
}

// fallbackLayout prefers a configured layout file over the bundled one.
func fallbackLayout(cfg *config.Config) func() ([]models.Table, error) {
	path := cfg.Booking.FallbackTables
	if path == "" {
		return tablemap.LoadFallback
	}
	return func() ([]models.Table, error) {
		return tablemap.LoadLayoutFile(path)
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
