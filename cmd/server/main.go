package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/santapan/api/internal/cache"
	"github.com/santapan/api/internal/config"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/events"
	"github.com/santapan/api/internal/logger"
	"github.com/santapan/api/internal/router"
	"github.com/santapan/api/internal/ws"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	kafkaBuffer     = 1024
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("connected to database")

	var (
		rdb     *redis.Client
		catalog *cache.Cache
	)
	if cfg.RedisURL != "" {
		rdb, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		catalog = cache.New(cache.NewRedisStore(rdb), cfg.CacheTTL, log)
		log.Info("catalog cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	} else {
		log.Warn("REDIS_URL not set, catalog cache disabled")
	}

	hub := ws.NewHub()
	go hub.Run()

	publishers := events.Multi{ws.NewPublisher(hub)}
	var kafka *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, kafkaBuffer, log)
		kafka.Start()
		publishers = append(publishers, kafka)
		log.Info("kafka publishing enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	} else {
		log.Warn("KAFKA_BROKERS not set, events stay in process")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, pool, hub, catalog, publishers, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	hub.Stop()
	if kafka != nil {
		if err := kafka.Close(shutdownCtx); err != nil {
			log.Error("kafka flush", zap.Error(err))
		}
	}
	log.Info("shutdown complete")
	return nil
}
