package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/stimecode/internal/api"
	"github.com/zsiec/stimecode/internal/config"
	"github.com/zsiec/stimecode/internal/errors"
	"github.com/zsiec/stimecode/internal/logger"
	"github.com/zsiec/stimecode/internal/marks"
	"github.com/zsiec/stimecode/internal/server"
	"github.com/zsiec/stimecode/pkg/version"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "configs/default.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithField("version", version.GetInfo().Short()).Info("Starting stimecode server")
	log.WithFields(logrus.Fields{
		"config_path":        configPath,
		"default_frame_rate": cfg.Timecode.DefaultFrameRate,
		"force_non_drop":     cfg.Timecode.ForceNonDropFrame,
	}).Debug("Configuration loaded")

	redisClient := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Redis.Addresses,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})

	// Marks need Redis; everything else works without it, so an unreachable
	// Redis only degrades health.
	store := marks.NewRedisStore(redisClient, logger.NewLogrusAdapter(logger.WithComponent(log, "marks")), cfg.Timecode.MarkTTL)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		log.WithError(err).Warn("Redis unavailable, marks API will fail until it recovers")
	} else if n, err := store.Count(startupCtx); err == nil {
		log.WithField("marks", n).Info("Connected to Redis successfully")
	}
	startupCancel()

	handlers, err := api.NewHandlers(&cfg.Timecode, store, errors.NewErrorHandler(log), logger.NewLogrusAdapter(logger.Service(log)))
	if err != nil {
		log.WithError(err).Fatal("Failed to create API handlers")
	}

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics, log)
	}

	srv := server.New(&cfg.Server, log, redisClient)
	srv.RegisterRoutes(handlers.RegisterRoutes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Fatal("Server error")
	}

	if err := store.Close(); err != nil {
		log.WithError(err).Error("Failed to close Redis connection")
	}

	log.Info("Server shutdown complete")
}

// startMetricsServer serves Prometheus metrics on their own port.
func startMetricsServer(cfg config.MetricsConfig, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithField("addr", addr).Info("Starting metrics server")

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.WithError(err).Error("Metrics server error")
	}
}
