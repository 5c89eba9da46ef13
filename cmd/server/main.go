package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/sentiserve/config"
	"github.com/spacesedan/sentiserve/internal/antiforgery"
	"github.com/spacesedan/sentiserve/internal/bootstrap"
	"github.com/spacesedan/sentiserve/internal/clients"
	"github.com/spacesedan/sentiserve/internal/clients/kafka_client"
	"github.com/spacesedan/sentiserve/internal/db"
	"github.com/spacesedan/sentiserve/internal/events"
	"github.com/spacesedan/sentiserve/internal/logging"
	"github.com/spacesedan/sentiserve/internal/monitoring"
	"github.com/spacesedan/sentiserve/internal/sentiment"
	"github.com/spacesedan/sentiserve/internal/server"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

func main() {
	env := config.AppEnv()
	config.LoadEnv(env)
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel, cfg.IsDev())

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	opts := sentiment.Options{TestFraction: cfg.TestFraction}
	serverOpts := server.Options{Dev: cfg.IsDev()}

	loader, closeLoader, err := bootstrap.NewLoader(ctx, cfg)
	if err != nil {
		slog.Error("[Main] Failed to create training data loader", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeLoader()

	if cfg.ValkeyAddr != "" {
		cache, err := clients.NewValkeyClient(clients.ValkeyConfig{
			Addr:     cfg.ValkeyAddr,
			Password: cfg.ValkeyPassword,
			TLS:      cfg.ValkeyTLS,
		})
		if err != nil {
			slog.Warn("[Main] Prediction cache disabled", slog.String("error", err.Error()))
		} else {
			defer cache.Close()
			opts.Cache = cache

			cacheHealthy := &atomic.Bool{}
			cacheHealthy.Store(true)
			serverOpts.CacheHealthy = cacheHealthy

			wg.Add(1)
			go func() {
				defer wg.Done()
				monitoring.MonitorCacheHealth(ctx, cache, cacheHealthy)
			}()
		}
	}

	if cfg.KafkaBroker != "" {
		producer, err := kafka_client.NewProducer(kafka_client.KafkaConfig{
			Broker: cfg.KafkaBroker,
			Topic:  cfg.KafkaPredictionsTopic,
		})
		if err != nil {
			slog.Warn("[Main] Prediction events disabled", slog.String("error", err.Error()))
		} else {
			defer producer.Close()
			publisher := events.NewPublisher(producer, events.FLUSH_INTERVAL)
			opts.Publisher = publisher

			wg.Add(1)
			go func() {
				defer wg.Done()
				publisher.Run(ctx)
			}()
		}
	}

	if cfg.TrainingTable != "" {
		dynamo, err := clients.NewDynamoDBClient(ctx, clients.AWSConfig{
			Region:   cfg.AWSRegion,
			Endpoint: cfg.AWSEndpoint,
		})
		if err != nil {
			slog.Warn("[Main] Training run records disabled", slog.String("error", err.Error()))
		} else {
			opts.RunStore = db.NewTrainingRunStore(dynamo, cfg.TrainingTable)
		}
	}

	trainCtx, cancelTrain := context.WithTimeout(ctx, cfg.TrainTimeout)
	svc, err := sentiment.NewService(trainCtx, bootstrap.MLContext(cfg), loader, opts)
	cancelTrain()
	if err != nil {
		slog.Error("[Main] Failed to train sentiment model", slog.String("error", err.Error()))
		os.Exit(1)
	}

	forms, err := antiforgery.New([]byte(cfg.AntiforgeryKey), !cfg.IsDev())
	if err != nil {
		slog.Error("[Main] Failed to create anti-forgery protector", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.AntiforgeryKey == "" {
		slog.Warn("[Main] ANTIFORGERY_KEY not set, using a random key")
	}

	srv, err := server.New(svc, forms, serverOpts)
	if err != nil {
		slog.Error("[Main] Failed to build router", slog.String("error", err.Error()))
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("[Main] Listening", slog.String("addr", cfg.HTTPAddr), slog.String("env", env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] HTTP server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] HTTP shutdown failed", slog.String("error", err.Error()))
	}

	wg.Wait()
	slog.Info("[Main] Shutdown complete")
}
