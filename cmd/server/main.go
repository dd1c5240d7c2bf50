package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sdko-org/content-gateway/internal/cache"
	"github.com/sdko-org/content-gateway/internal/config"
	"github.com/sdko-org/content-gateway/internal/database"
	"github.com/sdko-org/content-gateway/internal/handlers"
	"github.com/sdko-org/content-gateway/internal/origin"
	"github.com/sdko-org/content-gateway/internal/telemetry"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	cacheGateway := cache.NewGateway(logger, rdb)
	fetcher := origin.NewFetcher(logger, cfg)

	var sink telemetry.Sink
	switch cfg.SinkKind {
	case "postgres":
		db, err := database.NewPostgresDB(logger, database.PostgresConfig{
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			DBName:   cfg.PostgresDatabase,
			SSLMode:  cfg.PostgresSSLMode,
		})
		if err != nil {
			logger.WithError(err).Fatal("Telemetry database unavailable")
		}
		sink = telemetry.NewPostgresSink(db)
	default:
		sink = telemetry.NewHTTPSink(logger, cfg.SinkURL)
	}

	emitter := telemetry.NewEmitter(logger, sink, config.ServiceName, config.ServiceVersion)
	gateway := handlers.NewGateway(logger, cfg, cacheGateway, fetcher, emitter)

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware(logger))
	r.Use(handlers.RateLimitMiddleware(cfg))
	handlers.RegisterRoutes(r, gateway)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Server shutdown error")
		}
	}()

	logger.WithField("addr", server.Addr).Info("Starting server")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("Server failed")
	}
}
