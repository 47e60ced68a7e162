package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/config"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking"
)

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		logger.Fatal("postgres", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		logger.Fatal("rabbitmq", zap.Error(err))
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		logger.Fatal("mqtt", zap.Error(err))
	}
	defer mqttClient.Disconnect(250)

	redisClient, err := config.NewRedis(cfg)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("timezone", zap.String("name", cfg.Timezone), zap.Error(err))
	}

	trackingModule, err := tracking.Build(db, amqpConn, mqttClient, redisClient, logger, tracking.Options{
		HighSpeedKmh:   cfg.HighSpeedKmh,
		BatchChunkSize: cfg.BatchChunkSize,
		BatchFanOut:    cfg.BatchFanOut,
		BatchDeadline:  cfg.BatchDeadline,
		GeocoderURL:    cfg.GeocoderURL,
		Timezone:       tz,
	})
	if err != nil {
		logger.Fatal("tracking module", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trackingModule.RestoreMembership(ctx)

	if err := trackingModule.StartSubscribers(); err != nil {
		logger.Fatal("start subscribers", zap.Error(err))
	}

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient, redisClient)
	health.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	trackingModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}
	go func() {
		logger.Info("listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := trackingModule.SnapshotMembership(shutdownCtx); err != nil {
		logger.Warn("membership snapshot", zap.Error(err))
	}
}
