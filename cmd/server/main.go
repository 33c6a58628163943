package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"model-inference-service/internal/adapters/primary/http/handlers"
	"model-inference-service/internal/adapters/primary/http/middleware"
	"model-inference-service/internal/adapters/secondary/mqttalert"
	"model-inference-service/internal/adapters/secondary/postgres"
	"model-inference-service/internal/adapters/secondary/prometheus"
	"model-inference-service/internal/config"
	ports "model-inference-service/internal/core/ports/output"
	"model-inference-service/internal/core/services"
	"model-inference-service/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// Secondary Adapters (Output Ports - Repositories)
	predictionRepo := postgres.NewPredictionLogRepository(pool)
	feedbackRepo := postgres.NewFeedbackRepository(pool)
	driftRepo := postgres.NewDriftReportRepository(pool)

	// MQTT Alert Publisher (Optional - based on config)
	var alertPublisher ports.AlertPublisher
	if cfg.MQTT.Enabled {
		publisher, err := mqttalert.NewPublisher(&cfg.MQTT)
		if err != nil {
			log.Warnf("MQTT publisher init failed (continuing without drift alerts): %v", err)
		} else {
			alertPublisher = publisher
			defer publisher.Close()
			log.Info("MQTT alert publisher initialized")
		}
	} else {
		log.Info("MQTT alerting disabled")
	}

	// Prometheus Client (Optional - based on config)
	var prometheusClient ports.PrometheusClient
	if cfg.Prometheus.Enabled {
		prometheusClient = prometheus.NewPrometheusClient(&cfg.Prometheus)
		log.Info("Prometheus client initialized")
	} else {
		log.Info("Prometheus integration disabled")
	}

	// Telemetry
	metrics := telemetry.New()
	runtimeCtx, stopRuntime := context.WithCancel(context.Background())
	defer stopRuntime()
	go metrics.CaptureRuntime(runtimeCtx, cfg.Telemetry.RuntimeInterval)

	// Core Services (Application Layer)
	window := services.NewObservationWindow(cfg.Drift.Window)
	predictSvc := services.NewPredictionService(cfg.Model.ArtifactPath, predictionRepo, feedbackRepo, window, metrics)
	if err := predictSvc.LoadModel(); err != nil {
		log.Warnf("model load failed (predictions unavailable until reload): %v", err)
	}

	driftSvc := services.NewDriftService(predictSvc, window, feedbackRepo, driftRepo, alertPublisher, metrics, services.DriftSettings{
		PSIThreshold:     cfg.Drift.PSIThreshold,
		ConceptThreshold: cfg.Drift.ConceptThreshold,
		MinSamples:       cfg.Drift.MinSamples,
		Window:           cfg.Drift.Window,
	})
	statsSvc := services.NewStatsService(prometheusClient)

	monitor := services.NewDriftMonitor(driftSvc, cfg.Drift.Interval)
	monitor.Start()
	defer monitor.Stop()

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(predictSvc, driftSvc, statsSvc)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	router.POST("/predict", h.Predict)
	router.GET("/metrics", telemetry.Handler(metrics.Registry))

	api := router.Group("/api/v1/inference")
	h.RegisterRoutes(api)

	// Health check with DB ping and model state
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "model_loaded": predictSvc.Loaded()})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
