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
	"go.uber.org/zap"

	"github.com/jinank/smart-aqms/internal/classifier"
	"github.com/jinank/smart-aqms/internal/config"
	cronrunner "github.com/jinank/smart-aqms/internal/cron"
	"github.com/jinank/smart-aqms/internal/db"
	"github.com/jinank/smart-aqms/internal/detector"
	"github.com/jinank/smart-aqms/internal/handler"
	"github.com/jinank/smart-aqms/internal/logger"
	"github.com/jinank/smart-aqms/internal/pipeline"
	gormrepository "github.com/jinank/smart-aqms/internal/repository/gorm"
	"github.com/jinank/smart-aqms/internal/source"
	"github.com/jinank/smart-aqms/internal/telemetry"
)

func main() {
	cfgPath := os.Getenv("AQ_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("AQ_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.Ping(dbConn); err != nil {
		logger.Fatal("db ping failed", zap.Error(err))
	}
	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	stationIDs, err := store.EnsureStations(context.Background(), cfg.Pipeline.Stations)
	if err != nil {
		logger.Fatal("station bootstrap failed", zap.Error(err))
	}
	logger.Info("stations ready", zap.Int("count", len(stationIDs)))

	var src source.MeasurementSource
	switch strings.ToLower(strings.TrimSpace(cfg.Source.Kind)) {
	case "", "simulator":
		src = source.NewSimulator(stationIDs, cfg.Source.Seed)
	case "feed":
		src = &source.FeedSource{
			URL:     cfg.Source.FeedURL,
			Timeout: cfg.Source.FeedTimeout,
			Logger:  logger,
		}
	default:
		logger.Fatal("unknown source kind", zap.String("kind", cfg.Source.Kind))
	}

	pipe := &pipeline.Pipeline{
		Source:     src,
		Store:      store,
		Detector:   detector.New(cfg.Pipeline.Contamination, cfg.Pipeline.MinWarmupSamples, cfg.Source.Seed),
		Classifier: classifier.New(),
		Recorder:   &telemetry.Recorder{Store: store},
		Logger:     logger,
		Options: pipeline.Options{
			TargetRate:   cfg.Pipeline.TargetRate,
			BatchSize:    cfg.Pipeline.BatchSize,
			Duration:     cfg.Pipeline.Duration,
			ModelVersion: cfg.Pipeline.ModelVersion,
		},
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	readingHandler := &handler.ReadingHandler{Repo: store}
	readingHandler.Register(engine)
	predictionHandler := &handler.PredictionHandler{Repo: store}
	predictionHandler.Register(engine)
	alertHandler := &handler.AlertHandler{Repo: store}
	alertHandler.Register(engine)
	metricHandler := &handler.MetricHandler{Repo: store}
	metricHandler.Register(engine)
	stationHandler := &handler.StationHandler{Repo: store}
	stationHandler.Register(engine)
	statusHandler := &handler.StatusHandler{Repo: store, Pipeline: pipe}
	statusHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Retention.Enabled {
		metricsMaxAge := cfg.Retention.MetricsMaxAge
		alertsMaxAge := cfg.Retention.AlertsMaxAge
		_, err := cronRunner.Add(cfg.Retention.SweepSpec, func(ctx context.Context) {
			if n, err := store.DeleteMetricsBefore(ctx, time.Now().UTC().Add(-metricsMaxAge)); err != nil {
				logger.Warn("metrics retention sweep failed", zap.Error(err))
			} else if n > 0 {
				logger.Info("pruned old metrics", zap.Int64("count", n))
			}
			if n, err := store.DeleteAlertsBefore(ctx, time.Now().UTC().Add(-alertsMaxAge)); err != nil {
				logger.Warn("alerts retention sweep failed", zap.Error(err))
			} else if n > 0 {
				logger.Info("pruned old alerts", zap.Int64("count", n))
			}
		})
		if err != nil {
			logger.Warn("cron register retention sweep failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 2)

	go func() {
		if err := pipe.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("pipeline stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
