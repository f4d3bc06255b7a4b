package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"isp-billing-service/internal/config"
	"isp-billing-service/internal/db"
	"isp-billing-service/internal/jobs"
	"isp-billing-service/internal/metrics"
	"isp-billing-service/internal/repository/postgres"
	notifyUsecase "isp-billing-service/internal/service/notification"
	"isp-billing-service/internal/websocket"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[WORKER] No .env file found, relying on system env vars")
	}
	cfg := config.Load()

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	pool, err := db.ConnectDB(ctx, db.PostgresConfig{
		URL:            cfg.DatabaseURL,
		MaxConns:       int32(cfg.WorkerConcurrency) + 2,
		MaxConnIdle:    cfg.DBMaxConnIdle,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	redisCfg := db.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
		PoolSize: 10,
	}
	redisClient, err := db.NewRedisClient(redisCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", zap.Error(err))
		}
	}()

	// dashboards are connected to the API process; events reach them over redis
	publisher := websocket.NewRedisPublisher(redisClient, logger)
	notifService := notifyUsecase.NewNotificationService(postgres.NewNotificationRepository(pool), publisher, logger)
	sweep := jobs.NewOverdueSweepJob(
		postgres.NewInvoiceRepository(pool),
		notifService,
		publisher,
		metrics.New(nil),
		logger,
	)

	sweepTask, err := jobs.NewOverdueSweepTask(time.Time{})
	if err != nil {
		return err
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   jobs.RedisOpt(redisCfg.Options()),
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOverdueSweep, Handler: sweep.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.OverdueSweepCron, Task: sweepTask, Options: []asynq.Option{asynq.Unique(30 * time.Minute)}},
		},
	})
	if err != nil {
		return err
	}
	if cfg.WorkerMetricsAddr != "" {
		go serveMetrics(ctx, cfg.WorkerMetricsAddr, logger)
	}
	return worker.Run(ctx)
}

func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}
