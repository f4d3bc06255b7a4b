// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"isp-billing-service/internal/config"
	"isp-billing-service/internal/database"
	"isp-billing-service/internal/db"
	authHandler "isp-billing-service/internal/handlers/auth"
	customerHandler "isp-billing-service/internal/handlers/customer"
	dashboardHandler "isp-billing-service/internal/handlers/dashboard"
	invoiceHandler "isp-billing-service/internal/handlers/invoice"
	jobsHandler "isp-billing-service/internal/handlers/jobs"
	notifyHandler "isp-billing-service/internal/handlers/notification"
	packageHandler "isp-billing-service/internal/handlers/packages"
	paymentHandler "isp-billing-service/internal/handlers/payment"
	settingHandler "isp-billing-service/internal/handlers/setting"
	wsHandler "isp-billing-service/internal/handlers/websocket"
	"isp-billing-service/internal/jobs"
	"isp-billing-service/internal/metrics"
	"isp-billing-service/internal/middleware"
	"isp-billing-service/internal/pkg/idgen"
	"isp-billing-service/internal/pkg/jwt"
	"isp-billing-service/internal/pkg/session"
	"isp-billing-service/internal/repository/postgres"
	authUsecase "isp-billing-service/internal/service/auth"
	customersvc "isp-billing-service/internal/service/customer"
	dashboardsvc "isp-billing-service/internal/service/dashboard"
	invoicesvc "isp-billing-service/internal/service/invoice"
	notifyUsecase "isp-billing-service/internal/service/notification"
	packagesvc "isp-billing-service/internal/service/packages"
	paymentsvc "isp-billing-service/internal/service/payment"
	settingsvc "isp-billing-service/internal/service/setting"
	"isp-billing-service/internal/websocket"
	wsHandlers "isp-billing-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg    config.AppConfig
	logger *zap.Logger
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, logger: logger}
}

// Run serves the API until ctx is cancelled, then drains in-flight requests and releases the pool and redis.
func (s *Server) Run(ctx context.Context) error {
	logger := s.logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, db.PostgresConfig{
		URL:            s.cfg.DatabaseURL,
		MaxConns:       s.cfg.DBMaxConns,
		MaxConnIdle:    s.cfg.DBMaxConnIdle,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to PostgreSQL")

	if s.cfg.RunMigrations {
		if err := database.NewMigrator(pool, logger).RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// ----- Redis -----
	redisCfg := db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
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
	logger.Info("connected to Redis", zap.String("addr", redisCfg.Addr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	m := metrics.New(nil)
	ids := idgen.New()

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	packageRepo := postgres.NewPackageRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	ledger := postgres.NewLedger(pool, s.cfg.DBAcquireTimeout)
	notifyRepo := postgres.NewNotificationRepository(pool)
	settingRepo := postgres.NewSettingRepository(pool)
	dashboardRepo := postgres.NewDashboardRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(logger, m)

	// ----- Services (Usecases) -----
	authService := authUsecase.NewAuthService(
		userRepo,
		jwtManager,
		session.NewManager(redisClient),
		session.NewRateLimiter(redisClient, session.DefaultLoginLimit),
		logger,
	)
	if err := authService.EnsureAdminExists(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword, s.cfg.AdminName); err != nil {
		logger.Error("failed to initialize admin", zap.Error(err))
	}

	notifService := notifyUsecase.NewNotificationService(notifyRepo, hub, logger)
	settingService := settingsvc.NewSettingService(settingRepo, logger)
	packageService := packagesvc.NewPackageService(packageRepo, hub, logger)
	customerService := customersvc.NewCustomerService(customerRepo, packageRepo, hub, logger)
	invoiceService := invoicesvc.NewInvoiceService(invoiceRepo, customerRepo, settingService, ids, hub, logger)
	paymentService := paymentsvc.NewPaymentService(paymentRepo, ledger, ids, hub, notifService, m, logger)
	dashboardService := dashboardsvc.NewDashboardService(dashboardRepo, logger)

	hub.RegisterHandler(wsHandlers.NewNotificationHandler(notifService))

	queue := jobs.NewClient(jobs.RedisOpt(redisCfg.Options()))
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("job queue close", zap.Error(err))
		}
	}()

	// ----- Router -----
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	SetupRouter(engine, logger, &Handlers{
		AuthHandler:      authHandler.NewAuthHandler(authService, logger),
		PackageHandler:   packageHandler.NewPackageHandler(packageService, logger),
		CustomerHandler:  customerHandler.NewCustomerHandler(customerService, logger),
		InvoiceHandler:   invoiceHandler.NewInvoiceHandler(invoiceService, logger),
		PaymentHandler:   paymentHandler.NewPaymentHandler(paymentService, logger),
		NotifHandler:     notifyHandler.NewNotificationHandler(notifService, logger),
		SettingHandler:   settingHandler.NewSettingHandler(settingService, logger),
		DashboardHandler: dashboardHandler.NewDashboardHandler(dashboardService, logger),
		JobsHandler:      jobsHandler.NewJobsHandler(queue, logger),
		WSHandler:        wsHandler.NewWebSocketHandler(hub, authService, s.cfg.CORSOrigins, logger),
		AuthMiddleware:   middleware.NewAuthMiddleware(authService),
		Metrics:          m,
		DB:               postgres.NewDB(pool),
		CORSOrigins:      s.cfg.CORSOrigins,
		IsDevelopment:    s.cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		// events published by the worker process
		if err := websocket.Relay(gctx, redisClient, hub, logger); err != nil {
			logger.Warn("event relay stopped", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}
