// internal/app/router.go
package app

import (
	"context"
	"net/http"
	"time"

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
	"isp-billing-service/internal/metrics"
	"isp-billing-service/internal/middleware"
	"isp-billing-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports database reachability for /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	AuthHandler      *authHandler.AuthHandler
	PackageHandler   *packageHandler.PackageHandler
	CustomerHandler  *customerHandler.CustomerHandler
	InvoiceHandler   *invoiceHandler.InvoiceHandler
	PaymentHandler   *paymentHandler.PaymentHandler
	NotifHandler     *notifyHandler.NotificationHandler
	SettingHandler   *settingHandler.SettingHandler
	DashboardHandler *dashboardHandler.DashboardHandler
	JobsHandler      *jobsHandler.JobsHandler
	WSHandler        *wsHandler.WebSocketHandler
	AuthMiddleware   *middleware.AuthMiddleware
	Metrics          *metrics.Metrics
	DB               Pinger
	CORSOrigins      []string
	IsDevelopment    bool
	MetricsHandler   http.Handler
	ReadinessTimeout time.Duration
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	r.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.RequestLogger(logger),
		middleware.SecureHeaders(h.IsDevelopment),
		middleware.CORS(h.CORSOrigins),
		middleware.Metrics(h.Metrics),
	)

	// ==================== Health ====================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC()})
	})
	r.GET("/ready", readiness(h.DB, h.ReadinessTimeout, logger))

	metricsHandler := h.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metricsHandler))

	// ==================== WebSocket ====================
	if h.WSHandler != nil {
		r.GET("/ws", h.WSHandler.HandleConnection)
	}

	api := r.Group("/api")

	// ==================== Auth ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.GET("/verify", h.AuthHandler.Verify)
		authProtected.PUT("/change-password", h.AuthHandler.ChangePassword)
		authProtected.POST("/logout", h.AuthHandler.Logout)
	}

	protected := api.Group("")
	protected.Use(h.AuthMiddleware.Auth())

	// ==================== Packages ====================
	packages := protected.Group("/packages")
	{
		packages.GET("", h.PackageHandler.ListPackages)
		packages.GET("/:id", h.PackageHandler.GetPackage)
		packages.POST("", h.PackageHandler.CreatePackage)
		packages.PUT("/:id", h.PackageHandler.UpdatePackage)
		packages.DELETE("/:id", h.PackageHandler.DeletePackage)
	}

	// ==================== Customers ====================
	customers := protected.Group("/customers")
	{
		customers.GET("", h.CustomerHandler.ListCustomers)
		customers.GET("/:id", h.CustomerHandler.GetCustomer)
		customers.POST("", h.CustomerHandler.CreateCustomer)
		customers.PUT("/:id", h.CustomerHandler.UpdateCustomer)
		customers.DELETE("/:id", h.CustomerHandler.DeleteCustomer)
	}

	// ==================== Invoices ====================
	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.InvoiceHandler.ListInvoices)
		invoices.GET("/:id", h.InvoiceHandler.GetInvoice)
		invoices.GET("/:id/pdf", h.InvoiceHandler.DownloadPDF)
		invoices.POST("", h.InvoiceHandler.CreateInvoice)
		invoices.PUT("/:id", h.InvoiceHandler.UpdateInvoice)
		invoices.DELETE("/:id", h.InvoiceHandler.DeleteInvoice)
	}

	// ==================== Payments ====================
	payments := protected.Group("/payments")
	{
		payments.GET("", h.PaymentHandler.ListPayments)
		payments.GET("/:id", h.PaymentHandler.GetPayment)
		payments.POST("", h.PaymentHandler.RecordPayment)
		payments.DELETE("/:id", h.PaymentHandler.DeletePayment)
	}

	// ==================== Notifications ====================
	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.NotifHandler.GetNotifications)
		notifications.GET("/unread-count", h.NotifHandler.GetUnreadCount)
		notifications.PUT("/read-all", h.NotifHandler.MarkAllAsRead)
		notifications.PUT("/:id/read", h.NotifHandler.MarkAsRead)
		notifications.DELETE("/:id", h.NotifHandler.DeleteNotification)
	}

	// ==================== Settings ====================
	settings := protected.Group("/settings")
	{
		settings.GET("", h.SettingHandler.GetSettings)
		settings.PUT("/:key", h.AuthMiddleware.RequireRole("admin"), h.SettingHandler.UpdateSetting)
	}

	// ==================== Dashboard ====================
	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("/stats", h.DashboardHandler.GetStats)
		dashboard.GET("/revenue-chart", h.DashboardHandler.GetRevenueChart)
	}

	// ==================== Jobs ====================
	if h.JobsHandler != nil {
		jobs := protected.Group("/jobs")
		{
			jobs.GET("/stats", h.JobsHandler.GetStats)
			jobs.POST("/overdue-sweep", h.AuthMiddleware.RequireRole("admin"), h.JobsHandler.RunOverdueSweep)
		}
	}

	if h.WSHandler != nil {
		protected.GET("/ws/stats", h.WSHandler.GetStats)
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})
}

func readiness(db Pinger, timeout time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
