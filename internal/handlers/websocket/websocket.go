// internal/handlers/websocket/websocket.go
package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"isp-billing-service/internal/pkg/jwt"
	"isp-billing-service/internal/pkg/response"
	ws "isp-billing-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// TokenVerifier authenticates the socket before the upgrade.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*jwt.Claims, error)
}

type WebSocketHandler struct {
	hub      *ws.Hub
	verifier TokenVerifier
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler builds the /ws endpoint. An empty allowedOrigins accepts any origin.
func NewWebSocketHandler(hub *ws.Hub, verifier TokenVerifier, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHandler{
		hub:      hub,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// non-browser clients send no Origin
		return origin == "" || set[strings.TrimRight(origin, "/")]
	}
}

// HandleConnection authenticates GET /ws?token= and upgrades it.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		response.Unauthorized(c, "Access denied. No token provided.")
		return
	}

	claims, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		h.logger.Debug("websocket authentication failed", zap.String("ip", c.ClientIP()), zap.Error(err))
		response.Unauthorized(c, "Invalid token.")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("ip", c.ClientIP()), zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, claims)
	if !h.hub.Register(c.Request.Context(), client) {
		client.Close()
		conn.Close()
		return
	}

	h.logger.Info("websocket client connected",
		zap.Int64("user_id", claims.UserID),
		zap.String("email", claims.Email),
		zap.String("ip", c.ClientIP()),
	)

	go client.WritePump()
	go client.ReadPump()
}

// GetStats reports the number of connected dashboards.
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"total_connections": h.hub.TotalClients(),
		"timestamp":         time.Now(),
	})
}

// extractToken reads ?token= first, then the Authorization header.
func extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
