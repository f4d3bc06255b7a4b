// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"isp-billing-service/internal/domain/auth"
	"isp-billing-service/internal/middleware"
	"isp-billing-service/internal/pkg/response"
	authUsecase "isp-billing-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Login ==========

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Email and password are required")
		return
	}
	req.IPAddress = c.ClientIP()

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, loginResp)
}

// ========== Session ==========

// Verify returns the claims of the bearer token. Runs behind the auth middleware.
func (h *AuthHandler) Verify(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "Invalid token.")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": claims})
}

// Logout revokes the current token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "Invalid token.")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.Message(c, http.StatusOK, "Logged out")
}

// ========== Password ==========

// ChangePassword handles PUT /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Current password and new password are required")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	h.logger.Info("password changed", zap.Int64("user_id", userID))
	response.Message(c, http.StatusOK, "Password changed successfully")
}
