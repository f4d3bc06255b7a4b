// internal/handlers/setting/setting_handler.go
package setting

import (
	"net/http"

	"isp-billing-service/internal/domain/setting"
	"isp-billing-service/internal/pkg/response"
	service "isp-billing-service/internal/service/setting"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettingHandler struct {
	settingService *service.SettingService
	logger         *zap.Logger
}

func NewSettingHandler(settingService *service.SettingService, logger *zap.Logger) *SettingHandler {
	return &SettingHandler{settingService: settingService, logger: logger}
}

// GetSettings returns settings rows and company profile fields as one map.
func (h *SettingHandler) GetSettings(c *gin.Context) {
	values, err := h.settingService.GetAll(c.Request.Context())
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, values)
}

// UpdateSetting handles PUT /settings/:key {value}
func (h *SettingHandler) UpdateSetting(c *gin.Context) {
	var req setting.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.settingService.Update(c.Request.Context(), c.Param("key"), *req.Value)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}
