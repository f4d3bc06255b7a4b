// internal/handlers/packages/packages_handler.go
package packages

import (
	"net/http"

	"isp-billing-service/internal/domain/packages"
	"isp-billing-service/internal/pkg/response"
	service "isp-billing-service/internal/service/packages"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PackageHandler struct {
	packageService *service.PackageService
	logger         *zap.Logger
}

func NewPackageHandler(packageService *service.PackageService, logger *zap.Logger) *PackageHandler {
	return &PackageHandler{packageService: packageService, logger: logger}
}

func (h *PackageHandler) ListPackages(c *gin.Context) {
	items, err := h.packageService.ListPackages(c.Request.Context())
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []packages.Package{}
	}
	response.Success(c, http.StatusOK, items)
}

func (h *PackageHandler) GetPackage(c *gin.Context) {
	id, ok := response.IDParam(c)
	if !ok {
		return
	}

	pkg, err := h.packageService.GetPackage(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, pkg)
}

func (h *PackageHandler) CreatePackage(c *gin.Context) {
	var req packages.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	pkg, err := h.packageService.CreatePackage(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusCreated, pkg)
}

func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	id, ok := response.IDParam(c)
	if !ok {
		return
	}

	var req packages.UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	pkg, err := h.packageService.UpdatePackage(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, pkg)
}

func (h *PackageHandler) DeletePackage(c *gin.Context) {
	id, ok := response.IDParam(c)
	if !ok {
		return
	}

	if err := h.packageService.DeletePackage(c.Request.Context(), id); err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Package deleted successfully")
}
