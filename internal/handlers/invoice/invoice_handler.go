// internal/handlers/invoice/invoice_handler.go
package invoice

import (
	"fmt"
	"net/http"

	"isp-billing-service/internal/domain/invoice"
	"isp-billing-service/internal/pkg/response"
	service "isp-billing-service/internal/service/invoice"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, logger: logger}
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filters invoice.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "Invalid query parameters")
		return
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Paginated(c, page)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, inv)
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req invoice.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusCreated, inv)
}

// UpdateInvoice handles PUT /invoices/:id {status, notes}
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req invoice.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	inv, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, inv)
}

func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Invoice deleted successfully")
}

// DownloadPDF streams the rendered invoice as an attachment.
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	doc, inv, err := h.invoiceService.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, inv.ID))
	c.Data(http.StatusOK, "application/pdf", doc)
}
