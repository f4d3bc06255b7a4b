// internal/handlers/payment/payment_handler.go
package payment

import (
	"net/http"

	"isp-billing-service/internal/domain/payment"
	"isp-billing-service/internal/pkg/response"
	service "isp-billing-service/internal/service/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, logger: logger}
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var filters payment.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "Invalid query parameters")
		return
	}

	page, err := h.paymentService.ListPayments(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Paginated(c, page)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	p, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// RecordPayment handles POST /payments. 201 means the invoice flip committed too.
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req payment.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.paymentService.RecordPayment(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	if err := h.paymentService.DeletePayment(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Payment deleted successfully")
}
