// internal/handlers/customer/customer_handler.go
package customer

import (
	"net/http"

	"isp-billing-service/internal/domain/customer"
	"isp-billing-service/internal/pkg/response"
	service "isp-billing-service/internal/service/customer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	logger          *zap.Logger
}

func NewCustomerHandler(customerService *service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// ListCustomers handles GET /customers?page&limit&search&status
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var filters customer.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "Invalid query parameters")
		return
	}

	page, err := h.customerService.ListCustomers(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Paginated(c, page)
}

// GetCustomer retrieves a customer by ID
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := response.IDParam(c)
	if !ok {
		return
	}

	result, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// CreateCustomer creates a new customer
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req customer.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.customerService.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// UpdateCustomer applies a partial update
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := response.IDParam(c)
	if !ok {
		return
	}

	var req customer.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.customerService.UpdateCustomer(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// DeleteCustomer deletes a customer
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := response.IDParam(c)
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Customer deleted successfully")
}
