// internal/domain/payment/dto.go
package payment

import (
	"isp-billing-service/internal/pkg/pagination"

	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	InvoiceID  string           `json:"invoice_id" binding:"required"`
	CustomerID int64            `json:"customer_id" binding:"required,gt=0"`
	Amount     *decimal.Decimal `json:"amount" binding:"required"`
	Method     string           `json:"method" binding:"required"`
	Notes      *string          `json:"notes"`
}

type ListFilters struct {
	pagination.Params
	Search string `form:"search"`
	Status string `form:"status"`
}
