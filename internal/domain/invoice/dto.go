// internal/domain/invoice/dto.go
package invoice

import (
	"isp-billing-service/internal/pkg/pagination"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// CreateInvoiceRequest: Amount and PackageID default to the customer's monthly fee and package,
// DueDate (YYYY-MM-DD) to the invoice_due_days setting.
type CreateInvoiceRequest struct {
	CustomerID int64            `json:"customer_id" binding:"required,gt=0"`
	PackageID  *int64           `json:"package_id"`
	Amount     *decimal.Decimal `json:"amount"`
	DueDate    string           `json:"due_date"`
	Notes      *string          `json:"notes"`
}

type UpdateInvoiceRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

type ListFilters struct {
	pagination.Params
	Search string `form:"search"`
	Status string `form:"status"`
}
