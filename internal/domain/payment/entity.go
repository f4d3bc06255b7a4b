// internal/domain/payment/entity.go
package payment

import (
	"context"
	"time"

	"isp-billing-service/internal/domain/invoice"

	"github.com/shopspring/decimal"
)

const StatusSuccess = "success"

type Payment struct {
	ID         string          `json:"id" db:"id"`
	InvoiceID  string          `json:"invoice_id" db:"invoice_id"`
	CustomerID int64           `json:"customer_id" db:"customer_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Method     string          `json:"method" db:"method"`
	Status     string          `json:"status" db:"status"`
	Notes      *string         `json:"notes" db:"notes"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`

	// joined
	CustomerName  *string `json:"customer,omitempty" db:"customer"`
	InvoiceNumber *string `json:"invoice_number,omitempty" db:"invoice_number"`
}

type Repository interface {
	List(ctx context.Context, filters *ListFilters) ([]Payment, int64, error)
	FindByID(ctx context.Context, id string) (*Payment, error)
	Delete(ctx context.Context, id string) error
}

// LedgerTx is the set of statements allowed inside a settlement transaction.
type LedgerTx interface {
	GetInvoiceForUpdate(ctx context.Context, invoiceID string) (*invoice.Invoice, error)
	InsertPayment(ctx context.Context, p *Payment) error
	MarkInvoicePaid(ctx context.Context, invoiceID string) error
}

// Ledger runs fn on one reserved connection inside a transaction. It commits when
// fn returns nil and rolls back otherwise; the connection is released on every path.
type Ledger interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}
