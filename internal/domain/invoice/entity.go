// internal/domain/invoice/entity.go
package invoice

import (
	"context"
	"time"

	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

type Invoice struct {
	ID         string          `json:"id" db:"id"`
	CustomerID int64           `json:"customer_id" db:"customer_id"`
	PackageID  *int64          `json:"package_id" db:"package_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	DueDate    time.Time       `json:"due_date" db:"due_date"`
	Status     string          `json:"status" db:"status"`
	Notes      *string         `json:"notes" db:"notes"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`

	// joined
	CustomerName *string `json:"customer,omitempty" db:"customer"`
	PackageName  *string `json:"package,omitempty" db:"package"`
}

// IsSettled reports whether a payment has already been committed against the invoice.
func (i *Invoice) IsSettled() bool {
	return i.Status == StatusPaid
}

// CheckTransition reports whether an invoice in status from may be moved to to by a manual update.
// Only a recorded payment settles an invoice, and a settled invoice stays paid.
func CheckTransition(from, to string) error {
	switch {
	case from == StatusPaid && to != StatusPaid:
		return xerrors.Conflict("Invoice is already paid")
	case from != StatusPaid && to == StatusPaid:
		return xerrors.Validation("Record a payment to mark an invoice as paid")
	}
	return nil
}

type Repository interface {
	List(ctx context.Context, filters *ListFilters) ([]Invoice, int64, error)
	FindByID(ctx context.Context, id string) (*Invoice, error)
	Create(ctx context.Context, inv *Invoice) error
	// Update applies status and notes only if CheckTransition still holds against the stored row.
	Update(ctx context.Context, id, status string, notes *string) (*Invoice, error)
	Delete(ctx context.Context, id string) error
	// MarkOverdue flips pending invoices due before asOf and returns them.
	MarkOverdue(ctx context.Context, asOf time.Time) ([]Invoice, error)
}
