// internal/domain/customer/entity.go
package customer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusInactive
}

// Customer is a subscriber. MonthlyFee is the package price captured when the
// package was assigned; later package price changes do not touch it.
type Customer struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Email      *string         `json:"email" db:"email"`
	Phone      string          `json:"phone" db:"phone"`
	Address    string          `json:"address" db:"address"`
	PackageID  int64           `json:"package_id" db:"package_id"`
	Status     string          `json:"status" db:"status"`
	MonthlyFee decimal.Decimal `json:"monthly_fee" db:"monthly_fee"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`

	// joined from packages
	PackageName  *string          `json:"package_name,omitempty" db:"package_name"`
	PackageSpeed *string          `json:"package_speed,omitempty" db:"package_speed"`
	PackagePrice *decimal.Decimal `json:"package_price,omitempty" db:"package_price"`
}

type Repository interface {
	List(ctx context.Context, filters *ListFilters) ([]Customer, int64, error)
	FindByID(ctx context.Context, id int64) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id int64) error
}
