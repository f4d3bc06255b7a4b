// internal/domain/packages/entity.go
package packages

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Package is a subscription tier.
type Package struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Speed       string          `json:"speed" db:"speed"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Description *string         `json:"description" db:"description"`
	Features    pq.StringArray  `json:"features" db:"features"`
	IsPopular   bool            `json:"is_popular" db:"is_popular"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	Subscribers int64           `json:"subscribers" db:"subscribers"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type Repository interface {
	List(ctx context.Context) ([]Package, error)
	FindByID(ctx context.Context, id int64) (*Package, error)
	Create(ctx context.Context, p *Package) error
	Update(ctx context.Context, p *Package) error
	Delete(ctx context.Context, id int64) error
}
