// internal/domain/packages/dto.go
package packages

import "github.com/shopspring/decimal"

type CreatePackageRequest struct {
	Name        string           `json:"name" binding:"required"`
	Speed       string           `json:"speed" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Description *string          `json:"description"`
	Features    []string         `json:"features"`
	IsPopular   bool             `json:"is_popular"`
}

// UpdatePackageRequest replaces every field of the package.
type UpdatePackageRequest struct {
	Name        string           `json:"name" binding:"required"`
	Speed       string           `json:"speed" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Description *string          `json:"description"`
	Features    []string         `json:"features"`
	IsPopular   bool             `json:"is_popular"`
	IsActive    *bool            `json:"is_active"`
}
