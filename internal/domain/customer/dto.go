// internal/domain/customer/dto.go
package customer

import "isp-billing-service/internal/pkg/pagination"

type CreateCustomerRequest struct {
	Name      string  `json:"name" binding:"required"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     string  `json:"phone" binding:"required"`
	Address   string  `json:"address" binding:"required"`
	PackageID int64   `json:"package_id" binding:"required,gt=0"`
	Status    string  `json:"status" binding:"omitempty,oneof=active inactive"`
}

// UpdateCustomerRequest is partial: nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	PackageID *int64  `json:"package_id" binding:"omitempty,gt=0"`
	Status    *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

type ListFilters struct {
	pagination.Params
	Search string `form:"search"`
	Status string `form:"status"`
}
