// internal/domain/setting/entity.go
package setting

import (
	"context"
	"time"
)

const (
	KeyInvoicePrefix  = "invoice_prefix"
	KeyCurrency       = "currency"
	KeyInvoiceDueDays = "invoice_due_days"
)

// ProfileKeys are stored as company_profile columns rather than settings rows.
var ProfileKeys = map[string]bool{
	"company_name": true,
	"email":        true,
	"phone":        true,
	"website":      true,
	"address":      true,
}

type Setting struct {
	Key         string    `json:"key" db:"key"`
	Value       string    `json:"value" db:"value"`
	Description *string   `json:"description" db:"description"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type CompanyProfile struct {
	CompanyName string    `json:"company_name" db:"company_name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone" db:"phone"`
	Website     string    `json:"website" db:"website"`
	Address     string    `json:"address" db:"address"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Field returns the profile value stored under key.
func (p *CompanyProfile) Field(key string) string {
	switch key {
	case "company_name":
		return p.CompanyName
	case "email":
		return p.Email
	case "phone":
		return p.Phone
	case "website":
		return p.Website
	case "address":
		return p.Address
	}
	return ""
}

type Repository interface {
	List(ctx context.Context) ([]Setting, error)
	Get(ctx context.Context, key string) (*Setting, error)
	Update(ctx context.Context, key, value string) (*Setting, error)
	GetProfile(ctx context.Context) (*CompanyProfile, error)
	// UpdateProfileField key must be one of ProfileKeys.
	UpdateProfileField(ctx context.Context, key, value string) (*CompanyProfile, error)
}

type UpdateSettingRequest struct {
	Value *string `json:"value" binding:"required"`
}
