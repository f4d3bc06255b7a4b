// internal/domain/dashboard/entity.go
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Stats struct {
	TotalCustomers   int64           `json:"totalCustomers"`
	MonthlyRevenue   decimal.Decimal `json:"monthlyRevenue"`
	PendingInvoices  int64           `json:"pendingInvoices"`
	DueTodayInvoices int64           `json:"dueTodayInvoices"`
	OverdueInvoices  int64           `json:"overdueInvoices"`
}

type RevenuePoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Repository interface {
	CountActiveCustomers(ctx context.Context) (int64, error)
	// RevenueBetween sums successful payments with from <= created_at < to.
	RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	CountInvoices(ctx context.Context, status string) (int64, error)
	CountPendingDueOn(ctx context.Context, day time.Time) (int64, error)
	// MonthlyRevenue returns revenue keyed by month number (1-12) for year.
	MonthlyRevenue(ctx context.Context, year int) (map[int]decimal.Decimal, error)
}
