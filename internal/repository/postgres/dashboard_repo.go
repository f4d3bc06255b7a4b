// internal/repository/postgres/dashboard_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type DashboardRepository struct {
	db *pgxpool.Pool
}

func NewDashboardRepository(db *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) CountActiveCustomers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE status = 'active'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}

func (r *DashboardRepository) RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE status = 'success' AND created_at >= $1 AND created_at < $2
	`, from, to).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return sum, nil
}

func (r *DashboardRepository) CountInvoices(ctx context.Context, status string) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return n, nil
}

func (r *DashboardRepository) CountPendingDueOn(ctx context.Context, day time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE status = 'pending' AND due_date = $1::date`, day,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count invoices due: %w", err)
	}
	return n, nil
}

func (r *DashboardRepository) MonthlyRevenue(ctx context.Context, year int) (map[int]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT EXTRACT(MONTH FROM created_at)::int AS month, COALESCE(SUM(amount), 0)
		FROM payments
		WHERE status = 'success' AND EXTRACT(YEAR FROM created_at)::int = $1
		GROUP BY month
		ORDER BY month
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly revenue: %w", err)
	}
	defer rows.Close()

	result := make(map[int]decimal.Decimal, 12)
	for rows.Next() {
		var month int
		var sum decimal.Decimal
		if err := rows.Scan(&month, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan monthly revenue: %w", err)
		}
		result[month] = sum
	}
	return result, rows.Err()
}
