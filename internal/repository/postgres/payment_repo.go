// internal/repository/postgres/payment_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"isp-billing-service/internal/domain/payment"
	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `pm.id, pm.invoice_id, pm.customer_id, pm.amount, pm.method, pm.status, pm.notes, pm.created_at, pm.updated_at`

const paymentSelect = `
	SELECT ` + paymentColumns + `, c.name, i.id
	FROM payments pm
	LEFT JOIN customers c ON pm.customer_id = c.id
	LEFT JOIN invoices i ON pm.invoice_id = i.id
`

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.InvoiceID, &p.CustomerID, &p.Amount, &p.Method, &p.Status, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt, &p.CustomerName, &p.InvoiceNumber,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) List(ctx context.Context, filters *payment.ListFilters) ([]payment.Payment, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(pm.id ILIKE $%d OR pm.invoice_id ILIKE $%d OR c.name ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("pm.status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM payments pm
		LEFT JOIN customers c ON pm.customer_id = c.id
		WHERE %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY pm.created_at DESC, pm.id DESC
		LIMIT $%d OFFSET $%d
	`, paymentSelect, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []payment.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, total, rows.Err()
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, paymentSelect+` WHERE pm.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("Payment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return p, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return translateDelete(err, "Payment")
	}
	if result.RowsAffected() == 0 {
		return xerrors.NotFound("Payment")
	}
	return nil
}
