// internal/repository/postgres/invoice_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"isp-billing-service/internal/domain/invoice"
	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvoiceRepository struct {
	db *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `i.id, i.customer_id, i.package_id, i.amount, i.due_date, i.status, i.notes, i.created_at, i.updated_at`

const invoiceSelect = `
	SELECT ` + invoiceColumns + `, c.name, p.name
	FROM invoices i
	LEFT JOIN customers c ON i.customer_id = c.id
	LEFT JOIN packages p ON i.package_id = p.id
`

func scanInvoice(row pgx.Row, joined bool) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	dest := []interface{}{
		&inv.ID, &inv.CustomerID, &inv.PackageID, &inv.Amount, &inv.DueDate,
		&inv.Status, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	}
	if joined {
		dest = append(dest, &inv.CustomerName, &inv.PackageName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) List(ctx context.Context, filters *invoice.ListFilters) ([]invoice.Invoice, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(i.id ILIKE $%d OR c.name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM invoices i
		LEFT JOIN customers c ON i.customer_id = c.id
		WHERE %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $%d OFFSET $%d
	`, invoiceSelect, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []invoice.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, total, rows.Err()
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, invoiceSelect+` WHERE i.id = $1`, id), true)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("Invoice")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (id, customer_id, package_id, amount, due_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		inv.ID, inv.CustomerID, inv.PackageID, inv.Amount, inv.DueDate, inv.Status, inv.Notes,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return translateWrite(err, "Invoice", "Customer", "failed to create invoice")
	}
	return nil
}

// Update sets status and, when notes is non-nil, notes. The paid guard is part of the
// statement, so a payment committed after the caller's read still wins.
func (r *InvoiceRepository) Update(ctx context.Context, id, status string, notes *string) (*invoice.Invoice, error) {
	query := `
		UPDATE invoices i
		SET status = $1, notes = COALESCE($2, i.notes), updated_at = NOW()
		WHERE i.id = $3 AND (i.status = 'paid') = ($1 = 'paid')
		RETURNING ` + invoiceColumns
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, status, notes, id), false)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.rejectedUpdate(ctx, id, status)
	}
	if err != nil {
		return nil, translateWrite(err, "Invoice", "Invoice", "failed to update invoice")
	}
	return inv, nil
}

// rejectedUpdate explains why the guarded UPDATE matched no row.
func (r *InvoiceRepository) rejectedUpdate(ctx context.Context, id, status string) error {
	var current string
	err := r.db.QueryRow(ctx, `SELECT status FROM invoices WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.NotFound("Invoice")
	}
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if err := invoice.CheckTransition(current, status); err != nil {
		return err
	}
	// the row changed back between the UPDATE and this read
	return xerrors.Conflict("Invoice was modified concurrently")
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return translateDelete(err, "Invoice")
	}
	if result.RowsAffected() == 0 {
		return xerrors.NotFound("Invoice")
	}
	return nil
}

// MarkOverdue moves pending invoices with due_date < asOf to overdue. Paid invoices are never touched.
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, asOf time.Time) ([]invoice.Invoice, error) {
	query := `
		UPDATE invoices i
		SET status = 'overdue', updated_at = NOW()
		WHERE i.status = 'pending' AND i.due_date < $1::date
		RETURNING ` + invoiceColumns
	rows, err := r.db.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to mark overdue invoices: %w", err)
	}
	defer rows.Close()

	result := []invoice.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		result = append(result, *inv)
	}
	return result, rows.Err()
}
