// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"isp-billing-service/internal/domain/customer"
	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerSelect = `
	SELECT c.id, c.name, c.email, c.phone, c.address, c.package_id, c.status,
	       c.monthly_fee, c.created_at, c.updated_at,
	       p.name, p.speed, p.price
	FROM customers c
	LEFT JOIN packages p ON c.package_id = p.id
`

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PackageID, &c.Status,
		&c.MonthlyFee, &c.CreatedAt, &c.UpdatedAt,
		&c.PackageName, &c.PackageSpeed, &c.PackagePrice,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List retrieves customers with search/status filters and pagination
func (r *CustomerRepository) List(ctx context.Context, filters *customer.ListFilters) ([]customer.Customer, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(c.name ILIKE $%d OR c.email ILIKE $%d OR c.phone ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customers c WHERE %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $%d OFFSET $%d
	`, customerSelect, whereClause, argPos, argPos+1)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []customer.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}

	return customers, total, rows.Err()
}

// FindByID retrieves a customer with its package summary
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, customerSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("Customer")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone, address, package_id, status, monthly_fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		c.Name, c.Email, c.Phone, c.Address, c.PackageID, c.Status, c.MonthlyFee,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return translateWrite(err, "Customer", "Package", "failed to create customer")
	}
	return nil
}

// Update writes the full row; callers merge partial requests first.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, address = $4, package_id = $5,
		    status = $6, monthly_fee = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		c.Name, c.Email, c.Phone, c.Address, c.PackageID, c.Status, c.MonthlyFee, c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return translateWrite(err, "Customer", "Package", "failed to update customer")
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return translateDelete(err, "Customer")
	}
	if result.RowsAffected() == 0 {
		return xerrors.NotFound("Customer")
	}
	return nil
}
