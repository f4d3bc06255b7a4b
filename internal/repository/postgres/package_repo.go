// internal/repository/postgres/package_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"isp-billing-service/internal/domain/packages"
	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PackageRepository struct {
	db *pgxpool.Pool
}

func NewPackageRepository(db *pgxpool.Pool) *PackageRepository {
	return &PackageRepository{db: db}
}

const packageSelect = `
	SELECT p.id, p.name, p.speed, p.price, p.description, p.features,
	       p.is_popular, p.is_active, p.created_at, p.updated_at,
	       COUNT(c.id) AS subscribers
	FROM packages p
	LEFT JOIN customers c ON c.package_id = p.id
`

func scanPackage(row pgx.Row) (*packages.Package, error) {
	var p packages.Package
	err := row.Scan(
		&p.ID, &p.Name, &p.Speed, &p.Price, &p.Description, &p.Features,
		&p.IsPopular, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.Subscribers,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all packages ordered by price with their subscriber count.
func (r *PackageRepository) List(ctx context.Context) ([]packages.Package, error) {
	rows, err := r.db.Query(ctx, packageSelect+` GROUP BY p.id ORDER BY p.price ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	result := []packages.Package{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *PackageRepository) FindByID(ctx context.Context, id int64) (*packages.Package, error) {
	p, err := scanPackage(r.db.QueryRow(ctx, packageSelect+` WHERE p.id = $1 GROUP BY p.id`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("Package")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find package: %w", err)
	}
	return p, nil
}

func (r *PackageRepository) Create(ctx context.Context, p *packages.Package) error {
	query := `
		INSERT INTO packages (name, speed, price, description, features, is_popular, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.Name, p.Speed, p.Price, p.Description, p.Features, p.IsPopular, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translateWrite(err, "Package", "Package", "failed to create package")
	}
	return nil
}

// Update replaces every column. customers.monthly_fee is deliberately untouched.
func (r *PackageRepository) Update(ctx context.Context, p *packages.Package) error {
	query := `
		UPDATE packages
		SET name = $1, speed = $2, price = $3, description = $4, features = $5,
		    is_popular = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.Name, p.Speed, p.Price, p.Description, p.Features, p.IsPopular, p.IsActive, p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translateWrite(err, "Package", "Package", "failed to update package")
	}
	return nil
}

func (r *PackageRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return translateDelete(err, "Package")
	}
	if result.RowsAffected() == 0 {
		return xerrors.NotFound("Package")
	}
	return nil
}
