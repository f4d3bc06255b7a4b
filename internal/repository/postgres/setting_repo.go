// internal/repository/postgres/setting_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"isp-billing-service/internal/domain/setting"
	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingRepository struct {
	db *pgxpool.Pool
}

func NewSettingRepository(db *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) List(ctx context.Context) ([]setting.Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value, description, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := []setting.Setting{}
	for rows.Next() {
		var s setting.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*setting.Setting, error) {
	var s setting.Setting
	err := r.db.QueryRow(ctx,
		`SELECT key, value, description, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("Setting")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return &s, nil
}

func (r *SettingRepository) Update(ctx context.Context, key, value string) (*setting.Setting, error) {
	var s setting.Setting
	err := r.db.QueryRow(ctx, `
		UPDATE settings SET value = $1, updated_at = NOW()
		WHERE key = $2
		RETURNING key, value, description, updated_at
	`, value, key).Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("Setting")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update setting: %w", err)
	}
	return &s, nil
}

func (r *SettingRepository) GetProfile(ctx context.Context) (*setting.CompanyProfile, error) {
	var p setting.CompanyProfile
	err := r.db.QueryRow(ctx, `
		SELECT company_name, email, phone, website, address, updated_at
		FROM company_profile WHERE id = 1
	`).Scan(&p.CompanyName, &p.Email, &p.Phone, &p.Website, &p.Address, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("Company profile")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}
	return &p, nil
}

func (r *SettingRepository) UpdateProfileField(ctx context.Context, key, value string) (*setting.CompanyProfile, error) {
	if !setting.ProfileKeys[key] {
		return nil, xerrors.Validation("unknown profile field: " + key)
	}

	// key is whitelisted above
	query := fmt.Sprintf(`
		UPDATE company_profile SET %s = $1, updated_at = NOW()
		WHERE id = 1
		RETURNING company_name, email, phone, website, address, updated_at
	`, pgx.Identifier{key}.Sanitize())

	var p setting.CompanyProfile
	err := r.db.QueryRow(ctx, query, value).
		Scan(&p.CompanyName, &p.Email, &p.Phone, &p.Website, &p.Address, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("Company profile")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update company profile: %w", err)
	}
	return &p, nil
}
