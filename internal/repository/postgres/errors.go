package postgres

import (
	"errors"
	"fmt"
	"strings"

	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// translateWrite maps driver errors from INSERT/UPDATE to the error taxonomy.
// A foreign key violation on write means the referenced row is missing.
// Anything else is wrapped with op.
func translateWrite(err error, resource, reference, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.NotFound(resource)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return xerrors.NotFound(reference)
		case pgUniqueViolation:
			return xerrors.Conflict(resource + " already exists")
		case pgCheckViolation:
			return xerrors.Validation("invalid " + pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// translateDelete maps a foreign key violation on DELETE to a conflict: the row is still referenced.
func translateDelete(err error, resource string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return xerrors.Conflict(resource + " is still referenced by other records")
	}
	return fmt.Errorf("failed to delete %s: %w", strings.ToLower(resource), err)
}
