// internal/repository/postgres/ledger.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"isp-billing-service/internal/domain/invoice"
	"isp-billing-service/internal/domain/payment"
	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger executes payment settlement on a single reserved connection.
// The all-or-nothing contract of InTx is exercised against the in-memory
// ledger in service/payment; there are no database-backed tests here.
type Ledger struct {
	db             *pgxpool.Pool
	acquireTimeout time.Duration
}

func NewLedger(db *pgxpool.Pool, acquireTimeout time.Duration) *Ledger {
	if acquireTimeout <= 0 {
		acquireTimeout = 2 * time.Second
	}
	return &Ledger{db: db, acquireTimeout: acquireTimeout}
}

func (l *Ledger) InTx(ctx context.Context, fn func(ctx context.Context, tx payment.LedgerTx) error) error {
	acqCtx, cancel := context.WithTimeout(ctx, l.acquireTimeout)
	conn, err := l.db.Acquire(acqCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, &ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) GetInvoiceForUpdate(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices i
		WHERE i.id = $1
		FOR UPDATE
	`
	inv, err := scanInvoice(t.tx.QueryRow(ctx, query, invoiceID), false)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("Invoice")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock invoice: %w", err)
	}
	return inv, nil
}

func (t *ledgerTx) InsertPayment(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (id, invoice_id, customer_id, amount, method, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := t.tx.QueryRow(ctx, query,
		p.ID, p.InvoiceID, p.CustomerID, p.Amount, p.Method, p.Status, p.Notes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translateWrite(err, "Payment", "Customer", "failed to insert payment")
	}
	return nil
}

func (t *ledgerTx) MarkInvoicePaid(ctx context.Context, invoiceID string) error {
	result, err := t.tx.Exec(ctx,
		`UPDATE invoices SET status = 'paid', updated_at = NOW() WHERE id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.NotFound("Invoice")
	}
	return nil
}
