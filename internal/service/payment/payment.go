// internal/service/payment/payment.go
package payment

import (
	"context"
	"fmt"
	"strings"

	"isp-billing-service/internal/domain/invoice"
	"isp-billing-service/internal/domain/notification"
	"isp-billing-service/internal/domain/payment"
	ws "isp-billing-service/internal/domain/websocket"
	"isp-billing-service/internal/metrics"
	xerrors "isp-billing-service/internal/pkg/errors"
	"isp-billing-service/internal/pkg/idgen"
	"isp-billing-service/internal/pkg/pagination"

	"go.uber.org/zap"
)

// Notifier records a dashboard notification for a settled invoice.
type Notifier interface {
	CreateAndPush(ctx context.Context, n *notification.Notification) (*notification.Notification, error)
}

type PaymentService struct {
	repo      payment.Repository
	ledger    payment.Ledger
	ids       *idgen.Generator
	publisher ws.Publisher
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewPaymentService wires the ledger and its collaborators. notifier and m may be nil.
func NewPaymentService(
	repo payment.Repository,
	ledger payment.Ledger,
	ids *idgen.Generator,
	publisher ws.Publisher,
	notifier Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PaymentService {
	if publisher == nil {
		publisher = ws.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = idgen.New()
	}
	return &PaymentService{
		repo:      repo,
		ledger:    ledger,
		ids:       ids,
		publisher: publisher,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
	}
}

// RecordPayment inserts the payment and settles its invoice in one transaction.
// payment_created is published only after the commit succeeds.
func (s *PaymentService) RecordPayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.Payment, error) {
	if err := validate(req); err != nil {
		s.metrics.ObservePayment("invalid")
		return nil, err
	}

	p := &payment.Payment{
		ID:         s.ids.Payment(),
		InvoiceID:  strings.TrimSpace(req.InvoiceID),
		CustomerID: req.CustomerID,
		Amount:     *req.Amount,
		Method:     strings.TrimSpace(req.Method),
		Status:     payment.StatusSuccess,
		Notes:      req.Notes,
	}

	err := s.ledger.InTx(ctx, func(ctx context.Context, tx payment.LedgerTx) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, p.InvoiceID)
		if err != nil {
			return err
		}
		if inv.IsSettled() {
			return xerrors.Conflict("Invoice is already paid")
		}
		if inv.Status == invoice.StatusCancelled {
			return xerrors.Conflict("Invoice is cancelled")
		}
		if inv.CustomerID != p.CustomerID {
			return xerrors.Validation("Invoice does not belong to this customer")
		}

		if err := tx.InsertPayment(ctx, p); err != nil {
			return err
		}
		return tx.MarkInvoicePaid(ctx, inv.ID)
	})
	if err != nil {
		s.metrics.ObservePayment(outcome(err))
		s.logger.Warn("payment rejected",
			zap.String("invoice_id", p.InvoiceID),
			zap.Int64("customer_id", p.CustomerID),
			zap.Error(err),
		)
		return nil, err
	}

	invoiceNumber := p.InvoiceID
	p.InvoiceNumber = &invoiceNumber

	s.metrics.ObservePayment("success")
	s.logger.Info("payment recorded",
		zap.String("payment_id", p.ID),
		zap.String("invoice_id", p.InvoiceID),
		zap.String("amount", p.Amount.String()),
		zap.String("method", p.Method),
	)
	s.publisher.Publish(ws.EventPaymentCreated, p)
	s.notifyReceived(ctx, p)
	return p, nil
}

func (s *PaymentService) notifyReceived(ctx context.Context, p *payment.Payment) {
	if s.notifier == nil {
		return
	}
	customerID := p.CustomerID
	_, err := s.notifier.CreateAndPush(ctx, &notification.Notification{
		CustomerID: &customerID,
		Type:       notification.TypePaymentReceived,
		Title:      "Payment received",
		Message:    fmt.Sprintf("Payment %s of %s via %s settled invoice %s", p.ID, p.Amount.StringFixed(2), p.Method, p.InvoiceID),
	})
	if err != nil {
		s.logger.Warn("failed to create payment notification", zap.String("payment_id", p.ID), zap.Error(err))
	}
}

func (s *PaymentService) ListPayments(ctx context.Context, filters *payment.ListFilters) (*pagination.Page[payment.Payment], error) {
	filters.Normalize()
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, filters.Params, total), nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	return s.repo.FindByID(ctx, id)
}

// DeletePayment removes the record only; the invoice stays paid.
func (s *PaymentService) DeletePayment(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("payment deleted", zap.String("payment_id", id))
	s.publisher.Publish(ws.EventPaymentDeleted, ws.DeletedData{ID: id})
	return nil
}

func validate(req *payment.CreatePaymentRequest) error {
	if strings.TrimSpace(req.InvoiceID) == "" || req.CustomerID <= 0 || req.Amount == nil || strings.TrimSpace(req.Method) == "" {
		return xerrors.Validation("Invoice, customer, amount and method are required")
	}
	if !req.Amount.IsPositive() {
		return xerrors.Validation("Amount must be greater than zero")
	}
	return nil
}

func outcome(err error) string {
	switch {
	case xerrors.Is(err, xerrors.ErrConflict):
		return "conflict"
	case xerrors.Is(err, xerrors.ErrNotFound):
		return "not_found"
	case xerrors.Is(err, xerrors.ErrValidation):
		return "invalid"
	}
	return "error"
}
