package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"isp-billing-service/internal/domain/invoice"
	"isp-billing-service/internal/domain/notification"
	ws "isp-billing-service/internal/domain/websocket"
	"isp-billing-service/internal/metrics"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// OverdueMarker is the slice of the invoice repository the sweep needs.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, asOf time.Time) ([]invoice.Invoice, error)
}

// Notifier stores a notification and pushes it to dashboards.
type Notifier interface {
	CreateAndPush(ctx context.Context, n *notification.Notification) (*notification.Notification, error)
}

// OverdueSweepJob marks overdue invoices and tells the dashboards about them.
type OverdueSweepJob struct {
	invoices  OverdueMarker
	notifier  Notifier
	publisher ws.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	clock     func() time.Time
}

func NewOverdueSweepJob(invoices OverdueMarker, notifier Notifier, publisher ws.Publisher, m *metrics.Metrics, logger *zap.Logger) *OverdueSweepJob {
	if publisher == nil {
		publisher = ws.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueSweepJob{
		invoices:  invoices,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one sweep.
func (j *OverdueSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.invoices == nil {
		return errors.New("overdue sweep: handler not configured")
	}
	var payload OverdueSweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("overdue sweep payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	asOf, err := j.asOf(payload)
	if err != nil {
		return fmt.Errorf("overdue sweep as_of: %v: %w", err, asynq.SkipRetry)
	}

	_, err = j.Sweep(ctx, asOf)
	return err
}

// Sweep flips every pending invoice due before asOf and returns how many changed.
func (j *OverdueSweepJob) Sweep(ctx context.Context, asOf time.Time) (n int, err error) {
	tracker := j.metrics.Track(TaskOverdueSweep)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger.With(zap.String("as_of", asOf.Format(dateLayout)))
	marked, err := j.invoices.MarkOverdue(ctx, asOf)
	if err != nil {
		logger.Error("overdue sweep failed", zap.Error(err))
		return 0, err
	}
	j.metrics.AddOverdue(len(marked))

	for i := range marked {
		inv := marked[i]
		j.publisher.Publish(ws.EventInvoiceUpdated, inv)
		j.notify(ctx, &inv)
	}

	logger.Info("overdue sweep finished", zap.Int("marked", len(marked)))
	return len(marked), nil
}

func (j *OverdueSweepJob) notify(ctx context.Context, inv *invoice.Invoice) {
	if j.notifier == nil {
		return
	}
	customerID := inv.CustomerID
	_, err := j.notifier.CreateAndPush(ctx, &notification.Notification{
		CustomerID: &customerID,
		Type:       notification.TypeInvoiceOverdue,
		Title:      "Invoice overdue",
		Message: fmt.Sprintf("Invoice %s of %s was due on %s",
			inv.ID, inv.Amount.StringFixed(2), inv.DueDate.Format(dateLayout)),
	})
	if err != nil {
		j.logger.Warn("failed to create overdue notification", zap.String("invoice_id", inv.ID), zap.Error(err))
	}
}

func (j *OverdueSweepJob) asOf(payload OverdueSweepPayload) (time.Time, error) {
	if payload.AsOf == "" {
		now := j.clock()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(dateLayout, payload.AsOf)
}
