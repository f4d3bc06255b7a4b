// internal/domain/notification/entity.go
package notification

import (
	"context"
	"time"
)

type NotificationType string

const (
	TypeInvoiceOverdue  NotificationType = "invoice_overdue"
	TypePaymentReceived NotificationType = "payment_received"
	TypeSystem          NotificationType = "system"
)

// LatestLimit caps the notification list.
const LatestLimit = 100

type Notification struct {
	ID         int64            `json:"id" db:"id"`
	CustomerID *int64           `json:"customer_id" db:"customer_id"`
	Type       NotificationType `json:"type" db:"type"`
	Title      string           `json:"title" db:"title"`
	Message    string           `json:"message" db:"message"`
	IsRead     bool             `json:"is_read" db:"is_read"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`

	CustomerName *string `json:"customer_name,omitempty" db:"customer_name"`
}

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListLatest(ctx context.Context, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id int64) (*Notification, error)
	MarkAllRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
	UnreadCount(ctx context.Context) (int64, error)
}
