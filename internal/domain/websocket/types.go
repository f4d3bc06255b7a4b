// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Billing change events (server -> client)
	EventCustomerCreated EventType = "customer_created"
	EventCustomerUpdated EventType = "customer_updated"
	EventCustomerDeleted EventType = "customer_deleted"
	EventPackageCreated  EventType = "package_created"
	EventPackageUpdated  EventType = "package_updated"
	EventPackageDeleted  EventType = "package_deleted"
	EventInvoiceCreated  EventType = "invoice_created"
	EventInvoiceUpdated  EventType = "invoice_updated"
	EventInvoiceDeleted  EventType = "invoice_deleted"
	EventPaymentCreated  EventType = "payment_created"
	EventPaymentDeleted  EventType = "payment_deleted"

	EventNotificationCreated EventType = "notification_created"

	// Notification requests (client -> server)
	EventTypeNotificationRead    EventType = "notification:read"
	EventTypeNotificationReadAll EventType = "notification:read_all"
	EventTypeNotificationList    EventType = "notification:list"
	EventTypeNotificationCount   EventType = "notification:count"

	// Subscription events
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

// Publisher pushes a change event to connected dashboards. Implementations must not block.
type Publisher interface {
	Publish(event EventType, payload interface{})
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(EventType, interface{}) {}

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType              `json:"type"`
	Data      interface{}            `json:"data,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	ID        string                 `json:"id,omitempty"`
}

// Subscription channels that clients can subscribe to
type ChannelType string

const (
	ChannelBilling       ChannelType = "billing"
	ChannelNotifications ChannelType = "notifications"
	ChannelSystem        ChannelType = "system"
)

// ChannelFor routes an event to its channel.
func ChannelFor(event EventType) ChannelType {
	switch event {
	case EventNotificationCreated, EventTypeNotificationCount:
		return ChannelNotifications
	case EventTypeConnected, EventTypeDisconnected, EventTypeError:
		return ChannelSystem
	}
	return ChannelBilling
}

// DefaultChannels are subscribed on connect.
var DefaultChannels = []ChannelType{ChannelBilling, ChannelNotifications, ChannelSystem}

// SubscribeRequest sent by client to subscribe to specific channels
type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// UnsubscribeRequest sent by client to unsubscribe from channels
type UnsubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// DeletedData is the payload of *_deleted events.
type DeletedData struct {
	ID interface{} `json:"id"`
}

// Envelope is the cross-process form of an event, relayed over redis pub/sub.
type Envelope struct {
	Event   EventType       `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
