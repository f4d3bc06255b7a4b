// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	wstypes "isp-billing-service/internal/domain/websocket"
	"isp-billing-service/internal/metrics"

	"go.uber.org/zap"
)

const broadcastBuffer = 256

// Hub maintains the set of connected dashboards and fans events out to them.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *wstypes.WSMessage
	done       chan struct{}

	handlers *HandlerRegistry
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan *wstypes.WSMessage, broadcastBuffer),
		done:       make(chan struct{}),
		handlers:   NewHandlerRegistry(),
		metrics:    m,
		logger:     logger,
	}
}

// RegisterHandler registers a message handler for client-originated events.
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlers.Register(handler)
}

// Run starts the hub's main loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.metrics.ClientConnected()

			client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
				"user_id":  client.UserID(),
				"channels": wstypes.DefaultChannels,
			}))
			h.logger.Info("websocket client registered",
				zap.Int64("user_id", client.UserID()),
				zap.Int("total_clients", total))

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// Register hands a freshly upgraded client to the hub loop.
func (h *Hub) Register(ctx context.Context, client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Publish queues an event for every subscribed client. It never blocks: when the
// buffer is full the event is dropped.
func (h *Hub) Publish(event wstypes.EventType, payload interface{}) {
	msg := wstypes.NewMessage(event, payload)
	select {
	case h.broadcast <- msg:
	default:
		h.metrics.EventDropped()
		h.logger.Warn("realtime event dropped, hub buffer full",
			zap.String("event", string(event)),
			zap.String("message_id", msg.ID))
	}
}

// TotalClients returns the number of connected clients.
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleClientMessage routes a client message to its registered handler.
// It reports false when no handler owns the event type.
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) (bool, error) {
	handler, ok := h.handlers.GetHandler(msg.Type)
	if !ok {
		return false, nil
	}
	return true, handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) fanOut(msg *wstypes.WSMessage) {
	data, err := msg.ToJSON()
	if err != nil {
		h.logger.Error("failed to marshal realtime event", zap.String("event", string(msg.Type)), zap.Error(err))
		return
	}
	channel := wstypes.ChannelFor(msg.Type)

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client.IsSubscribed(channel) {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.enqueue(data) {
			h.logger.Warn("disconnecting slow websocket client", zap.Int64("user_id", client.UserID()))
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	client.Close()
	h.metrics.ClientDisconnected()
	h.logger.Info("websocket client unregistered",
		zap.Int64("user_id", client.UserID()),
		zap.Int("total_clients", total))
}

func (h *Hub) shutdown() {
	close(h.done)

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	for client := range clients {
		client.Close()
		h.metrics.ClientDisconnected()
	}
	h.logger.Info("websocket hub stopped", zap.Int("closed_clients", len(clients)))
}
