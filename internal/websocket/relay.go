// internal/websocket/relay.go
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	wstypes "isp-billing-service/internal/domain/websocket"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RelayChannel carries events raised outside the API process, like the worker.
const RelayChannel = "billing:events"

const relayPublishTimeout = 2 * time.Second

// RedisPublisher forwards events to the API hub over redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(client *redis.Client, logger *zap.Logger) *RedisPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, logger: logger}
}

// Publish is best effort; a failure is logged and the event is lost.
func (p *RedisPublisher) Publish(event wstypes.EventType, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal relayed event", zap.String("event", string(event)), zap.Error(err))
		return
	}
	data, err := json.Marshal(wstypes.Envelope{Event: event, Payload: raw})
	if err != nil {
		p.logger.Error("failed to marshal relay envelope", zap.String("event", string(event)), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
	defer cancel()
	if err := p.client.Publish(ctx, RelayChannel, data).Err(); err != nil {
		p.logger.Warn("failed to relay event", zap.String("event", string(event)), zap.Error(err))
	}
}

// Resubscribe delays; a lost subscription is retried until ctx is cancelled.
var (
	relayMinBackoff = 500 * time.Millisecond
	relayMaxBackoff = 30 * time.Second
)

// Relay subscribes to RelayChannel and republishes every envelope to target
// until ctx is cancelled. Subscription failures are retried with backoff.
func Relay(ctx context.Context, client *redis.Client, target wstypes.Publisher, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	backoff := relayMinBackoff
	for {
		subscribed, err := relayOnce(ctx, client, target, logger)
		if ctx.Err() != nil {
			return nil
		}
		if subscribed {
			backoff = relayMinBackoff
		}
		logger.Warn("event relay interrupted, resubscribing",
			zap.Error(err), zap.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > relayMaxBackoff {
			backoff = relayMaxBackoff
		}
	}
}

func relayOnce(ctx context.Context, client *redis.Client, target wstypes.Publisher, logger *zap.Logger) (bool, error) {
	sub := client.Subscribe(ctx, RelayChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return false, fmt.Errorf("failed to subscribe to %s: %w", RelayChannel, err)
	}
	logger.Info("event relay subscribed", zap.String("channel", RelayChannel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, nil
		case msg, ok := <-ch:
			if !ok {
				return true, errors.New("relay subscription closed")
			}
			var env wstypes.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil || env.Event == "" {
				logger.Warn("dropping malformed relay message", zap.String("payload", msg.Payload))
				continue
			}
			target.Publish(env.Event, env.Payload)
		}
	}
}
