package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	wstypes "isp-billing-service/internal/domain/websocket"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []wstypes.Envelope
}

func (r *recorder) Publish(event wstypes.EventType, payload interface{}) {
	raw, _ := json.Marshal(payload)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, wstypes.Envelope{Event: event, Payload: raw})
}

func (r *recorder) snapshot() []wstypes.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]wstypes.Envelope(nil), r.events...)
}

func TestRelayForwardsWorkerEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	target := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- Relay(ctx, client, target, nil) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(RelayChannel)[RelayChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	publisher := NewRedisPublisher(client, nil)
	publisher.Publish(wstypes.EventInvoiceUpdated, map[string]string{"id": "INV-1", "status": "overdue"})
	mr.Publish(RelayChannel, "garbage")
	publisher.Publish(wstypes.EventNotificationCreated, map[string]string{"title": "Invoice overdue"})

	require.Eventually(t, func() bool { return len(target.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	events := target.snapshot()
	assert.Equal(t, wstypes.EventInvoiceUpdated, events[0].Event)
	assert.JSONEq(t, `{"id":"INV-1","status":"overdue"}`, string(events[0].Payload))
	assert.Equal(t, wstypes.EventNotificationCreated, events[1].Event)

	cancel()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRedisPublisherSurvivesOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	assert.NotPanics(t, func() {
		NewRedisPublisher(client, nil).Publish(wstypes.EventInvoiceUpdated, map[string]string{"id": "INV-1"})
	})
}

func TestRelayResubscribesAfterOutage(t *testing.T) {
	minB, maxB := relayMinBackoff, relayMaxBackoff
	relayMinBackoff, relayMaxBackoff = 20*time.Millisecond, 50*time.Millisecond
	t.Cleanup(func() { relayMinBackoff, relayMaxBackoff = minB, maxB })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	target := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- Relay(ctx, client, target, nil) }()

	// first attempts fail while redis is down
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, mr.Restart())

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(RelayChannel)[RelayChannel] == 1
	}, 3*time.Second, 10*time.Millisecond)

	NewRedisPublisher(client, nil).Publish(wstypes.EventInvoiceUpdated, map[string]string{"id": "INV-9"})
	require.Eventually(t, func() bool { return len(target.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, wstypes.EventInvoiceUpdated, target.snapshot()[0].Event)

	cancel()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}
