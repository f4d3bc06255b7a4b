package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestBlacklistExpiresWithToken(t *testing.T) {
	mr, client := newRedis(t)
	m := NewManager(client)
	ctx := context.Background()

	require.NoError(t, m.BlacklistToken(ctx, "jti-1", time.Now().Add(time.Hour)))

	listed, err := m.IsTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, listed)

	listed, err = m.IsTokenBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, listed)

	mr.FastForward(2 * time.Hour)
	listed, err = m.IsTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, listed)
}

func TestBlacklistSkipsExpiredTokens(t *testing.T) {
	mr, client := newRedis(t)
	m := NewManager(client)

	require.NoError(t, m.BlacklistToken(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("blacklist:old"))
}

func TestLoginRateLimit(t *testing.T) {
	mr, client := newRedis(t)
	rl := NewRateLimiter(client, Limit{MaxAttempts: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := rl.CheckLoginAttempt(ctx, "10.0.0.1", "a@b.c")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, remaining, err := rl.CheckLoginAttempt(ctx, "10.0.0.1", "a@b.c")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, remaining)

	// other ip has its own budget
	ok, _, err = rl.CheckLoginAttempt(ctx, "10.0.0.2", "a@b.c")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	left, err := rl.GetRemainingAttempts(ctx, "10.0.0.1", "a@b.c")
	require.NoError(t, err)
	assert.EqualValues(t, 3, left)
}

func TestResetLoginAttempts(t *testing.T) {
	_, client := newRedis(t)
	rl := NewRateLimiter(client, DefaultLoginLimit)
	ctx := context.Background()

	_, _, err := rl.CheckLoginAttempt(ctx, "ip", "e")
	require.NoError(t, err)
	left, err := rl.GetRemainingAttempts(ctx, "ip", "e")
	require.NoError(t, err)
	assert.EqualValues(t, 4, left)

	require.NoError(t, rl.ResetLoginAttempts(ctx, "ip", "e"))
	left, err = rl.GetRemainingAttempts(ctx, "ip", "e")
	require.NoError(t, err)
	assert.EqualValues(t, 5, left)
}
