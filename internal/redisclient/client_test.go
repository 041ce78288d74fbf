package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"marketplace-service/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to REDIS_TEST_ADDR and skips the test when it is unset.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("Integration test - set REDIS_TEST_ADDR to run")
	}

	c, err := NewClient(config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestIncrWindow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "test:ratelimit:" + uuid.New().String()
	defer c.Delete(ctx, key)

	count, ttl, err := c.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	count, _, err = c.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestJSONRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "test:json:" + uuid.New().String()

	found, err := c.GetJSON(ctx, key, &struct{}{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, key, map[string]int{"pendingOrders": 2}, time.Minute))

	var got map[string]int
	found, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, got["pendingOrders"])

	require.NoError(t, c.Delete(ctx, key))
	found, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}
