package redis_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/redis"
)

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(t.Context(), redis.Config{ConnectionURL: "mysql://nope", RetryAttempts: 1})
	assert.ErrorIs(t, err, redis.ErrParseURL)
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(t.Context(), redis.Config{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: time.Second,
	})
	assert.ErrorIs(t, err, redis.ErrNotReady)
}

func TestConnect(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	client, err := redis.Connect(t.Context(), redis.Config{ConnectionURL: url, RetryAttempts: 1, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, redis.Healthcheck(client)(t.Context()))
}
