package alpaca

import (
	"context"
	"testing"
	"time"

	"kudanforge/internal/broker"
	"kudanforge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(config.BrokerConfig{
		Venue:          "alpaca",
		APIKey:         "key",
		SecretKey:      "secret",
		BaseURL:        "https://paper-api.alpaca.markets/",
		TimeoutSeconds: 10,
		RateLimitRPS:   3,
	})
	require.NoError(t, err)
	return c
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(config.BrokerConfig{Venue: "alpaca"})
	assert.ErrorContains(t, err, "credentials")

	c := newTestClient(t)
	assert.Equal(t, "alpaca", c.Name())
}

func TestNewBoundsEveryCall(t *testing.T) {
	c := newTestClient(t)
	assert.Equal(t, 10*time.Second, c.timeout)
	require.NotNil(t, c.httpClient)
	assert.Equal(t, c.timeout, c.httpClient.Timeout, "SDK calls take no context; the transport carries the deadline")
}

func TestAcquireHonorsContext(t *testing.T) {
	c := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.acquire(ctx)
	assert.ErrorIs(t, err, broker.ErrUnavailable)

	assert.NoError(t, c.acquire(context.Background()))
}
