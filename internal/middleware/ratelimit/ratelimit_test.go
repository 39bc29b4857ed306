package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowRefillsOverTime(t *testing.T) {
	l := New(Config{RequestsPerMinute: 2})
	defer l.Stop()

	current := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "buckets are per key")

	current = current.Add(30 * time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestEvictIdle(t *testing.T) {
	l := New(Config{RequestsPerMinute: 1})
	defer l.Stop()

	current := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return current }
	l.Allow("a")

	current = current.Add(idleBucketTTL + time.Minute)
	l.evictIdle()
	assert.Empty(t, l.buckets)
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	l := New(Config{RequestsPerMinute: 1})
	defer l.Stop()

	app := fiber.New()
	app.Use(l.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Client-ID", "tester")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Client-ID", "tester")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}
