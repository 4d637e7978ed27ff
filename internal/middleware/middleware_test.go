package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContactIntake/pkg/response"
	"ContactIntake/pkg/snowflake"
)

var allowedOrigins = []string{"https://www.amitbuildingsolutions.in", "https://amitbuildingsolutions.in"}

func newEngine(handlers ...app.HandlerFunc) (*server.Hertz, *int) {
	h := server.New()
	h.Use(handlers...)

	hits := new(int)
	ok := func(ctx context.Context, c *app.RequestContext) {
		*hits++
		c.String(http.StatusOK, "ok")
	}
	h.GET("/api/health", ok)
	h.POST("/api/contact", ok)
	h.OPTIONS("/api/contact", ok)
	return h, hits
}

func decodeError(t *testing.T, body []byte) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestCORSAllowedOrigin(t *testing.T) {
	h, hits := newEngine(CORSMiddleware(allowedOrigins))

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/contact", nil,
		ut.Header{Key: "Origin", Value: "https://amitbuildingsolutions.in"})
	resp := w.Result()

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "https://amitbuildingsolutions.in", string(resp.Header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "Origin", string(resp.Header.Peek("Vary")))
	assert.Equal(t, 1, *hits)
}

func TestCORSRejectedOriginNeverReachesHandler(t *testing.T) {
	h, hits := newEngine(CORSMiddleware(allowedOrigins))

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/contact", nil,
		ut.Header{Key: "Origin", Value: "https://evil.example"})
	resp := w.Result()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode())
	assert.Empty(t, resp.Header.Peek("Access-Control-Allow-Origin"))
	body := decodeError(t, resp.Body())
	assert.Equal(t, "ORIGIN_NOT_ALLOWED", body.Code)
	assert.Equal(t, "Not allowed by CORS", body.Error)
	assert.Equal(t, 0, *hits)
}

func TestCORSNoOriginPasses(t *testing.T) {
	h, hits := newEngine(CORSMiddleware(allowedOrigins))

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode())
	assert.Empty(t, w.Result().Header.Peek("Access-Control-Allow-Origin"))
	assert.Equal(t, 1, *hits)
}

func TestCORSPreflight(t *testing.T) {
	h, hits := newEngine(CORSMiddleware(allowedOrigins))

	w := ut.PerformRequest(h.Engine, http.MethodOptions, "/api/contact", nil,
		ut.Header{Key: "Origin", Value: "https://www.amitbuildingsolutions.in"},
		ut.Header{Key: "Access-Control-Request-Method", Value: "POST"})
	resp := w.Result()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
	assert.Equal(t, corsAllowMethods, string(resp.Header.Peek("Access-Control-Allow-Methods")))
	assert.Equal(t, corsAllowHeaders, string(resp.Header.Peek("Access-Control-Allow-Headers")))
	assert.Equal(t, 0, *hits)
}

func TestRecoverMiddleware(t *testing.T) {
	h := server.New()
	h.Use(RecoverMiddleware(false))
	h.GET("/boom", func(ctx context.Context, c *app.RequestContext) {
		panic("sheet exploded")
	})

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/boom", nil)
	resp := w.Result()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	body := decodeError(t, resp.Body())
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.Equal(t, "Internal server error", body.Error)
	assert.NotContains(t, string(resp.Body()), "sheet exploded")
}

func TestRecoverMiddlewareExposeDetails(t *testing.T) {
	h := server.New()
	h.Use(RecoverMiddleware(true))
	h.GET("/boom", func(ctx context.Context, c *app.RequestContext) {
		panic("sheet exploded")
	})

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/boom", nil)

	body := decodeError(t, w.Result().Body())
	assert.Equal(t, "Internal error: sheet exploded", body.Error)
}

func TestIsSeverePanic(t *testing.T) {
	assert.True(t, isSeverePanic("concurrent map writes"))
	assert.False(t, isSeverePanic("sheet exploded"))
	assert.False(t, isSeverePanic(nil))
}

func TestRequestIDMiddleware(t *testing.T) {
	require.NoError(t, snowflake.Init(1))

	var seen string
	h := server.New()
	h.Use(RequestIDMiddleware())
	h.GET("/api/health", func(ctx context.Context, c *app.RequestContext) {
		seen = GetRequestID(c)
		c.String(http.StatusOK, "ok")
	})

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/health", nil,
		ut.Header{Key: RequestIDHeader, Value: "abc-123"})
	assert.Equal(t, "abc-123", string(w.Result().Header.Peek(RequestIDHeader)))
	assert.Equal(t, "abc-123", seen)

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/api/health", nil)
	generated := string(w.Result().Header.Peek(RequestIDHeader))
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, seen)
}

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, cfg RateLimitConfig) (bool, int, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[key]++
	n := f.counts[key]
	return n <= cfg.MaxRequests, n, nil
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := RateLimitConfig{Window: time.Minute, MaxRequests: 2, KeyPrefix: "test:rate"}
	h, hits := newEngine(RateLimitMiddleware(&fakeLimiter{}, cfg))

	for i := 0; i < 2; i++ {
		w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/contact", nil)
		require.Equal(t, http.StatusOK, w.Result().StatusCode())
	}

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/contact", nil)
	resp := w.Result()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode())
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeError(t, resp.Body()).Code)
	assert.Equal(t, "2", string(resp.Header.Peek("X-RateLimit-Limit")))
	assert.Equal(t, "0", string(resp.Header.Peek("X-RateLimit-Remaining")))
	assert.Equal(t, 2, *hits)
}

func TestRateLimitFailsOpen(t *testing.T) {
	cfg := RateLimitConfig{Window: time.Minute, MaxRequests: 1, KeyPrefix: "test:rate"}
	h, hits := newEngine(RateLimitMiddleware(&fakeLimiter{err: errors.New("connection refused")}, cfg))

	for i := 0; i < 3; i++ {
		w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/contact", nil)
		assert.Equal(t, http.StatusOK, w.Result().StatusCode())
	}
	assert.Equal(t, 3, *hits)
}
