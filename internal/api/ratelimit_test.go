package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askcampus/askcampus/internal/testutil"
)

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := newRateLimiter(1.0, 3)

	for i := range 3 {
		assert.True(t, rl.allow("10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, rl.allow("10.0.0.1"))
}

func TestRateLimiterIsolatesIPs(t *testing.T) {
	rl := newRateLimiter(1.0, 1)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	rl := newRateLimiter(1.0, 1)
	handler := rateLimitMiddleware(rl, false, testutil.DiscardLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "192.0.2.1:5000",
			want:       "192.0.2.1",
		},
		{
			name:       "proxy headers ignored when untrusted",
			remoteAddr: "192.0.2.1:5000",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "192.0.2.1",
		},
		{
			name:       "x-real-ip preferred when trusted",
			remoteAddr: "192.0.2.1:5000",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			trustProxy: true,
			want:       "203.0.113.9",
		},
		{
			name:       "first x-forwarded-for entry",
			remoteAddr: "192.0.2.1:5000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, 198.51.100.2"},
			trustProxy: true,
			want:       "203.0.113.9",
		},
		{
			name:       "invalid header value falls back to remote addr",
			remoteAddr: "192.0.2.1:5000",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			trustProxy: true,
			want:       "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trustProxy))
		})
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := newRateLimiter(1.0, 1)
	for i := range 10 {
		rl.allow(fmt.Sprintf("10.0.0.%d", i))
	}
	require.Len(t, rl.visitors, 10)

	// Age every visitor past the stale threshold, then force a cleanup
	// pass on the next allow call.
	rl.mu.Lock()
	for _, v := range rl.visitors {
		v.lastSeen = v.lastSeen.Add(-2 * rateLimiterStaleThreshold)
	}
	rl.lastCleanup = rl.lastCleanup.Add(-2 * rateLimiterCleanupInterval)
	rl.mu.Unlock()

	rl.allow("10.0.1.1")
	assert.Len(t, rl.visitors, 1)
}
