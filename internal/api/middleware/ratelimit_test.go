package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trainreroute/trainreroute/internal/api/middleware"
)

func limitedHandler(cfg middleware.RateLimitConfig) http.Handler {
	return middleware.RequestID(
		middleware.RateLimitByIP(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)
}

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/trains/T1/reroutes", http.NoBody)
	req.RemoteAddr = ip
	return req
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	handler := limitedHandler(middleware.RateLimitConfig{RequestLimit: 2, WindowLength: time.Minute})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("192.0.2.1:1234"))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("192.0.2.1:1234"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	body := rec.Body.String()
	assert.Contains(t, body, "too-many-requests")
	assert.Contains(t, body, "/v1/trains/T1/reroutes")
	assert.Contains(t, body, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRateLimitByIP_SeparateClients(t *testing.T) {
	handler := limitedHandler(middleware.RateLimitConfig{RequestLimit: 1, WindowLength: time.Minute})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("192.0.2.1:1234"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("192.0.2.2:1234"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("192.0.2.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimitByIP_RetryAfterRoundsUp(t *testing.T) {
	handler := limitedHandler(middleware.RateLimitConfig{RequestLimit: 1, WindowLength: 1500 * time.Millisecond})

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.9:1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("192.0.2.9:1"))

	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestDefaultRateLimitConfigs(t *testing.T) {
	assert.Equal(t, 60, middleware.RerouteRateLimit.RequestLimit)
	assert.Equal(t, time.Minute, middleware.RerouteRateLimit.WindowLength)
	assert.Equal(t, 120, middleware.StandardRateLimit.RequestLimit)
	assert.Equal(t, time.Minute, middleware.StandardRateLimit.WindowLength)
}
