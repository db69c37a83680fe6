package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trainreroute/trainreroute/internal/api/middleware"
)

func captureRequestID(t *testing.T, incoming string) (fromContext, fromHeader string) {
	t.Helper()

	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromContext = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	if incoming != "" {
		req.Header.Set(middleware.RequestIDHeader, incoming)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return fromContext, rec.Header().Get(middleware.RequestIDHeader)
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	fromContext, fromHeader := captureRequestID(t, "")

	assert.True(t, strings.HasPrefix(fromContext, "rr_"), "got %q", fromContext)
	assert.Equal(t, fromContext, fromHeader)
}

func TestRequestID_PreservesWellFormedID(t *testing.T) {
	fromContext, fromHeader := captureRequestID(t, "upstream-7f3a")

	assert.Equal(t, "upstream-7f3a", fromContext)
	assert.Equal(t, "upstream-7f3a", fromHeader)
}

func TestRequestID_ReplacesMalformedID(t *testing.T) {
	for _, incoming := range []string{
		"has space",
		strings.Repeat("x", 129),
		"tab\there",
	} {
		fromContext, _ := captureRequestID(t, incoming)
		assert.True(t, strings.HasPrefix(fromContext, "rr_"), "incoming %q should be replaced", incoming)
	}
}

func TestRequestID_UniqueIDs(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := middleware.NewRequestID()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate request ID %s", id)
		seen[id] = struct{}{}
	}
}

func TestGetRequestID(t *testing.T) {
	assert.Empty(t, middleware.GetRequestID(context.Background()))
	assert.Equal(t, "rr_1", middleware.GetRequestID(middleware.WithRequestID(context.Background(), "rr_1")))
}
