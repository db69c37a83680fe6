package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainreroute/trainreroute/internal/api"
	"github.com/trainreroute/trainreroute/internal/api/models"
	"github.com/trainreroute/trainreroute/internal/reroute"
	"github.com/trainreroute/trainreroute/internal/resilience"
	"github.com/trainreroute/trainreroute/internal/train"
)

var referenceTime = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

func testTrains() []*train.Train {
	return []*train.Train{
		{
			ID: "T1", TrainNumber: "101", TrainName: "Coastal", Status: train.StatusCancelled,
			DepartureTime: "10:00", ArrivalTime: "12:00",
			Source: "A", Destination: "Z", StationName: "A",
		},
		{
			ID: "T2", TrainNumber: "102", TrainName: "Valley", Status: train.StatusOnTime,
			DepartureTime: "10:10", ArrivalTime: "12:10",
			Source: "B", Destination: "Z", StationName: "B",
		},
		{
			ID: "T3", TrainNumber: "103", TrainName: "Ridge", Status: train.StatusOnTime,
			DepartureTime: "11:00", ArrivalTime: "13:00",
			Source: "A", Destination: "Y", StationName: "A",
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	registry := resilience.NewRegistry()
	repo := train.NewResilientRepository(train.NewInMemoryRepository(testTrains()...), train.ResilientRepositoryConfig{
		Registry: registry,
		Logger:   zerolog.Nop(),
	})

	svc, err := reroute.NewService(reroute.ServiceConfig{
		Repository: repo,
		Clock:      func() time.Time { return referenceTime },
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	return api.NewRouter(api.RouterConfig{
		Version:         "test",
		BuildTime:       "2026-01-01T00:00:00Z",
		Logger:          zerolog.New(io.Discard),
		RerouteService:  svc,
		TrainRepository: repo,
		Registry:        registry,
	})
}

func doGet(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthCheck(t *testing.T) {
	w := doGet(newTestRouter(t), "/v1/ops/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouter_ReadinessCheck(t *testing.T) {
	w := doGet(newTestRouter(t), "/v1/ops/ready")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter(t)
	doGet(router, "/v1/trains/T1")

	w := doGet(router, "/v1/ops/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.HealthStatusOK, status.Status)
	require.Len(t, status.Dependencies, 1)
	assert.Equal(t, train.ResilientRepositoryName, status.Dependencies[0].Name)
	assert.Equal(t, "closed", status.Dependencies[0].CircuitState)
	assert.NotNil(t, status.Dependencies[0].LastSuccessAt)
}

func TestRouter_Reroutes(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/trains/T1/reroutes", "/v1/trains/T1/reroutes"} {
		t.Run(path, func(t *testing.T) {
			w := doGet(router, path)
			require.Equal(t, http.StatusOK, w.Code)

			var result reroute.Result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			assert.True(t, result.RerouteRequired)
			require.NotNil(t, result.Reason)
			assert.Equal(t, "Train has been cancelled", *result.Reason)
			assert.Zero(t, result.SameStationCount)
			assert.Equal(t, 1, result.NearbyStationCount)
			assert.Equal(t, []string{"B"}, result.SuggestedStations)
		})
	}
}

func TestRouter_Reroutes_UnknownTrain(t *testing.T) {
	w := doGet(newTestRouter(t), "/v1/trains/NOPE/reroutes")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeTrainNotFound, problem.Type)
	assert.Equal(t, w.Header().Get("X-Request-Id"), problem.TraceID)
}

func TestRouter_GetTrain(t *testing.T) {
	w := doGet(newTestRouter(t), "/v1/trains/T3")
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Train
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "T3", got.ID)
	assert.Equal(t, "Y", got.Destination)
}

func TestRouter_RerouteRateLimit(t *testing.T) {
	router := newTestRouter(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 61; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/trains/T3/reroutes", http.NoBody)
		req.RemoteAddr = "198.51.100.7:4000"
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "60", last.Header().Get("Retry-After"))
}

func TestRouter_RequestID_Generated(t *testing.T) {
	w := doGet(newTestRouter(t), "/v1/ops/health")

	assert.True(t, strings.HasPrefix(w.Header().Get("X-Request-Id"), "rr_"))
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	newTestRouter(t).ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	w := doGet(newTestRouter(t), "/v1/nonexistent")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_RequireTLS(t *testing.T) {
	router := api.NewRouter(api.RouterConfig{Logger: zerolog.Nop(), RequireTLS: true})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "http")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
