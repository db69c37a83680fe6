package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainreroute/trainreroute/internal/api/models"
)

func TestProblem_Builders(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"rr_test123",
	).WithDetail("trainId is required").
		WithInstance("/v1/trains/%20/reroutes").
		WithErrors([]models.FieldError{{Field: "trainId", Message: "required", Code: "REQUIRED"}})

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "trainId is required", p.Detail)
	assert.Equal(t, "/v1/trains/%20/reroutes", p.Instance)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "REQUIRED", p.Errors[0].Code)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewMalformedSchedule("rr_test123", `train T1: malformed schedule "25:00"`)
	p.Instance = "/v1/trains/T1/reroutes"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "rr_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.ProblemTypeMalformedSchedule, result.Type)
	assert.Equal(t, "Malformed schedule", result.Title)
	assert.Equal(t, "/v1/trains/T1/reroutes", result.Instance)
	assert.Equal(t, "rr_test123", result.TraceID)
	assert.Empty(t, result.Errors)
}

func TestProblemConstructors(t *testing.T) {
	tests := []struct {
		name       string
		problem    *models.Problem
		wantType   string
		wantStatus int
	}{
		{"bad request", models.NewBadRequest("rr_1", "bad", nil), models.ProblemTypeValidation, http.StatusBadRequest},
		{"train not found", models.NewTrainNotFound("rr_1", "T9"), models.ProblemTypeTrainNotFound, http.StatusNotFound},
		{"not found", models.NewNotFound("rr_1", "no route"), models.ProblemTypeNotFound, http.StatusNotFound},
		{"malformed schedule", models.NewMalformedSchedule("rr_1", "bad time"), models.ProblemTypeMalformedSchedule, http.StatusUnprocessableEntity},
		{"too many requests", models.NewTooManyRequests("rr_1", "slow down"), models.ProblemTypeTooManyRequests, http.StatusTooManyRequests},
		{"tls required", models.NewTLSRequired("rr_1"), models.ProblemTypeTLSRequired, http.StatusForbidden},
		{"internal", models.NewInternalError("rr_1", "boom"), models.ProblemTypeInternal, http.StatusInternalServerError},
		{"unavailable", models.NewServiceUnavailable("rr_1", "down"), models.ProblemTypeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.problem.Type)
			assert.Equal(t, tt.wantStatus, tt.problem.Status)
			assert.Equal(t, "rr_1", tt.problem.TraceID)
			assert.NotEmpty(t, tt.problem.Title)
		})
	}

	assert.Equal(t, "no train with id T9", models.NewTrainNotFound("rr_1", "T9").Detail)
}

func TestTimestamp_JSON(t *testing.T) {
	ts := models.Timestamp(time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2026-01-15T09:30:00Z"`, string(data))

	var decoded models.Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, ts.Time().Equal(decoded.Time()))

	require.NoError(t, json.Unmarshal([]byte("null"), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &decoded))
}
