// Package handler provides HTTP handlers for the train reroute API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/trainreroute/trainreroute/internal/api/middleware"
	"github.com/trainreroute/trainreroute/internal/api/response"
	"github.com/trainreroute/trainreroute/internal/reroute"
)

// RerouteComputer computes reroute suggestions for a train.
type RerouteComputer interface {
	Compute(ctx context.Context, trainID string) (*reroute.Result, error)
}

// RerouteHandler handles reroute endpoints.
type RerouteHandler struct {
	service RerouteComputer
	logger  zerolog.Logger
}

// NewRerouteHandler creates a new RerouteHandler.
func NewRerouteHandler(service RerouteComputer, logger zerolog.Logger) *RerouteHandler {
	return &RerouteHandler{service: service, logger: logger}
}

// GetReroutes handles GET /v1/trains/{trainId}/reroutes - compute alternatives
// for a delayed or cancelled train.
func (h *RerouteHandler) GetReroutes(w http.ResponseWriter, r *http.Request) {
	trainID, ok := trainIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.Compute(r.Context(), trainID)
	if err != nil {
		h.writeError(w, r, trainID, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

func (h *RerouteHandler) writeError(w http.ResponseWriter, r *http.Request, trainID string, err error) {
	switch {
	case errors.Is(err, reroute.ErrTrainNotFound):
		response.TrainNotFound(w, r, trainID)
	case errors.Is(err, reroute.ErrMalformedSchedule):
		h.logger.Warn().
			Err(err).
			Str("train_id", trainID).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("train schedule could not be interpreted")
		response.MalformedSchedule(w, r, err.Error())
	default:
		h.logger.Error().
			Err(err).
			Str("train_id", trainID).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("reroute computation failed")
		response.InternalError(w, r, "reroute computation failed")
	}
}
