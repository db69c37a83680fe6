package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/trainreroute/trainreroute/internal/api/models"
	"github.com/trainreroute/trainreroute/internal/api/response"
	"github.com/trainreroute/trainreroute/internal/train"
)

// TrainReader loads a single train row.
type TrainReader interface {
	FindByID(ctx context.Context, id string) (*train.Train, error)
}

// TrainHandler handles train lookup endpoints.
type TrainHandler struct {
	trains TrainReader
}

// NewTrainHandler creates a new TrainHandler.
func NewTrainHandler(trains TrainReader) *TrainHandler {
	return &TrainHandler{trains: trains}
}

// GetTrain handles GET /v1/trains/{trainId} - the stored row for one train.
func (h *TrainHandler) GetTrain(w http.ResponseWriter, r *http.Request) {
	trainID, ok := trainIDParam(w, r)
	if !ok {
		return
	}

	t, err := h.trains.FindByID(r.Context(), trainID)
	switch {
	case errors.Is(err, train.ErrTrainNotFound):
		response.TrainNotFound(w, r, trainID)
		return
	case err != nil:
		response.InternalError(w, r, "failed to load train")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPITrain(t))
}

func toAPITrain(t *train.Train) models.Train {
	return models.Train{
		ID:            t.ID,
		TrainNumber:   t.TrainNumber,
		TrainName:     t.TrainName,
		Status:        string(t.Status),
		DelayMinutes:  t.DelayMinutes,
		DepartureTime: t.DepartureTime,
		ArrivalTime:   t.ArrivalTime,
		Source:        t.Source,
		Destination:   t.Destination,
		StationName:   t.StationName,
		UpdatedAt:     models.Timestamp(t.UpdatedAt),
	}
}
