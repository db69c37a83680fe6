package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trainreroute/trainreroute/internal/api/models"
	"github.com/trainreroute/trainreroute/internal/api/response"
)

// trainIDParam reads the trainId path parameter. A blank value gets a 400
// and ok is false.
func trainIDParam(w http.ResponseWriter, r *http.Request) (trainID string, ok bool) {
	trainID = chi.URLParam(r, "trainId")
	if strings.TrimSpace(trainID) == "" {
		response.BadRequest(w, r, "trainId must not be blank", []models.FieldError{
			{Field: "trainId", Message: "must not be blank", Code: "REQUIRED"},
		})
		return "", false
	}
	return trainID, true
}
