package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/visionary-advance/agency-api/internal/domain"
	"github.com/visionary-advance/agency-api/internal/service"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// @Summary Toggle activity pin
// @Description Pin or unpin an activity; only notes and email records can be pinned, at most five per lead
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param request body domain.ToggleActivityPinRequest true "Pin state"
// @Success 200 {object} domain.ActivityDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id}/pin [put]
func (h *ActivityHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid activity ID: must be a valid UUID")
		return
	}

	var req domain.ToggleActivityPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	activity, err := h.activityService.TogglePin(r.Context(), id, req.Pinned)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Activity not found")
		case errors.Is(err, service.ErrUnpinnable):
			respondWithError(w, http.StatusBadRequest, "This activity type cannot be pinned")
		case errors.Is(err, service.ErrPinLimitExceeded):
			respondWithError(w, http.StatusConflict, "Pin limit reached for this lead")
		default:
			h.logger.Error("failed to toggle pin", zap.Error(err), zap.String("activity_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to toggle pin")
		}
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

// @Summary Recent activity feed
// @Description List the most recent activities across all leads
// @Tags Activities
// @Produce json
// @Param limit query int false "Max results" default(25)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/recent [get]
func (h *ActivityHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 25)

	activities, err := h.activityService.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list recent activities", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	respondJSON(w, http.StatusOK, activities)
}
