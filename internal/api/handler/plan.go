package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/api/models"
	"github.com/ottplanner/ottplanner/internal/api/response"
	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/internal/planner"
)

// engineRetryAfter is the Retry-After sent when the engine is unavailable, in seconds.
const engineRetryAfter = 30

// Planner plans trips. It is implemented by *planner.Service.
type Planner interface {
	ParseParams(v url.Values) planner.Params
	PlanTrip(ctx context.Context, p planner.Params) (*planner.Result, error)
}

// PlanHandler handles trip planning.
type PlanHandler struct {
	planner Planner
	logger  zerolog.Logger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(p Planner, logger zerolog.Logger) *PlanHandler {
	return &PlanHandler{planner: p, logger: logger}
}

// PlanTrip handles GET /v1/plan. A trip the engine could not plan is still a
// 200 response, carrying a trip error instead of a plan.
func (h *PlanHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	params := h.planner.ParseParams(r.URL.Query())

	result, err := h.planner.PlanTrip(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Encode(w, r, http.StatusOK, result, params.Pretty)
}

func (h *PlanHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var engineErr *otp.Error
	switch {
	case errors.Is(err, planner.ErrMissingPlace):
		response.BadRequest(w, r, "from and to are required", []models.FieldError{
			{Field: "from", Message: "origin place or coordinate", Code: "REQUIRED"},
			{Field: "to", Message: "destination place or coordinate", Code: "REQUIRED"},
		})
	case errors.Is(err, otp.ErrBadRequest):
		response.BadRequest(w, r, "the trip planning engine rejected the request parameters", nil)
	case errors.Is(err, otp.ErrRateLimitExceeded):
		response.TooManyRequests(w, r, "the trip planning engine is busy, please try again later")
	case errors.Is(err, otp.ErrInvalidResponse):
		h.logger.Error().Err(err).Msg("engine returned an unreadable response")
		response.BadGateway(w, r, "the trip planning engine returned an unreadable response")
	case errors.As(err, &engineErr) && engineErr.IsRetryable(),
		errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn().Err(err).Msg("engine unavailable")
		response.ServiceUnavailable(w, r, "the trip planning engine is temporarily unavailable", engineRetryAfter)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.
		h.logger.Debug().Err(err).Msg("plan request cancelled")
	default:
		h.logger.Error().Err(err).Msg("plan request failed")
		response.InternalError(w, r, "failed to plan trip")
	}
}
