package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/api/models"
	"github.com/ottplanner/ottplanner/internal/api/response"
	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/internal/transitindex"
)

// TransitIndex looks up routes. It is implemented by *transitindex.Service.
type TransitIndex interface {
	Routes(ctx context.Context) ([]transitindex.Route, error)
	StopRoutes(ctx context.Context, stop otp.EntityID) ([]transitindex.Route, error)
}

// TransitIndexHandler handles the transit index endpoints.
type TransitIndexHandler struct {
	index  TransitIndex
	logger zerolog.Logger
}

// NewTransitIndexHandler creates a new TransitIndexHandler.
func NewTransitIndexHandler(index TransitIndex, logger zerolog.Logger) *TransitIndexHandler {
	return &TransitIndexHandler{index: index, logger: logger}
}

// ListRoutes handles GET /v1/ti/routes.
func (h *TransitIndexHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.index.Routes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Encode(w, r, http.StatusOK, models.NewRouteList(routes), r.URL.Query().Has("pretty"))
}

// ListStopRoutes handles GET /v1/ti/stops/{stop}/routes, where stop is AGENCY:ID.
func (h *TransitIndexHandler) ListStopRoutes(w http.ResponseWriter, r *http.Request) {
	stop, err := transitindex.ParseStop(chi.URLParam(r, "stop"))
	if err != nil {
		response.BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: "stop", Message: "expected AGENCY:ID, e.g. TriMet:8989", Code: "INVALID_FORMAT"},
		})
		return
	}

	routes, err := h.index.StopRoutes(r.Context(), stop)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Encode(w, r, http.StatusOK, models.NewRouteList(routes), r.URL.Query().Has("pretty"))
}

func (h *TransitIndexHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, transitindex.ErrStopNotFound):
		response.NotFound(w, r, "stop not found")
	case errors.Is(err, transitindex.ErrProviderUnavailable):
		h.logger.Warn().Err(err).Msg("transit index unavailable")
		response.ServiceUnavailable(w, r, "the transit index is temporarily unavailable", engineRetryAfter)
	default:
		h.logger.Error().Err(err).Msg("transit index lookup failed")
		response.InternalError(w, r, "failed to look up routes")
	}
}
