// Package handler provides HTTP handlers for the planner API.
package handler

import (
	"net/http"
	"time"

	"github.com/ottplanner/ottplanner/internal/api/models"
	"github.com/ottplanner/ottplanner/internal/api/response"
	"github.com/ottplanner/ottplanner/internal/provider/resilience"
)

// LoadTracker reports when a subsystem last loaded its data. It is implemented by *fares.Service.
type LoadTracker interface {
	LoadedAt() (time.Time, error)
}

// OpsConfig holds configuration for the ops handler.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Registry tracks upstream provider health (optional).
	Registry *resilience.Registry

	// Fares reports the fare table load state (optional).
	Fares LoadTracker
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	fares     LoadTracker
	now       func() time.Time
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		registry:  cfg.Registry,
		fares:     cfg.Fares,
		now:       time.Now,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. The service is not ready while
// any upstream provider has an open circuit.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.providerStatus()
	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, models.Health{
		Status: status,
		Time:   models.Timestamp(h.now()),
	})
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     h.providerStatus(),
		Time:       models.Timestamp(h.now()),
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, p := range h.registry.GetAllHealth() {
			ps := models.ProviderStatus{
				Provider:     p.Name,
				Status:       healthStatus(p.Status()),
				CircuitState: p.CircuitState.String(),
			}
			if p.LastSuccessAt != nil {
				ts := models.Timestamp(*p.LastSuccessAt)
				ps.LastSuccessAt = &ts
			}
			if p.LastFailureAt != nil {
				ts := models.Timestamp(*p.LastFailureAt)
				ps.LastFailureAt = &ts
			}
			if p.LastError != "" {
				msg := p.LastError
				ps.Message = &msg
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	if h.fares != nil {
		fareStatus := models.SubsystemStatus{Name: "fare-table", Status: models.HealthStatusOK}
		if _, err := h.fares.LoadedAt(); err != nil {
			detail := err.Error()
			fareStatus.Status = models.HealthStatusDegraded
			fareStatus.Detail = &detail
			if status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
		}
		status.Subsystems = append(status.Subsystems, fareStatus)
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) providerStatus() models.HealthStatus {
	if h.registry == nil || h.registry.ProviderCount() == 0 {
		return models.HealthStatusOK
	}
	return healthStatus(h.registry.Overall())
}

func healthStatus(s resilience.Status) models.HealthStatus {
	switch s {
	case resilience.StatusUnhealthy:
		return models.HealthStatusFail
	case resilience.StatusDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
