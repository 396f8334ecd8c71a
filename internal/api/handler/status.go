package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/renderguard/renderguard/internal/api/response"
	"github.com/renderguard/renderguard/internal/health"
	"github.com/renderguard/renderguard/internal/recovery"
)

// StatusHandler serves system health and triggers recovery passes.
type StatusHandler struct {
	coordinators []*recovery.Coordinator
	thresholds   health.Thresholds
	logger       zerolog.Logger
}

// NewStatusHandler creates a StatusHandler over one coordinator per domain.
func NewStatusHandler(coordinators []*recovery.Coordinator, thresholds health.Thresholds, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		coordinators: coordinators,
		thresholds:   thresholds,
		logger:       logger,
	}
}

// SystemStatus reports derived health per domain.
func (h *StatusHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	domains := make(map[string]health.SystemHealth, len(h.coordinators))
	for _, c := range h.coordinators {
		domains[c.Domain()] = health.Aggregate(c.States(), c.Ladder(), h.thresholds)
	}
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"domains": domains,
	})
}

// TriggerRecovery runs a system recovery pass on every domain.
func (h *StatusHandler) TriggerRecovery(w http.ResponseWriter, r *http.Request) {
	results := make(map[string]recovery.RecoveryResult, len(h.coordinators))
	for _, c := range h.coordinators {
		result := c.AttemptSystemRecovery(r.Context())
		results[c.Domain()] = result
		h.logger.Info().
			Str("domain", c.Domain()).
			Int("attempted", result.Attempted).
			Int("recovered", result.Recovered).
			Int("remaining", result.Remaining).
			Msg("system recovery pass completed")
	}
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}
