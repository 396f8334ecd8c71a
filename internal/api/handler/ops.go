// Package handler implements the status service HTTP handlers.
package handler

import (
	"net/http"
	"time"

	"github.com/renderguard/renderguard/internal/api/response"
)

// OpsHandler serves liveness and build info.
type OpsHandler struct {
	version   string
	buildTime string
	startedAt time.Time
}

// NewOpsHandler creates an OpsHandler.
func NewOpsHandler(version, buildTime string) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		startedAt: time.Now(),
	}
}

// HealthCheck reports process liveness.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]string{
		"status":     "ok",
		"version":    h.version,
		"build_time": h.buildTime,
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
	})
}
