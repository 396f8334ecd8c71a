package handler

import (
	"net/http"

	"github.com/renderguard/renderguard/internal/api/response"
	"github.com/renderguard/renderguard/internal/ledger"
)

// DiagnosticsHandler serves the diagnostic ledger's report.
type DiagnosticsHandler struct {
	ledger *ledger.Ledger
}

// NewDiagnosticsHandler creates a DiagnosticsHandler.
func NewDiagnosticsHandler(l *ledger.Ledger) *DiagnosticsHandler {
	return &DiagnosticsHandler{ledger: l}
}

// Report returns the current diagnostic report.
func (h *DiagnosticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.ledger.Report())
}
