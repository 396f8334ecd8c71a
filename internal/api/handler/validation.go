package handler

import (
	"net/http"

	"github.com/renderguard/renderguard/internal/api/response"
	"github.com/renderguard/renderguard/internal/catalog"
	"github.com/renderguard/renderguard/internal/glass"
)

// ValidationHandler serves pre-flight resource validation.
type ValidationHandler struct {
	validator   *catalog.Validator
	descriptors []catalog.Descriptor
	glass       *glass.Validator
}

// NewValidationHandler creates a ValidationHandler. The descriptor set is the
// application's full expected catalog; the glass validator covers its own
// fixed subset.
func NewValidationHandler(v *catalog.Validator, descriptors []catalog.Descriptor, g *glass.Validator) *ValidationHandler {
	return &ValidationHandler{
		validator:   v,
		descriptors: descriptors,
		glass:       g,
	}
}

// Validate runs a full catalog validation pass.
func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.validator.Validate(h.descriptors))
}

// ValidateGlass runs the glass subsystem validation pass.
func (h *ValidationHandler) ValidateGlass(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.glass.ValidateAll())
}
