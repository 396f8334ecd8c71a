package ledger

import (
	"errors"
	"strings"

	"github.com/renderguard/renderguard/internal/platform"
)

// Classification is the closed failure taxonomy. Extend only by adding a new
// classification here and a matching retry strategy in the coordinator.
type Classification string

const (
	// ClassResourceNotFound covers resources that fail to resolve or load.
	ClassResourceNotFound Classification = "resource_not_found"

	// ClassFragmentLifecycle covers the environment being torn down
	// mid-operation.
	ClassFragmentLifecycle Classification = "fragment_lifecycle_error"

	// ClassCustomComponent covers a specific renderable failing to construct.
	ClassCustomComponent Classification = "custom_component_failure"

	// ClassMemory covers allocation failures.
	ClassMemory Classification = "memory_error"

	// ClassDomainSpecific covers failures tied to a named feature area.
	ClassDomainSpecific Classification = "domain_specific_error"

	// ClassUnknown covers everything else.
	ClassUnknown Classification = "unknown"
)

// domainKeywords tie an error message to the glass feature area.
var domainKeywords = []string{"glass", "blur", "translucen", "overlay", "sheen"}

// Classify maps an error into the failure taxonomy. Typed errors from the
// platform boundary win over message heuristics.
func Classify(err error) Classification {
	if err == nil {
		return ClassUnknown
	}

	var resErr *platform.ResourceError
	if errors.As(err, &resErr) {
		return ClassResourceNotFound
	}
	if errors.Is(err, platform.ErrScopeDestroyed) || errors.Is(err, platform.ErrNotAttached) {
		return ClassFragmentLifecycle
	}
	var compErr *platform.ComponentError
	if errors.As(err, &compErr) {
		return ClassCustomComponent
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "out of memory"),
		strings.Contains(msg, "oom"),
		strings.Contains(msg, "allocation failed"):
		return ClassMemory
	case strings.Contains(msg, "resource"), strings.Contains(msg, "drawable"):
		return ClassResourceNotFound
	case strings.Contains(msg, "lifecycle"),
		strings.Contains(msg, "fragment"),
		strings.Contains(msg, "detached"):
		return ClassFragmentLifecycle
	}
	for _, kw := range domainKeywords {
		if strings.Contains(msg, kw) {
			return ClassDomainSpecific
		}
	}
	return ClassUnknown
}
