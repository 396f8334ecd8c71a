package catalog

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/renderguard/renderguard/internal/platform"
)

// Action is the validator's recommendation for how the caller should proceed.
type Action int

const (
	// ProceedNormal means every resource is available.
	ProceedNormal Action = iota

	// UseFallbackUI means some resources are missing but all have fallbacks.
	UseFallbackUI

	// UseEmergencyUI means structural layout resources are missing.
	UseEmergencyUI

	// Abort means resources are missing with no fallback path.
	Abort
)

// MarshalText renders the action by name.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// String returns the lowercase name of the action.
func (a Action) String() string {
	switch a {
	case ProceedNormal:
		return "proceed_normal"
	case UseFallbackUI:
		return "use_fallback_ui"
	case UseEmergencyUI:
		return "use_emergency_ui"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// Report is the outcome of a single validation pass. It is created fresh on
// each call and never mutated after construction.
type Report struct {
	// MissingByKind maps each kind to the names that failed to resolve or load.
	MissingByKind map[Kind][]string `json:"missing_by_kind"`

	// FallbacksAvailable counts the missing resources that have a fallback.
	FallbacksAvailable int `json:"fallbacks_available"`

	// AllAvailable reports whether nothing was missing.
	AllAvailable bool `json:"all_available"`

	// RecommendedAction is derived from the missing set (see Validate).
	RecommendedAction Action `json:"recommended_action"`
}

// MissingCount returns the total number of missing resources across kinds.
func (r *Report) MissingCount() int {
	n := 0
	for _, names := range r.MissingByKind {
		n += len(names)
	}
	return n
}

// MissingNames returns every missing resource name across kinds.
func (r *Report) MissingNames() []string {
	names := make([]string, 0, r.MissingCount())
	for _, k := range Kinds {
		names = append(names, r.MissingByKind[k]...)
	}
	return names
}

// ValidatorConfig holds configuration for a Validator.
type ValidatorConfig struct {
	// Resolver resolves resources against the live environment. Required.
	Resolver platform.Resolver

	// Fallbacks maps resource names to replacement resource names. Used only
	// to derive the recommended action; the mapping itself is owned by the
	// domain validator.
	Fallbacks map[string]string

	Logger zerolog.Logger
}

// Validator checks whether named resources resolve and load. A single pass is
// authoritative for the calling instant; there are no retries at this layer.
type Validator struct {
	resolver  platform.Resolver
	fallbacks map[string]string
	logger    zerolog.Logger
}

// NewValidator creates a new Validator.
func NewValidator(cfg ValidatorConfig) *Validator {
	return &Validator{
		resolver:  cfg.Resolver,
		fallbacks: cfg.Fallbacks,
		logger:    cfg.Logger,
	}
}

// Validate attempts a resolve-and-load for each descriptor. Both "resolve
// failed" and "resolve succeeded but load threw" count as missing. The pass is
// side-effect-free and safe to call repeatedly and concurrently.
func (v *Validator) Validate(descriptors []Descriptor) *Report {
	report := &Report{
		MissingByKind: make(map[Kind][]string),
	}

	for _, d := range descriptors {
		if err := v.resolveAndLoad(d); err != nil {
			report.MissingByKind[d.Kind] = append(report.MissingByKind[d.Kind], d.Name)
			v.logger.Debug().
				Str("resource", d.Name).
				Str("kind", d.Kind.String()).
				Err(err).
				Msg("resource unavailable")
		}
	}

	missing := report.MissingCount()
	report.AllAvailable = missing == 0

	for _, name := range report.MissingNames() {
		if _, ok := v.fallbacks[name]; ok {
			report.FallbacksAvailable++
		}
	}

	report.RecommendedAction = recommend(report)
	return report
}

// resolveAndLoad resolves a descriptor and loads it, converting load panics
// into errors so a throwing resource is indistinguishable from a missing one.
func (v *Validator) resolveAndLoad(d Descriptor) (err error) {
	res, err := v.resolver.Resolve(d.Name)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = &platform.ResourceError{Name: d.Name, Err: fmt.Errorf("load panicked: %v", r)}
		}
	}()

	if err := res.Load(); err != nil {
		return &platform.ResourceError{Name: d.Name, Err: err}
	}
	return nil
}

// recommend derives the action from the missing set:
// ProceedNormal iff nothing is missing; UseEmergencyUI iff layout resources
// are missing (structural, no fallback possible); UseFallbackUI iff every
// missing resource has a fallback; Abort otherwise.
func recommend(r *Report) Action {
	missing := r.MissingCount()
	if missing == 0 {
		return ProceedNormal
	}
	if len(r.MissingByKind[KindLayout]) > 0 {
		return UseEmergencyUI
	}
	if r.FallbacksAvailable == missing {
		return UseFallbackUI
	}
	return Abort
}
