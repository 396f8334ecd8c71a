package glass

import (
	"github.com/rs/zerolog"

	"github.com/renderguard/renderguard/internal/catalog"
	"github.com/renderguard/renderguard/internal/platform"
)

// Tier is the capability level the glass subsystem should render at, ordered
// from full capability down to disabled.
type Tier int

const (
	// TierFull renders live blur and layered translucency.
	TierFull Tier = iota

	// TierReduced renders static translucency without live blur.
	TierReduced

	// TierMinimal renders solid surfaces with glass-like outlines.
	TierMinimal

	// TierNone disables the glass treatment entirely.
	TierNone
)

// MarshalText renders the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// String returns the lowercase name of the tier.
func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierReduced:
		return "reduced"
	case TierMinimal:
		return "minimal"
	case TierNone:
		return "none"
	default:
		return "unknown"
	}
}

// Missing-percentage boundaries for tier selection.
const (
	reducedMaxMissingPct = 25.0
	minimalMaxMissingPct = 50.0
)

// DomainReport aggregates per-kind validation for the glass resource set.
type DomainReport struct {
	// ByKind holds one sub-report per resource kind.
	ByKind map[catalog.Kind]*catalog.Report `json:"by_kind"`

	// MissingPercentage is the fraction of the whole catalog that is missing,
	// in percent.
	MissingPercentage float64 `json:"missing_percentage"`

	// RecommendedTier is derived from MissingPercentage and the platform
	// capability probe.
	RecommendedTier Tier `json:"recommended_tier"`
}

// ValidatorConfig holds configuration for the glass Validator.
type ValidatorConfig struct {
	// Resolver resolves resources against the live environment. Required.
	Resolver platform.Resolver

	// Probe reports whether the platform supports advanced rendering effects.
	// Required; without the capability the subsystem is capped at TierReduced.
	Probe platform.CapabilityProbe

	Logger zerolog.Logger
}

// Validator validates the glass subsystem's fixed resource set.
type Validator struct {
	inner  *catalog.Validator
	probe  platform.CapabilityProbe
	logger zerolog.Logger
}

// NewValidator creates a glass subsystem validator.
func NewValidator(cfg ValidatorConfig) *Validator {
	return &Validator{
		inner: catalog.NewValidator(catalog.ValidatorConfig{
			Resolver:  cfg.Resolver,
			Fallbacks: Fallbacks(),
			Logger:    cfg.Logger,
		}),
		probe:  cfg.Probe,
		logger: cfg.Logger,
	}
}

// ValidateAll validates the full glass catalog and recommends a tier.
//
// Tier policy: if the platform lacks advanced rendering, at most TierReduced
// regardless of resource completeness; otherwise 0% missing means TierFull,
// up to 25% TierReduced, up to 50% TierMinimal, and beyond that TierNone.
func (v *Validator) ValidateAll() *DomainReport {
	all := Catalog()

	byKind := make(map[catalog.Kind]*catalog.Report, len(catalog.Kinds))
	missing := 0
	for _, kind := range catalog.Kinds {
		var subset []catalog.Descriptor
		for _, d := range all {
			if d.Kind == kind {
				subset = append(subset, d)
			}
		}
		report := v.inner.Validate(subset)
		byKind[kind] = report
		missing += report.MissingCount()
	}

	pct := float64(missing) / float64(len(all)) * 100

	report := &DomainReport{
		ByKind:            byKind,
		MissingPercentage: pct,
		RecommendedTier:   v.tierFor(pct),
	}

	v.logger.Debug().
		Float64("missing_pct", pct).
		Str("tier", report.RecommendedTier.String()).
		Msg("glass catalog validated")

	return report
}

func (v *Validator) tierFor(missingPct float64) Tier {
	advanced := v.probe != nil && v.probe()

	var tier Tier
	switch {
	case missingPct == 0:
		tier = TierFull
	case missingPct <= reducedMaxMissingPct:
		tier = TierReduced
	case missingPct <= minimalMaxMissingPct:
		tier = TierMinimal
	default:
		tier = TierNone
	}

	// Without advanced rendering the subsystem never exceeds TierReduced.
	if !advanced && tier < TierReduced {
		tier = TierReduced
	}
	return tier
}

// FallbackFor returns the replacement resource for a glass catalog entry.
// The mapping is exhaustive over the catalog; asking for a name outside the
// catalog returns false.
func (v *Validator) FallbackFor(name string) (string, bool) {
	replacement, ok := Fallbacks()[name]
	return replacement, ok
}
