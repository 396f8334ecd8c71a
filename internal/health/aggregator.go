// Package health derives a single system-wide tier from the set of
// per-component recovery states. Health is computed on demand and never
// cached beyond the caller's use.
package health

import "github.com/renderguard/renderguard/internal/recovery"

// SystemTier is the system-wide health classification.
type SystemTier int

const (
	TierNormal SystemTier = iota
	TierDegraded
	TierEmergency
	TierCritical
)

// String returns the lowercase name of the tier.
func (t SystemTier) String() string {
	switch t {
	case TierNormal:
		return "normal"
	case TierDegraded:
		return "degraded"
	case TierEmergency:
		return "emergency"
	case TierCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Thresholds are the proportions that trip each system tier. They are tuning
// parameters, not correctness-critical values, and so stay configurable.
type Thresholds struct {
	// CriticalFailedRatio trips TierCritical when the fraction of failed
	// (bottom-tier) components exceeds it.
	CriticalFailedRatio float64

	// EmergencyAtRiskRatio trips TierEmergency when the fraction of
	// failed-or-worse components (bottom tier and the tier above it)
	// exceeds it.
	EmergencyAtRiskRatio float64

	// DegradedRatio trips TierDegraded when the fraction of any degraded
	// component exceeds it.
	DegradedRatio float64
}

// DefaultThresholds returns the stock tuning: 50% / 30% / 10%.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalFailedRatio:  0.5,
		EmergencyAtRiskRatio: 0.3,
		DegradedRatio:        0.1,
	}
}

// SystemHealth is the derived system-wide view. It is never stored.
type SystemHealth struct {
	Tier             SystemTier `json:"-"`
	TierName         string     `json:"tier"`
	Total            int        `json:"total"`
	Normal           int        `json:"normal"`
	Degraded         int        `json:"degraded"`
	Failed           int        `json:"failed"`
	HealthPercentage float64    `json:"health_percentage"`
	CanRecover       bool       `json:"can_recover"`
}

// Aggregate computes system health from a component-state snapshot taken
// against the given ladder. An empty snapshot is a healthy system (100%).
// Untracked components are implicitly at the top tier and contribute nothing
// to the snapshot by construction.
func Aggregate(states []recovery.ComponentState, ladder recovery.Ladder, th Thresholds) SystemHealth {
	h := SystemHealth{
		Tier:             TierNormal,
		HealthPercentage: 100,
	}

	bottom := ladder.Bottom()
	nearBottom := ladder.Promote(bottom)

	atRisk := 0
	for _, s := range states {
		h.Total++
		switch {
		case s.Tier == ladder.Top():
			h.Normal++
		case s.Tier == bottom:
			h.Failed++
			atRisk++
		default:
			h.Degraded++
			if s.Tier == nearBottom {
				atRisk++
			}
		}
		if s.Recoverable && s.Tier != ladder.Top() {
			h.CanRecover = true
		}
	}

	if h.Total > 0 {
		h.HealthPercentage = float64(h.Normal) / float64(h.Total) * 100

		total := float64(h.Total)
		switch {
		case float64(h.Failed)/total > th.CriticalFailedRatio:
			h.Tier = TierCritical
		case float64(atRisk)/total > th.EmergencyAtRiskRatio:
			h.Tier = TierEmergency
		case float64(h.Degraded+h.Failed)/total > th.DegradedRatio:
			h.Tier = TierDegraded
		}
	}

	h.TierName = h.Tier.String()
	return h
}
