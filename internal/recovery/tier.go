// Package recovery contains the per-component degradation state machine: it
// classifies failures, decides a recovery strategy, tracks bounded retries,
// and synthesizes fallback representations when retries are exhausted.
package recovery

import "time"

// Tier is an index into a Ladder, ordered from full capability (0) downward.
type Tier int

// Ladder is a totally ordered set of degradation tiers for one domain.
// Degradation steps exactly one tier down and is idempotent at the bottom.
type Ladder struct {
	names []string
}

// NewLadder creates a ladder from tier names ordered top (most capable) to
// bottom (least capable).
func NewLadder(names ...string) Ladder {
	return Ladder{names: names}
}

// GenericLadder is the ordering for generic UI components.
func GenericLadder() Ladder {
	return NewLadder("normal", "reduced", "fallback", "emergency", "failed")
}

// GlassLadder is the ordering for the glass visual subsystem.
func GlassLadder() Ladder {
	return NewLadder("full", "reduced", "minimal", "none")
}

// Top returns the most capable tier.
func (l Ladder) Top() Tier {
	return 0
}

// Bottom returns the least capable tier.
func (l Ladder) Bottom() Tier {
	return Tier(len(l.names) - 1)
}

// Degrade steps exactly one tier down; at the bottom it is idempotent.
func (l Ladder) Degrade(t Tier) Tier {
	if t >= l.Bottom() {
		return l.Bottom()
	}
	return t + 1
}

// Promote steps exactly one tier up; at the top it is idempotent.
func (l Ladder) Promote(t Tier) Tier {
	if t <= l.Top() {
		return l.Top()
	}
	return t - 1
}

// Name returns the tier's name, or "unknown" outside the ladder.
func (l Ladder) Name(t Tier) string {
	if t < 0 || int(t) >= len(l.names) {
		return "unknown"
	}
	return l.names[t]
}

// Len returns the number of tiers.
func (l Ladder) Len() int {
	return len(l.names)
}

// ComponentState is a read-only view of one component's recovery state.
type ComponentState struct {
	ComponentID string    `json:"component_id"`
	Tier        Tier      `json:"tier"`
	TierName    string    `json:"tier_name"`
	LastError   string    `json:"last_error,omitempty"`
	RetryCount  int       `json:"retry_count"`
	Timestamp   time.Time `json:"timestamp"`
	Recoverable bool      `json:"recoverable"`
}
