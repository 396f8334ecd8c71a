// Package commitgate answers whether a structural UI mutation may be
// committed right now, given a snapshot of the host environment.
package commitgate

import "github.com/renderguard/renderguard/internal/platform"

// Decision classifies how a structural mutation may proceed.
type Decision int

const (
	// Safe means the mutation may be committed normally.
	Safe Decision = iota

	// AllowLossyCommit means the mutation must use a commit path that may
	// lose state on process death, because UI state has already been saved.
	AllowLossyCommit

	// Unsafe means the mutation must be refused outright.
	Unsafe
)

// String returns the lowercase name of the decision.
func (d Decision) String() string {
	switch d {
	case Safe:
		return "safe"
	case AllowLossyCommit:
		return "allow_lossy_commit"
	case Unsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// Gate is a pure classifier over environment state snapshots.
type Gate struct{}

// New creates a Gate.
func New() *Gate {
	return &Gate{}
}

// Decide classifies whether a structural UI mutation may proceed. A destroyed
// or finishing scope refuses the mutation; a scope whose state is already
// saved permits only the lossy commit path.
func (g *Gate) Decide(state platform.EnvironmentState) Decision {
	if state.Destroyed || state.Finishing {
		return Unsafe
	}
	if state.StateSaved {
		return AllowLossyCommit
	}
	return Safe
}
