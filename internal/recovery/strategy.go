package recovery

import (
	"errors"
	"strings"

	"github.com/renderguard/renderguard/internal/platform"
)

// StrategyKind selects how a failure is retried. Fixed mapping:
//
//	StateLoss      retry immediately, permitting a lossy commit
//	NotAttached    schedule a delayed retry (RetryDelay, default 500ms)
//	Lifecycle      force-cleanup prior registration, failed for this cycle
//	IllegalState   as StateLoss
//	Unknown        no retry, straight to fallback synthesis
type StrategyKind string

const (
	StrategyStateLoss    StrategyKind = "state_loss"
	StrategyNotAttached  StrategyKind = "not_attached"
	StrategyLifecycle    StrategyKind = "lifecycle_error"
	StrategyIllegalState StrategyKind = "illegal_state"
	StrategyUnknown      StrategyKind = "unknown"
)

// strategyFor picks the retry strategy for an error. Typed platform errors
// win over message heuristics.
func strategyFor(err error) StrategyKind {
	if err == nil {
		return StrategyUnknown
	}

	switch {
	case errors.Is(err, platform.ErrStateSaved):
		return StrategyStateLoss
	case errors.Is(err, platform.ErrNotAttached):
		return StrategyNotAttached
	case errors.Is(err, platform.ErrScopeDestroyed):
		return StrategyLifecycle
	case errors.Is(err, platform.ErrIllegalState):
		return StrategyIllegalState
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "state saved"), strings.Contains(msg, "state loss"):
		return StrategyStateLoss
	case strings.Contains(msg, "not attached"), strings.Contains(msg, "not yet attached"):
		return StrategyNotAttached
	case strings.Contains(msg, "lifecycle"), strings.Contains(msg, "destroyed"):
		return StrategyLifecycle
	case strings.Contains(msg, "illegal state"):
		return StrategyIllegalState
	}
	return StrategyUnknown
}
