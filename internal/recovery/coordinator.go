package recovery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/renderguard/renderguard/internal/commitgate"
	"github.com/renderguard/renderguard/internal/ledger"
	"github.com/renderguard/renderguard/internal/platform"
)

// Defaults for coordinator tuning.
const (
	DefaultMaxRetryAttempts = 3
	DefaultRetryDelay       = 500 * time.Millisecond
	DefaultBreakerTimeout   = 30 * time.Second
)

var errRetryReturnedNil = errors.New("retry produced no renderable")

// Config holds configuration for a Coordinator.
type Config struct {
	// Domain names this coordinator instance, e.g. "ui" or "glass".
	Domain string

	// Ladder is the tier ordering for this domain. Default: GenericLadder.
	Ladder Ladder

	// Ledger receives failure records and state snapshots. Optional.
	Ledger *ledger.Ledger

	// Gate and Env together decide whether mutating fallbacks may be
	// committed. When either is nil, mutations are assumed safe.
	Gate *commitgate.Gate
	Env  platform.EnvironmentStateFunc

	// KindOf maps a component id to its kind for fallback synthesis.
	// Default: KindFromID.
	KindOf func(componentID string) ComponentKind

	// Revalidate verifies a component directly during the system recovery
	// pass. Nil means the pass only resets retry counters.
	Revalidate func(componentID string) error

	// MaxRetryAttempts bounds retry-path invocations per component before
	// fallback synthesis takes over. Default: DefaultMaxRetryAttempts.
	MaxRetryAttempts int

	// RetryDelay is the delay for scheduled (not-attached) retries.
	// Default: DefaultRetryDelay.
	RetryDelay time.Duration

	// BreakerTimeout is the open-state duration of per-component retry
	// circuit breakers. Default: DefaultBreakerTimeout.
	BreakerTimeout time.Duration

	Metrics *Metrics
	Logger  zerolog.Logger
}

// componentEntry tracks one component's recovery state. The entry map
// supports concurrent upsert across component ids; calls for the same id are
// expected to be serialized by the UI dispatch context.
type componentEntry struct {
	retries atomic.Int32

	mu        sync.Mutex
	tier      Tier
	lastError string
	updatedAt time.Time
}

// Coordinator is the per-component degradation state machine. Construct one
// per domain; two instances (generic UI and glass) share this shape.
type Coordinator struct {
	domain     string
	ladder     Ladder
	ledger     *ledger.Ledger
	gate       *commitgate.Gate
	env        platform.EnvironmentStateFunc
	kindOf     func(string) ComponentKind
	revalidate func(string) error
	maxRetries int
	retryDelay time.Duration
	metrics    *Metrics
	logger     zerolog.Logger

	mu      sync.RWMutex
	entries map[string]*componentEntry

	breakers  *breakerSet
	destroyed atomic.Bool

	timerMu sync.Mutex
	timers  map[*time.Timer]struct{}
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(cfg Config) *Coordinator {
	ladder := cfg.Ladder
	if ladder.Len() == 0 {
		ladder = GenericLadder()
	}
	kindOf := cfg.KindOf
	if kindOf == nil {
		kindOf = KindFromID
	}
	maxRetries := cfg.MaxRetryAttempts
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetryAttempts
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = DefaultBreakerTimeout
	}

	return &Coordinator{
		domain:     cfg.Domain,
		ladder:     ladder,
		ledger:     cfg.Ledger,
		gate:       cfg.Gate,
		env:        cfg.Env,
		kindOf:     kindOf,
		revalidate: cfg.Revalidate,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		entries:    make(map[string]*componentEntry),
		breakers:   newBreakerSet(breakerTimeout),
		timers:     make(map[*time.Timer]struct{}),
	}
}

// Domain returns the coordinator's domain name.
func (c *Coordinator) Domain() string {
	return c.domain
}

// Ladder returns the coordinator's tier ordering.
func (c *Coordinator) Ladder() Ladder {
	return c.ladder
}

// OnFailure handles one reported component failure. It classifies the error,
// tracks the component's tier and retry count, optionally runs a retry
// strategy, and otherwise synthesizes a fallback representation.
// It always returns a usable Renderable and never panics through.
func (c *Coordinator) OnFailure(ctx context.Context, componentID string, err error, retry RetryFn) Renderable {
	if err == nil {
		err = errors.New("unspecified failure")
	}
	if c.destroyed.Load() {
		return StatusRenderable(componentID, c.ladder.Name(c.ladder.Bottom()), unavailableMessage(componentID))
	}

	class := ledger.Classify(err)
	strategy := strategyFor(err)
	entry := c.entry(componentID)
	attempt := int(entry.retries.Add(1))

	entry.mu.Lock()
	current := entry.tier
	entry.mu.Unlock()
	next := c.ladder.Degrade(current)

	var recordID string
	if c.ledger != nil {
		recordID = c.ledger.RecordFailure(ctx, err, c.domain, componentID)
	}
	c.metrics.recordFailure(c.domain, string(class))

	c.logger.Warn().
		Str("component_id", componentID).
		Str("classification", string(class)).
		Str("strategy", string(strategy)).
		Int("attempt", attempt).
		Str("tier", c.ladder.Name(current)).
		Str("next_tier", c.ladder.Name(next)).
		Err(err).
		Msg("component failure")

	// A mutating fallback substitution needs a committable UI tree. When the
	// gate refuses, skip retries entirely and return an inert status message.
	decision := commitgate.Safe
	if c.gate != nil && c.env != nil {
		decision = c.gate.Decide(c.env())
	}
	if decision == commitgate.Unsafe {
		c.applyTier(entry, componentID, next, err, class)
		c.recordAttempt(recordID, strategy, false, "unsafe to mutate UI tree")
		c.metrics.recordFallback(c.domain, c.ladder.Name(next))
		return StatusRenderable(componentID, c.ladder.Name(next), unavailableMessage(componentID))
	}

	if retry != nil && attempt <= c.maxRetries {
		switch strategy {
		case StrategyStateLoss, StrategyIllegalState:
			// Retry immediately; the lossy commit path is acceptable here.
			if res := c.executeRetry(componentID, retry); res != nil {
				c.metrics.recordRetry(c.domain, strategy, true)
				c.recordAttempt(recordID, strategy, true, "immediate retry succeeded")
				c.markRecovered(entry, componentID)
				return *res
			}
			c.metrics.recordRetry(c.domain, strategy, false)
			c.recordAttempt(recordID, strategy, false, "immediate retry failed")

		case StrategyNotAttached:
			c.scheduleRetry(componentID, recordID, strategy, retry)

		case StrategyLifecycle:
			c.forceCleanup(componentID)
			c.recordAttempt(recordID, strategy, false, "registration cleaned up; failed for this cycle")

		case StrategyUnknown:
			// No retry; fall through to fallback synthesis.
		}
	}

	c.applyTier(entry, componentID, next, err, class)
	c.metrics.recordFallback(c.domain, c.ladder.Name(next))
	return FallbackFor(c.kindOf(componentID), componentID, c.ladder.Name(next))
}

// State returns the tracked state of a component. A component never tracked
// is implicitly at the top tier.
func (c *Coordinator) State(componentID string) (ComponentState, bool) {
	c.mu.RLock()
	entry, ok := c.entries[componentID]
	c.mu.RUnlock()
	if !ok {
		return ComponentState{}, false
	}
	return c.snapshot(componentID, entry), true
}

// States returns a read-only snapshot of every tracked component.
func (c *Coordinator) States() []ComponentState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ComponentState, 0, len(c.entries))
	for id, entry := range c.entries {
		out = append(out, c.snapshot(id, entry))
	}
	return out
}

// RecoveryResult summarizes one system recovery pass.
type RecoveryResult struct {
	Attempted int `json:"attempted"`
	Recovered int `json:"recovered"`
	Remaining int `json:"remaining"`
}

// AttemptSystemRecovery resets retry counters for every recoverable component
// and attempts to move each back to the top tier via direct re-validation.
// Components that fail re-validation keep their current tier, so system
// health never regresses from this call.
func (c *Coordinator) AttemptSystemRecovery(ctx context.Context) RecoveryResult {
	var result RecoveryResult
	if c.destroyed.Load() {
		return result
	}

	c.mu.RLock()
	candidates := make([]string, 0, len(c.entries))
	for id, entry := range c.entries {
		entry.mu.Lock()
		recoverable := entry.tier != c.ladder.Bottom()
		entry.mu.Unlock()
		if recoverable {
			candidates = append(candidates, id)
		}
	}
	c.mu.RUnlock()

	for _, id := range candidates {
		c.mu.RLock()
		entry, ok := c.entries[id]
		c.mu.RUnlock()
		if !ok {
			continue
		}

		entry.retries.Store(0)
		result.Attempted++

		if c.revalidate == nil {
			result.Remaining++
			continue
		}

		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 50 * time.Millisecond
		bo.MaxElapsedTime = 0

		err := backoff.Retry(
			func() error { return c.revalidate(id) },
			backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx),
		)
		if err != nil {
			// Unverified components keep their tier.
			result.Remaining++
			continue
		}

		c.prune(id)
		result.Recovered++
		c.logger.Info().
			Str("component_id", id).
			Msg("component recovered to top tier")
	}

	c.metrics.recordRecovery(c.domain, result.Recovered)
	return result
}

// Close tears the coordinator down: pending scheduled retries become no-ops
// and the component map clears under one flag flip.
func (c *Coordinator) Close() {
	if !c.destroyed.CompareAndSwap(false, true) {
		return
	}

	c.timerMu.Lock()
	for t := range c.timers {
		t.Stop()
	}
	c.timers = make(map[*time.Timer]struct{})
	c.timerMu.Unlock()

	c.mu.Lock()
	c.entries = make(map[string]*componentEntry)
	c.mu.Unlock()
}

// entry returns the component's entry, creating it at the top tier on first
// observed failure.
func (c *Coordinator) entry(componentID string) *componentEntry {
	c.mu.RLock()
	entry, ok := c.entries[componentID]
	c.mu.RUnlock()
	if ok {
		return entry
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok = c.entries[componentID]; ok {
		return entry
	}
	entry = &componentEntry{tier: c.ladder.Top(), updatedAt: time.Now()}
	c.entries[componentID] = entry
	return entry
}

func (c *Coordinator) snapshot(componentID string, entry *componentEntry) ComponentState {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return ComponentState{
		ComponentID: componentID,
		Tier:        entry.tier,
		TierName:    c.ladder.Name(entry.tier),
		LastError:   entry.lastError,
		RetryCount:  int(entry.retries.Load()),
		Timestamp:   entry.updatedAt,
		Recoverable: entry.tier != c.ladder.Bottom(),
	}
}

// applyTier commits a degradation step and mirrors it into the ledger.
func (c *Coordinator) applyTier(entry *componentEntry, componentID string, next Tier, err error, class ledger.Classification) {
	entry.mu.Lock()
	entry.tier = next
	entry.lastError = err.Error()
	entry.updatedAt = time.Now()
	entry.mu.Unlock()

	if c.ledger != nil {
		c.ledger.UpdateComponentState(componentID, c.ladder.Name(next), string(class))
	}
}

// markRecovered resets the retry counter after a successful retry. A
// component recovered while still at the top tier is pruned entirely.
func (c *Coordinator) markRecovered(entry *componentEntry, componentID string) {
	entry.retries.Store(0)

	entry.mu.Lock()
	top := entry.tier == c.ladder.Top()
	entry.mu.Unlock()

	if top {
		c.prune(componentID)
	}
}

// prune removes a component that recovered to the top tier.
func (c *Coordinator) prune(componentID string) {
	c.mu.Lock()
	delete(c.entries, componentID)
	c.mu.Unlock()

	c.breakers.drop(componentID)
	if c.ledger != nil {
		c.ledger.RemoveComponentState(componentID)
	}
}

// executeRetry runs the caller's retry closure through the component's
// circuit breaker. Returns nil when the retry fails or the circuit is open.
func (c *Coordinator) executeRetry(componentID string, retry RetryFn) *Renderable {
	cb := c.breakers.get(componentID)
	res, err := cb.Execute(func() (*Renderable, error) {
		if r := retry(); r != nil {
			return r, nil
		}
		return nil, errRetryReturnedNil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Debug().
				Str("component_id", componentID).
				Msg("retry circuit open, skipping retry")
		}
		return nil
	}
	return res
}

// scheduleRetry re-enters the retry path after the configured delay. The
// scheduled work is a no-op if the coordinator was torn down in the interim.
func (c *Coordinator) scheduleRetry(componentID, recordID string, strategy StrategyKind, retry RetryFn) {
	if c.destroyed.Load() {
		return
	}

	// timer is assigned and registered while timerMu is held; the callback
	// reads it under the same lock, so a fast fire cannot observe it unset.
	var timer *time.Timer
	fire := func() {
		c.timerMu.Lock()
		delete(c.timers, timer)
		c.timerMu.Unlock()

		if c.destroyed.Load() {
			return
		}

		res := c.executeRetry(componentID, retry)
		success := res != nil
		c.metrics.recordRetry(c.domain, strategy, success)
		c.recordAttempt(recordID, strategy, success, "delayed retry")
		if !success {
			return
		}

		c.mu.RLock()
		entry, ok := c.entries[componentID]
		c.mu.RUnlock()
		if !ok {
			return
		}

		entry.retries.Store(0)
		entry.mu.Lock()
		entry.tier = c.ladder.Promote(entry.tier)
		entry.updatedAt = time.Now()
		tier := entry.tier
		entry.mu.Unlock()

		if tier == c.ladder.Top() {
			c.prune(componentID)
			return
		}
		if c.ledger != nil {
			c.ledger.UpdateComponentState(componentID, c.ladder.Name(tier), "delayed retry succeeded")
		}
	}

	c.timerMu.Lock()
	timer = time.AfterFunc(c.retryDelay, fire)
	c.timers[timer] = struct{}{}
	c.timerMu.Unlock()
}

// forceCleanup discards the component's prior registration state so the next
// cycle starts clean.
func (c *Coordinator) forceCleanup(componentID string) {
	c.breakers.drop(componentID)
	c.logger.Debug().
		Str("component_id", componentID).
		Msg("component registration cleaned up")
}

func (c *Coordinator) recordAttempt(recordID string, strategy StrategyKind, success bool, detail string) {
	if c.ledger == nil || recordID == "" {
		return
	}
	c.ledger.RecordRecoveryAttempt(recordID, string(strategy), success, detail)
}
