package recovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renderguard/renderguard/internal/commitgate"
	"github.com/renderguard/renderguard/internal/ledger"
	"github.com/renderguard/renderguard/internal/platform"
)

func newTestCoordinator(t *testing.T, cfg Config) *Coordinator {
	t.Helper()
	if cfg.Domain == "" {
		cfg.Domain = "ui"
	}
	cfg.Logger = zerolog.Nop()
	c := NewCoordinator(cfg)
	t.Cleanup(c.Close)
	return c
}

func TestOnFailure_DegradesOneTierPerFailure(t *testing.T) {
	c := newTestCoordinator(t, Config{})
	ctx := context.Background()

	wantTiers := []string{"reduced", "fallback", "emergency", "failed"}
	for i, want := range wantTiers {
		r := c.OnFailure(ctx, "card.summary", errors.New("boom"), nil)
		assert.Equal(t, want, r.Tier)

		state, ok := c.State("card.summary")
		require.True(t, ok)
		assert.Equal(t, want, state.TierName)
		assert.Equal(t, i+1, state.RetryCount)
	}

	state, _ := c.State("card.summary")
	assert.False(t, state.Recoverable)

	// Degradation is idempotent at the bottom tier.
	r := c.OnFailure(ctx, "card.summary", errors.New("boom"), nil)
	assert.Equal(t, "failed", r.Tier)
}

func TestOnFailure_AlwaysReturnsRenderable(t *testing.T) {
	c := newTestCoordinator(t, Config{})

	r := c.OnFailure(context.Background(), "card.summary", nil, nil)

	assert.Equal(t, "card.summary", r.ComponentID)
	assert.Equal(t, "reduced", r.Tier)
	assert.NotEmpty(t, r.Message)
}

func TestOnFailure_RetryInvocationsBounded(t *testing.T) {
	c := newTestCoordinator(t, Config{})
	ctx := context.Background()

	var invocations atomic.Int32
	retry := func() *Renderable {
		invocations.Add(1)
		return nil
	}

	for i := 0; i < 5; i++ {
		c.OnFailure(ctx, "card.summary", platform.ErrStateSaved, retry)
	}

	assert.Equal(t, int32(DefaultMaxRetryAttempts), invocations.Load())
}

func TestOnFailure_ImmediateRetrySuccessAtTopPrunes(t *testing.T) {
	c := newTestCoordinator(t, Config{})

	recovered := &Renderable{ComponentID: "card.summary", Kind: KindCard, Tier: "normal", Mutating: true}
	r := c.OnFailure(context.Background(), "card.summary", platform.ErrStateSaved, func() *Renderable {
		return recovered
	})

	assert.Equal(t, *recovered, r)
	_, ok := c.State("card.summary")
	assert.False(t, ok, "component recovered at the top tier should be pruned")
}

func TestOnFailure_ImmediateRetrySuccessKeepsDegradedTier(t *testing.T) {
	c := newTestCoordinator(t, Config{})
	ctx := context.Background()

	c.OnFailure(ctx, "card.summary", errors.New("boom"), nil)

	recovered := &Renderable{ComponentID: "card.summary", Kind: KindCard, Tier: "reduced", Mutating: true}
	r := c.OnFailure(ctx, "card.summary", platform.ErrIllegalState, func() *Renderable {
		return recovered
	})

	assert.Equal(t, *recovered, r)
	state, ok := c.State("card.summary")
	require.True(t, ok)
	assert.Equal(t, "reduced", state.TierName)
	assert.Equal(t, 0, state.RetryCount, "successful retry resets the counter")
}

func TestOnFailure_UnsafeGateReturnsStatusMessage(t *testing.T) {
	c := newTestCoordinator(t, Config{
		Gate: commitgate.New(),
		Env: func() platform.EnvironmentState {
			return platform.EnvironmentState{Destroyed: true}
		},
	})

	var invocations atomic.Int32
	r := c.OnFailure(context.Background(), "card.summary", platform.ErrStateSaved, func() *Renderable {
		invocations.Add(1)
		return &Renderable{ComponentID: "card.summary"}
	})

	assert.Zero(t, invocations.Load(), "no retry may run when the UI tree cannot be mutated")
	assert.False(t, r.Mutating)
	assert.Equal(t, StyleStatusMessage, r.Style)

	state, ok := c.State("card.summary")
	require.True(t, ok)
	assert.Equal(t, "reduced", state.TierName)
}

func TestOnFailure_SavedStateAllowsLossyRetry(t *testing.T) {
	c := newTestCoordinator(t, Config{
		Gate: commitgate.New(),
		Env: func() platform.EnvironmentState {
			return platform.EnvironmentState{StateSaved: true}
		},
	})

	var invocations atomic.Int32
	c.OnFailure(context.Background(), "card.summary", platform.ErrStateSaved, func() *Renderable {
		invocations.Add(1)
		return &Renderable{ComponentID: "card.summary", Mutating: true}
	})

	assert.Equal(t, int32(1), invocations.Load())
}

func TestOnFailure_NotAttachedSchedulesDelayedRetry(t *testing.T) {
	c := newTestCoordinator(t, Config{RetryDelay: 10 * time.Millisecond})

	r := c.OnFailure(context.Background(), "card.summary", platform.ErrNotAttached, func() *Renderable {
		return &Renderable{ComponentID: "card.summary", Mutating: true}
	})

	// The immediate result is a degraded fallback; the retry lands later.
	assert.Equal(t, "reduced", r.Tier)
	assert.True(t, r.Mutating)

	require.Eventually(t, func() bool {
		_, ok := c.State("card.summary")
		return !ok
	}, 2*time.Second, 5*time.Millisecond, "delayed retry should promote and prune the component")
}

func TestOnFailure_DelayedRetryFailureKeepsTier(t *testing.T) {
	c := newTestCoordinator(t, Config{RetryDelay: 10 * time.Millisecond})

	c.OnFailure(context.Background(), "card.summary", platform.ErrNotAttached, func() *Renderable {
		return nil
	})

	time.Sleep(50 * time.Millisecond)

	state, ok := c.State("card.summary")
	require.True(t, ok)
	assert.Equal(t, "reduced", state.TierName)
	assert.Equal(t, 1, state.RetryCount)
}

func TestScheduleRetry_ConcurrentArmFireAndTeardown(t *testing.T) {
	c := NewCoordinator(Config{Domain: "ui", RetryDelay: time.Millisecond, Logger: zerolog.Nop()})
	ctx := context.Background()

	// Timers armed with a near-zero delay fire while other goroutines are
	// still scheduling; teardown races against both.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("card.widget_%d", n)
			c.OnFailure(ctx, id, platform.ErrNotAttached, func() *Renderable {
				return &Renderable{ComponentID: id, Mutating: true}
			})
		}(i)
	}
	wg.Wait()
	c.Close()

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, c.States(), "timers firing around teardown must be no-ops")
}

func TestOnFailure_LifecycleErrorSkipsRetry(t *testing.T) {
	c := newTestCoordinator(t, Config{})

	var invocations atomic.Int32
	r := c.OnFailure(context.Background(), "card.summary", platform.ErrScopeDestroyed, func() *Renderable {
		invocations.Add(1)
		return &Renderable{ComponentID: "card.summary"}
	})

	assert.Zero(t, invocations.Load())
	assert.Equal(t, "reduced", r.Tier)
	assert.True(t, r.Mutating)
}

func TestOnFailure_RecordsToLedger(t *testing.T) {
	diag := ledger.New(ledger.Config{Logger: zerolog.Nop()})
	defer diag.Close()
	c := newTestCoordinator(t, Config{Ledger: diag})
	ctx := context.Background()

	c.OnFailure(ctx, "card.summary", platform.ErrStateSaved, func() *Renderable {
		return &Renderable{ComponentID: "card.summary", Mutating: true}
	})

	require.Equal(t, 1, diag.Len())
	assert.Empty(t, diag.ComponentStates(), "recovered component leaves no state snapshot")

	c.OnFailure(ctx, "list.feed", errors.New("boom"), nil)

	assert.Equal(t, 2, diag.Len())
	states := diag.ComponentStates()
	require.Len(t, states, 1)
	assert.Equal(t, "list.feed", states[0].ComponentID)
	assert.Equal(t, "reduced", states[0].Tier)

	diag.Flush()
	report := diag.Report()
	var attempts int
	for _, record := range report.Records {
		attempts += len(record.Attempts)
	}
	assert.Equal(t, 1, attempts, "the successful immediate retry is logged against its record")
}

func TestAttemptSystemRecovery(t *testing.T) {
	c := newTestCoordinator(t, Config{
		Revalidate: func(componentID string) error {
			if componentID == "list.feed" {
				return errors.New("still missing resources")
			}
			return nil
		},
	})
	ctx := context.Background()

	c.OnFailure(ctx, "card.summary", errors.New("boom"), nil)
	c.OnFailure(ctx, "list.feed", errors.New("boom"), nil)
	c.OnFailure(ctx, "list.feed", errors.New("boom"), nil)

	result := c.AttemptSystemRecovery(ctx)

	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.Recovered)
	assert.Equal(t, 1, result.Remaining)

	_, ok := c.State("card.summary")
	assert.False(t, ok, "revalidated component returns to the top tier")

	state, ok := c.State("list.feed")
	require.True(t, ok)
	assert.Equal(t, "fallback", state.TierName, "unverified component keeps its tier")
	assert.Equal(t, 0, state.RetryCount, "retry counters reset even when recovery fails")
}

func TestAttemptSystemRecovery_SkipsUnrecoverableComponents(t *testing.T) {
	c := newTestCoordinator(t, Config{
		Revalidate: func(string) error { return nil },
	})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		c.OnFailure(ctx, "card.summary", errors.New("boom"), nil)
	}
	state, _ := c.State("card.summary")
	require.False(t, state.Recoverable)

	result := c.AttemptSystemRecovery(ctx)

	assert.Zero(t, result.Attempted)
	_, ok := c.State("card.summary")
	assert.True(t, ok, "a component at the bottom tier is left for explicit restart")
}

func TestClose(t *testing.T) {
	c := NewCoordinator(Config{Domain: "ui", Logger: zerolog.Nop()})
	ctx := context.Background()

	c.OnFailure(ctx, "card.summary", errors.New("boom"), nil)
	c.Close()

	assert.Empty(t, c.States())

	r := c.OnFailure(ctx, "card.summary", errors.New("boom"), nil)
	assert.False(t, r.Mutating)
	assert.Equal(t, "failed", r.Tier)

	result := c.AttemptSystemRecovery(ctx)
	assert.Zero(t, result.Attempted)

	// Second close is a no-op.
	c.Close()
}

func TestStates(t *testing.T) {
	c := newTestCoordinator(t, Config{Domain: "glass", Ladder: GlassLadder()})
	ctx := context.Background()

	c.OnFailure(ctx, "glass.sidebar", errors.New("blur shader compile error"), nil)
	c.OnFailure(ctx, "glass.header", errors.New("blur shader compile error"), nil)

	states := c.States()
	require.Len(t, states, 2)
	for _, s := range states {
		assert.Equal(t, "reduced", s.TierName)
		assert.True(t, s.Recoverable)
		assert.NotEmpty(t, s.LastError)
	}
}
