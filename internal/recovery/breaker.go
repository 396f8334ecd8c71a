package recovery

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// breakerSet holds one circuit breaker per component, created lazily. Retry
// closures execute through the component's breaker so a flapping component
// stops burning retry attempts once the breaker opens.
type breakerSet struct {
	mu       sync.Mutex
	timeout  time.Duration
	breakers map[string]*gobreaker.CircuitBreaker[*Renderable]
}

func newBreakerSet(timeout time.Duration) *breakerSet {
	return &breakerSet{
		timeout:  timeout,
		breakers: make(map[string]*gobreaker.CircuitBreaker[*Renderable]),
	}
}

func (b *breakerSet) get(componentID string) *gobreaker.CircuitBreaker[*Renderable] {
	b.mu.Lock()
	defer b.mu.Unlock()

	cb, ok := b.breakers[componentID]
	if !ok {
		cb = gobreaker.NewCircuitBreaker[*Renderable](gobreaker.Settings{
			Name:        componentID,
			MaxRequests: 1,
			Timeout:     b.timeout,
			ReadyToTrip: readyToTrip,
		})
		b.breakers[componentID] = cb
	}
	return cb
}

// drop discards a component's breaker, used by force-cleanup so the next
// cycle starts from a closed circuit.
func (b *breakerSet) drop(componentID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.breakers, componentID)
}

// readyToTrip opens the circuit after at least 5 requests with a failure rate
// of 50% or higher.
func readyToTrip(counts gobreaker.Counts) bool {
	failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
	return counts.Requests >= 5 && failureRatio >= 0.5
}
