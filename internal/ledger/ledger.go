// Package ledger is the process-wide, lifecycle-scoped store of failure
// records, per-component state snapshots, and environment metadata. It is
// bounded with oldest-first eviction and enriched off the caller's path.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/renderguard/renderguard/internal/catalog"
	"github.com/renderguard/renderguard/internal/platform"
)

// DefaultCapacity is the default maximum number of retained crash records.
const DefaultCapacity = 50

// ArchiveSink receives records evicted from the in-memory ledger. The live
// ledger never reads them back.
type ArchiveSink interface {
	Archive(ctx context.Context, records []CrashRecord) error
}

// EventPublisher receives newly recorded crashes for downstream alerting.
type EventPublisher interface {
	PublishCrash(ctx context.Context, record CrashRecord) error
}

// Config holds configuration for the Ledger.
type Config struct {
	// Capacity caps retained records. Default: DefaultCapacity.
	Capacity int

	// Validate, when set, re-validates the resource catalog during
	// enrichment so the record captures resource availability at crash time.
	Validate func() *catalog.Report

	// Archive, when set, receives evicted records. Optional.
	Archive ArchiveSink

	// Publisher, when set, receives every recorded crash. Optional.
	Publisher EventPublisher

	// Now supplies timestamps. Default: time.Now.
	Now func() time.Time

	Logger zerolog.Logger
}

// Ledger is a bounded in-memory diagnostic store. Construct one per owning
// scope and pass it by reference; there is no ambient global instance.
type Ledger struct {
	capacity  int
	validate  func() *catalog.Report
	archive   ArchiveSink
	publisher EventPublisher
	now       func() time.Time
	logger    zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	records []*CrashRecord
	byID    map[string]*CrashRecord
	states  map[string]*ComponentSnapshot

	enriching sync.WaitGroup
}

// New creates a Ledger.
func New(cfg Config) *Ledger {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Ledger{
		capacity:  capacity,
		validate:  cfg.Validate,
		archive:   cfg.Archive,
		publisher: cfg.Publisher,
		now:       now,
		logger:    cfg.Logger,
		byID:      make(map[string]*CrashRecord),
		states:    make(map[string]*ComponentSnapshot),
	}
}

// RecordFailure classifies err synchronously, appends a record, and kicks off
// background enrichment. The record is visible immediately with nil snapshots;
// enrichment fills them in later and its own failure is never surfaced.
// Returns the new record's id, or "" if the ledger is closed.
func (l *Ledger) RecordFailure(ctx context.Context, err error, failureContext, componentID string) string {
	if err == nil {
		return ""
	}

	record := &CrashRecord{
		ID:             "crash_" + uuid.New().String()[:8],
		Timestamp:      l.now(),
		Classification: Classify(err),
		Message:        err.Error(),
		StackSummary:   stackSummary(),
		ComponentID:    componentID,
		Context:        failureContext,
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ""
	}
	l.records = append(l.records, record)
	l.byID[record.ID] = record
	evicted := l.evictLocked()
	l.enriching.Add(1)
	l.mu.Unlock()

	go l.enrich(record.ID)

	if len(evicted) > 0 && l.archive != nil {
		go l.archiveEvicted(evicted)
	}
	if l.publisher != nil {
		snapshot := record.clone()
		go func() {
			if pubErr := l.publisher.PublishCrash(context.WithoutCancel(ctx), snapshot); pubErr != nil {
				l.logger.Warn().Err(pubErr).Str("record_id", snapshot.ID).Msg("crash event publish failed")
			}
		}()
	}

	l.logger.Warn().
		Str("record_id", record.ID).
		Str("classification", string(record.Classification)).
		Str("component_id", componentID).
		Err(err).
		Msg("failure recorded")

	return record.ID
}

// RecordRecoveryAttempt appends an attempt to the matching record.
// No-op if the record has been evicted.
func (l *Ledger) RecordRecoveryAttempt(recordID, strategy string, success bool, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.byID[recordID]
	if !ok || l.closed {
		return
	}
	record.Attempts = append(record.Attempts, RecoveryAttempt{
		Strategy: strategy,
		Success:  success,
		Detail:   detail,
		At:       l.now(),
	})
}

// UpdateComponentState upserts the lightweight state snapshot for a component,
// independent of crash records.
func (l *Ledger) UpdateComponentState(componentID, tier, details string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.states[componentID] = &ComponentSnapshot{
		ComponentID: componentID,
		Tier:        tier,
		Details:     details,
		UpdatedAt:   l.now(),
	}
}

// RemoveComponentState drops a component's snapshot after it recovers fully.
func (l *Ledger) RemoveComponentState(componentID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.states, componentID)
}

// ComponentStates returns read-only copies of every component snapshot.
func (l *Ledger) ComponentStates() []ComponentSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ComponentSnapshot, 0, len(l.states))
	for _, s := range l.states {
		out = append(out, *s)
	}
	return out
}

// Len returns the number of retained crash records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Flush blocks until all in-flight enrichment has completed. Intended for
// tests and orderly shutdown.
func (l *Ledger) Flush() {
	l.enriching.Wait()
}

// Close tears the ledger down. In-flight enrichment may finish but its
// results are discarded; all subsequent calls are no-ops.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// evictLocked removes oldest-by-timestamp records until at capacity, ties
// broken by insertion order. Returns the evicted records oldest first.
func (l *Ledger) evictLocked() []CrashRecord {
	var evicted []CrashRecord
	for len(l.records) > l.capacity {
		oldest := 0
		for i, r := range l.records {
			if r.Timestamp.Before(l.records[oldest].Timestamp) {
				oldest = i
			}
		}
		victim := l.records[oldest]
		evicted = append(evicted, victim.clone())
		l.records = append(l.records[:oldest], l.records[oldest+1:]...)
		delete(l.byID, victim.ID)
	}
	return evicted
}

// enrich fills a record's device and resource snapshots in the background.
// Enrichment failure is swallowed; a partial record stays valid.
func (l *Ledger) enrich(recordID string) {
	defer l.enriching.Done()
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn().Interface("panic", r).Str("record_id", recordID).Msg("enrichment panicked")
		}
	}()

	device := platform.CollectDeviceSnapshot()

	var resources *catalog.Report
	if l.validate != nil {
		resources = l.validate()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	record, ok := l.byID[recordID]
	if !ok {
		// Evicted while enrichment ran.
		return
	}
	record.Device = &device
	record.Resources = resources
}

// archiveEvicted hands evicted records to the archive sink, best effort.
func (l *Ledger) archiveEvicted(records []CrashRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.archive.Archive(ctx, records); err != nil {
		l.logger.Warn().Err(err).Int("count", len(records)).Msg("crash record archive failed")
	}
}
