package ledger

import (
	"runtime/debug"
	"strings"
	"time"

	"github.com/renderguard/renderguard/internal/catalog"
	"github.com/renderguard/renderguard/internal/platform"
)

// RecoveryAttempt records one recovery pass made against a crash record.
type RecoveryAttempt struct {
	Strategy string    `json:"strategy"`
	Success  bool      `json:"success"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// CrashRecord is one classified failure with its diagnostic context.
// Records are append-only except for Attempts, which grows as recovery is
// attempted against the same record.
type CrashRecord struct {
	ID             string            `json:"id"`
	Timestamp      time.Time         `json:"timestamp"`
	Classification Classification    `json:"classification"`
	Message        string            `json:"message"`
	StackSummary   string            `json:"stack_summary,omitempty"`
	ComponentID    string            `json:"component_id,omitempty"`
	Context        string            `json:"context,omitempty"`
	Attempts       []RecoveryAttempt `json:"attempts,omitempty"`

	// Device and Resources are filled in by background enrichment and stay
	// nil until it completes. A record with nil snapshots is still valid.
	Device    *platform.DeviceSnapshot `json:"device,omitempty"`
	Resources *catalog.Report          `json:"resources,omitempty"`
}

// clone returns a deep-enough copy for read-only reporting.
func (r *CrashRecord) clone() CrashRecord {
	out := *r
	out.Attempts = append([]RecoveryAttempt(nil), r.Attempts...)
	return out
}

// ComponentSnapshot is a lightweight per-component state entry maintained
// independently of crash records, used for live status display.
type ComponentSnapshot struct {
	ComponentID string    `json:"component_id"`
	Tier        string    `json:"tier"`
	Details     string    `json:"details,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// maxStackLines bounds the stack summary captured per record.
const maxStackLines = 12

// stackSummary captures a trimmed stack for the current goroutine.
func stackSummary() string {
	lines := strings.Split(string(debug.Stack()), "\n")
	if len(lines) > maxStackLines {
		lines = lines[:maxStackLines]
	}
	return strings.Join(lines, "\n")
}
