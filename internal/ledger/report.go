package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DiagnosticReport is a point-in-time summary of the ledger's contents.
type DiagnosticReport struct {
	GeneratedAt            time.Time              `json:"generated_at"`
	Records                []CrashRecord          `json:"records"`
	CountsByClassification map[Classification]int `json:"counts_by_classification"`
	MostCommon             Classification         `json:"most_common,omitempty"`
	AverageAttempts        float64                `json:"average_attempts"`
	Recommendations        []string               `json:"recommendations,omitempty"`
	ComponentStates        []ComponentSnapshot    `json:"component_states,omitempty"`
}

// Report snapshots the retained records (most recent first), aggregate
// statistics, and a recommendation list derived from the dominant failure
// classes.
func (l *Ledger) Report() *DiagnosticReport {
	l.mu.RLock()

	records := make([]CrashRecord, 0, len(l.records))
	for _, r := range l.records {
		records = append(records, r.clone())
	}
	states := make([]ComponentSnapshot, 0, len(l.states))
	for _, s := range l.states {
		states = append(states, *s)
	}
	l.mu.RUnlock()

	// Most recent first; equal timestamps keep insertion order reversed last.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	sort.Slice(states, func(i, j int) bool {
		return states[i].ComponentID < states[j].ComponentID
	})

	counts := make(map[Classification]int)
	totalAttempts := 0
	for _, r := range records {
		counts[r.Classification]++
		totalAttempts += len(r.Attempts)
	}

	report := &DiagnosticReport{
		GeneratedAt:            l.now(),
		Records:                records,
		CountsByClassification: counts,
		ComponentStates:        states,
	}
	if len(records) > 0 {
		report.AverageAttempts = float64(totalAttempts) / float64(len(records))
		report.MostCommon = mostCommon(counts)
		report.Recommendations = recommendations(counts, records)
	}
	return report
}

// mostCommon picks the classification with the highest count, ties broken by
// name for determinism.
func mostCommon(counts map[Classification]int) Classification {
	var best Classification
	bestCount := -1
	for class, n := range counts {
		if n > bestCount || (n == bestCount && class < best) {
			best = class
			bestCount = n
		}
	}
	return best
}

// recommendations derives operator guidance from the dominant failure classes.
func recommendations(counts map[Classification]int, records []CrashRecord) []string {
	var out []string

	if counts[ClassResourceNotFound] > 0 {
		names := missingResourceNames(records)
		if len(names) > 0 {
			out = append(out, fmt.Sprintf("add or restore missing resources: %s", strings.Join(names, ", ")))
		} else {
			out = append(out, "verify the resource catalog ships with the build")
		}
	}
	if counts[ClassFragmentLifecycle] > 1 {
		out = append(out, "components are initialized during teardown; defer initialization until the scope is attached")
	}
	if counts[ClassCustomComponent] > 1 {
		out = append(out, "a custom renderable repeatedly fails to construct; ship its fallback representation by default")
	}
	if counts[ClassMemory] > 0 {
		out = append(out, "memory pressure detected; lower the rendering tier before components start failing")
	}
	if counts[ClassDomainSpecific] > 1 {
		out = append(out, "glass subsystem failures dominate; cap the glass tier via configuration")
	}
	return out
}

// missingResourceNames collects distinct resource names from enriched
// resource snapshots, sorted.
func missingResourceNames(records []CrashRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Resources == nil {
			continue
		}
		for _, name := range r.Resources.MissingNames() {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
