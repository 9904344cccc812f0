// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package sync

// Outcome is what happened to one path when its action was executed.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// SyncEntry records the action and outcome for one relative path.
// Detail carries the attribute values applied, for the verbose report.
type SyncEntry struct {
	Path    string  `json:"path"`
	Action  Action  `json:"action"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
	Detail  string  `json:"detail,omitempty"`
}

// SyncError records one per-path failure.
type SyncError struct {
	Path    string    `json:"path"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// SyncResult is the aggregate of one synchronize call.  Entries holds one
// record per relative path in walk order; Errors holds walk problems
// followed by operation failures, also in walk order.  Changed is true iff
// at least one action mutated the destination.
type SyncResult struct {
	Changed bool        `json:"changed"`
	Entries []SyncEntry `json:"entries"`
	Errors  []SyncError `json:"errors"`
}

// Failed reports whether any per-path error was recorded.  Partial success
// is still a failure from the operator's perspective.
func (r *SyncResult) Failed() bool {
	return len(r.Errors) > 0
}

// Counts returns the number of applied creates, applied updates, applied
// deletes, untouched paths, and failures.
func (r *SyncResult) Counts() (created int, updated int, deleted int, unchanged int, failed int) {
	for _, entry := range r.Entries {
		switch {
		case entry.Outcome == OutcomeFailed:
			failed++
		case entry.Outcome == OutcomeUnchanged:
			unchanged++
		case entry.Action == ActionCreate:
			created++
		case entry.Action == ActionUpdate:
			updated++
		case entry.Action == ActionDelete:
			deleted++
		}
	}
	return created, updated, deleted, unchanged, failed
}
