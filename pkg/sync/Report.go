// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package sync

import (
	"fmt"
	"strings"
)

// FormatReport renders a result as text.  Without verbose it is a one-line
// count summary.  With verbose it adds one line per path that was (or
// should have been) touched, with the attribute values applied, followed by
// the recorded errors.  Pure function of the result.
func FormatReport(result *SyncResult, verbose bool) string {
	created, updated, deleted, unchanged, failed := result.Counts()
	summary := fmt.Sprintf(
		"%d created, %d updated, %d deleted, %d unchanged, %d failed",
		created, updated, deleted, unchanged, failed,
	)
	if !verbose {
		return summary
	}

	lines := []string{summary}
	for _, entry := range result.Entries {
		if entry.Action == ActionSkip && entry.Outcome != OutcomeFailed {
			continue
		}
		if entry.Action == ActionDelete && entry.Outcome == OutcomeUnchanged {
			continue
		}
		line := fmt.Sprintf("%-6s %s", entry.Action, entry.Path)
		if len(entry.Detail) > 0 {
			line += " (" + entry.Detail + ")"
		}
		if entry.Action == ActionUpdate && len(entry.Reason) > 0 {
			line += ": " + entry.Reason
		}
		if entry.Outcome == OutcomeFailed {
			line += " [failed]"
		}
		lines = append(lines, line)
	}
	for _, syncError := range result.Errors {
		lines = append(lines, fmt.Sprintf("error  %s: %s", syncError.Path, syncError.Message))
	}
	return strings.Join(lines, "\n")
}
