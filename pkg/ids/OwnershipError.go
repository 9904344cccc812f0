// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package ids

import (
	"fmt"
)

// OwnershipError indicates that a user or group name could not be resolved
// to a numeric id.  An unresolvable name is a misconfiguration, not a
// transient filesystem condition, so callers treat it as fatal.
type OwnershipError struct {
	Kind string // "user" or "group"
	Name string
	Err  error
}

func (e *OwnershipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no such %s %q: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("no such %s %q", e.Kind, e.Name)
}

func (e *OwnershipError) Unwrap() error {
	return e.Err
}
