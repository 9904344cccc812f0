// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package attr

// Spec is the requested ownership and permissions for synchronized entries.
// All fields are optional: an empty Owner, Group, or Mode leaves the
// corresponding attribute at whatever the copy operation produces.
// Owner and Group accept names or numeric ids.  Mode is an octal string,
// e.g. "0640".  Chdir derives directory execute bits from Mode so that
// directories stay traversable by the parties who can read or write their
// files.
type Spec struct {
	Owner string
	Group string
	Mode  string
	Chdir bool
}
