// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package ids

// Resolver resolves user and group names to numeric ids.
// LookupUser also returns the user's primary group id, which is used as the
// default group when an owner is requested without a group.
// Implementations must be safe for concurrent lookups.
type Resolver interface {
	LookupUser(name string) (uid int, gid int, err error)
	LookupGroup(name string) (gid int, err error)
}
