// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package ids

import (
	"fmt"
	"os/user"
	"strconv"
)

// SystemResolver resolves names against the operating system's user and
// group databases.
type SystemResolver struct{}

func (r *SystemResolver) LookupUser(name string) (int, int, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return -1, -1, &OwnershipError{Kind: "user", Name: name, Err: err}
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return -1, -1, fmt.Errorf("error parsing uid %q for user %q: %w", u.Uid, name, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return -1, -1, fmt.Errorf("error parsing gid %q for user %q: %w", u.Gid, name, err)
	}
	return uid, gid, nil
}

func (r *SystemResolver) LookupGroup(name string) (int, error) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return -1, &OwnershipError{Kind: "group", Name: name, Err: err}
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return -1, fmt.Errorf("error parsing gid %q for group %q: %w", g.Gid, name, err)
	}
	return gid, nil
}

func NewSystemResolver() *SystemResolver {
	return &SystemResolver{}
}
