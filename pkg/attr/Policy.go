// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package attr

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dircopy/dircopy/pkg/ids"
)

// Policy is a resolved Spec: numeric ids and concrete mode bits.
// UID and GID are -1 when not requested.  FileMode and DirMode are nil when
// no mode was requested.
type Policy struct {
	UID      int
	GID      int
	FileMode *os.FileMode
	DirMode  *os.FileMode
}

// Mode returns the requested mode for an entry, or nil when none was
// requested.
func (p *Policy) Mode(dir bool) *os.FileMode {
	if dir {
		return p.DirMode
	}
	return p.FileMode
}

// HasOwnership reports whether the policy requests an owner or group.
func (p *Policy) HasOwnership() bool {
	return p.UID >= 0 || p.GID >= 0
}

func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Resolve turns a Spec into a Policy using the given resolver.
// When an owner is requested without a group, the group defaults to the
// owner's primary group, matching chown semantics.
func Resolve(spec Spec, resolver ids.Resolver) (*Policy, error) {
	policy := &Policy{
		UID: -1,
		GID: -1,
	}

	primaryGID := -1
	if len(spec.Owner) > 0 {
		if isNumeric(spec.Owner) {
			uid, err := strconv.Atoi(spec.Owner)
			if err != nil {
				return nil, fmt.Errorf("error parsing owner %q: %w", spec.Owner, err)
			}
			policy.UID = uid
		} else {
			uid, gid, err := resolver.LookupUser(spec.Owner)
			if err != nil {
				return nil, err
			}
			policy.UID = uid
			primaryGID = gid
		}
	}

	if len(spec.Group) > 0 {
		if isNumeric(spec.Group) {
			gid, err := strconv.Atoi(spec.Group)
			if err != nil {
				return nil, fmt.Errorf("error parsing group %q: %w", spec.Group, err)
			}
			policy.GID = gid
		} else {
			gid, err := resolver.LookupGroup(spec.Group)
			if err != nil {
				return nil, err
			}
			policy.GID = gid
		}
	} else if primaryGID >= 0 {
		policy.GID = primaryGID
	}

	if len(spec.Mode) > 0 {
		m, err := strconv.ParseUint(spec.Mode, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("error parsing mode %q as octal: %w", spec.Mode, err)
		}
		fileMode := os.FileMode(m)
		policy.FileMode = &fileMode
		dirMode := fileMode
		if spec.Chdir {
			dirMode = DirectoryMode(fileMode)
		}
		policy.DirMode = &dirMode
	}

	return policy, nil
}
