// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package ids

// StaticUser is a user record for a StaticResolver.
type StaticUser struct {
	Uid int
	Gid int
}

// StaticResolver resolves names from fixed tables.
type StaticResolver struct {
	Users  map[string]StaticUser
	Groups map[string]int
}

func (r *StaticResolver) LookupUser(name string) (int, int, error) {
	u, ok := r.Users[name]
	if !ok {
		return -1, -1, &OwnershipError{Kind: "user", Name: name}
	}
	return u.Uid, u.Gid, nil
}

func (r *StaticResolver) LookupGroup(name string) (int, error) {
	gid, ok := r.Groups[name]
	if !ok {
		return -1, &OwnershipError{Kind: "group", Name: name}
	}
	return gid, nil
}

func NewStaticResolver(users map[string]StaticUser, groups map[string]int) *StaticResolver {
	return &StaticResolver{
		Users:  users,
		Groups: groups,
	}
}
