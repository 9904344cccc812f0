// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package sync

import (
	"os"
	"strings"
	"time"
)

type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
	KindSymlink
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	}
	return "unknown"
}

// PathEntry is an immutable snapshot of one filesystem entry, keyed by its
// slash-separated path relative to the tree root.
type PathEntry struct {
	Path       string
	Kind       EntryKind
	Size       int64
	ModTime    time.Time
	Mode       os.FileMode
	UID        int
	GID        int
	LinkTarget string
}

// Depth returns the number of path segments.
func (e *PathEntry) Depth() int {
	return pathDepth(e.Path)
}

func pathDepth(relPath string) int {
	if len(relPath) == 0 {
		return 0
	}
	return strings.Count(relPath, "/") + 1
}

// pathLess orders relative paths segment by segment, which matches the
// order a preorder walk with sorted directory entries produces.
func pathLess(a string, b string) bool {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}
