// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"os"
	"time"
)

// FileInfo describes a filesystem entry.  Mode includes both the type bits
// and the permission bits.  Uid and Gid return -1 when the backing
// filesystem cannot report ownership.
type FileInfo interface {
	IsDir() bool
	Name() string
	Mode() os.FileMode
	ModTime() time.Time
	Size() int64
	Uid() int
	Gid() int
	String() string
}
