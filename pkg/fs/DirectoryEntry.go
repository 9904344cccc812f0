// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"encoding/json"
	"os"
	"time"
)

type DirectoryEntry struct {
	name    string
	mode    os.FileMode
	modTime time.Time
	size    int64
	uid     int
	gid     int
}

func (de *DirectoryEntry) IsDir() bool {
	return de.mode.IsDir()
}

func (de *DirectoryEntry) Name() string {
	return de.name
}

func (de *DirectoryEntry) Mode() os.FileMode {
	return de.mode
}

func (de *DirectoryEntry) ModTime() time.Time {
	return de.modTime
}

func (de *DirectoryEntry) Size() int64 {
	return de.size
}

func (de *DirectoryEntry) Uid() int {
	return de.uid
}

func (de *DirectoryEntry) Gid() int {
	return de.gid
}

func (de *DirectoryEntry) String() string {
	return de.name
}

func (de *DirectoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"dir":     de.IsDir(),
		"gid":     de.gid,
		"mode":    de.mode.String(),
		"modTime": de.modTime,
		"name":    de.name,
		"size":    de.size,
		"uid":     de.uid,
	})
}

func NewDirectoryEntry(name string, mode os.FileMode, modTime time.Time, size int64, uid int, gid int) *DirectoryEntry {
	return &DirectoryEntry{
		name:    name,
		mode:    mode,
		modTime: modTime,
		size:    size,
		uid:     uid,
		gid:     gid,
	}
}
