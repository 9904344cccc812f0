// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package attr

import (
	"os"
)

// DirectoryMode derives a directory mode from a file mode: every permission
// triad that has a read or write bit gains the execute bit, so the directory
// is traversable by exactly the parties who can read or write its files.
// Setuid, setgid, and sticky bits pass through unchanged.
func DirectoryMode(mode os.FileMode) os.FileMode {
	for _, shift := range []uint{6, 3, 0} {
		if mode&(os.FileMode(0b110)<<shift) != 0 {
			mode |= os.FileMode(1) << shift
		}
	}
	return mode
}
