// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

//go:build !unix

package lfs

import (
	"os"
)

func fileOwner(info os.FileInfo) (int, int) {
	return -1, -1
}
