// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package attr

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectoryMode(t *testing.T) {
	assert.Equal(t, os.FileMode(0o750), DirectoryMode(0o640))
	assert.Equal(t, os.FileMode(0o755), DirectoryMode(0o644))
	assert.Equal(t, os.FileMode(0o777), DirectoryMode(0o666))
	assert.Equal(t, os.FileMode(0o700), DirectoryMode(0o600))
	assert.Equal(t, os.FileMode(0o755), DirectoryMode(0o755))
	assert.Equal(t, os.FileMode(0), DirectoryMode(0))
	// execute-only triads do not gain anything
	assert.Equal(t, os.FileMode(0o100), DirectoryMode(0o100))
	// sticky bit passes through
	assert.Equal(t, os.ModeSticky|os.FileMode(0o771), DirectoryMode(os.ModeSticky|0o661))
}
