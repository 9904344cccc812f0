// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package sync

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/dircopy/dircopy/pkg/fs"
)

// Checksum returns the sha256 digest of the named file's contents.
func Checksum(ctx context.Context, fileSystem fs.FileSystem, name string) ([]byte, error) {
	f, err := fileSystem.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("error opening %q for checksum: %w", name, err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("error reading %q for checksum: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("error closing %q after checksum: %w", name, err)
	}
	return h.Sum(nil), nil
}
