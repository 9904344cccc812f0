// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package sync

import (
	"time"

	"github.com/dircopy/dircopy/pkg/fs"
	"github.com/dircopy/dircopy/pkg/ids"
)

type SynchronizeInput struct {
	Source                string
	SourceFileSystem      fs.FileSystem
	Destination           string
	DestinationFileSystem fs.FileSystem
	// Requested ownership and permissions; empty fields leave the
	// corresponding attribute at whatever the copy produces.
	Owner string
	Group string
	Mode  string
	// Chdir derives directory execute bits from Mode.
	Chdir bool
	// Identical deletes destination entries absent from the source.
	Identical bool
	// Verbose records per-entry attribute detail for the diff report.
	Verbose bool
	// MaxThreads bounds the worker pool; zero or negative means serial.
	MaxThreads int
	// ChecksumLimit is the largest file size compared by checksum; larger
	// same-size files are compared by modification time.
	ChecksumLimit      int64
	TimestampPrecision time.Duration
	Resolver           ids.Resolver
	Logger             fs.Logger
}
