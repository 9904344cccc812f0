// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package sync

import (
	"fmt"

	"github.com/dircopy/dircopy/pkg/fs"
)

type ErrorKind string

const (
	ErrorKindNotFound    ErrorKind = "not_found"
	ErrorKindAccess      ErrorKind = "access"
	ErrorKindUnsupported ErrorKind = "unsupported"
	ErrorKindCancelled   ErrorKind = "cancelled"
	ErrorKindIO          ErrorKind = "io"
)

func errorKind(fileSystem fs.FileSystem, err error) ErrorKind {
	if fileSystem.IsNotExist(err) {
		return ErrorKindNotFound
	}
	if fileSystem.IsPermission(err) {
		return ErrorKindAccess
	}
	return ErrorKindIO
}

// DestinationUnreachableError indicates that the destination root does not
// exist and its parent directory is missing, a precondition failure that
// aborts synchronization before any mutation.
type DestinationUnreachableError struct {
	Destination string
	Parent      string
}

func (e *DestinationUnreachableError) Error() string {
	return fmt.Sprintf("destination %q unreachable: parent directory %q does not exist", e.Destination, e.Parent)
}
