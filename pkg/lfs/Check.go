// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package lfs

import (
	"fmt"
)

// Check guards against synchronizing a tree into itself: source and
// destination must name different trees and neither may contain the other.
func Check(source string, destination string) error {
	sourceDirectories := Split(source)
	destinationDirectories := Split(destination)
	for i := 0; i < len(sourceDirectories) && i < len(destinationDirectories); i++ {
		if sourceDirectories[i] != destinationDirectories[i] {
			return nil
		}
	}
	if len(sourceDirectories) == len(destinationDirectories) {
		return fmt.Errorf("source and destination are the same tree: %q", source)
	}
	if len(sourceDirectories) > len(destinationDirectories) {
		return fmt.Errorf("cycle error: destination %q contains source %q", destination, source)
	}
	return fmt.Errorf("cycle error: source %q contains destination %q", source, destination)
}
