// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

// Logger is the structured event logger accepted by the synchronization
// engine: a message plus optional field maps, one event per call.
// Implementations must be safe for concurrent use.
type Logger interface {
	Log(msg string, fields ...map[string]interface{}) error
}
