// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dircopy/dircopy/pkg/ts"
)

// SimpleLogger writes one JSON object per event to the underlying writer.
// Safe for concurrent use.
type SimpleLogger struct {
	mutex    *sync.Mutex
	writer   io.Writer
	layout   ts.Layout
	location *time.Location
}

func (l *SimpleLogger) Log(msg string, fields ...map[string]interface{}) error {
	m := map[string]interface{}{
		"ts":  l.layout.Format(time.Now().In(l.location)),
		"msg": msg,
	}
	for _, f := range fields {
		for k, v := range f {
			m[k] = v
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("error marshaling log event %q: %w", msg, err)
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if _, err := l.writer.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("error writing log event %q: %w", msg, err)
	}
	return nil
}

func NewSimpleLogger(w io.Writer) *SimpleLogger {
	return NewSimpleLoggerWithOptions(w, ts.NamedLayouts["RFC3339"], time.Local)
}

func NewSimpleLoggerWithOptions(w io.Writer, layout ts.Layout, location *time.Location) *SimpleLogger {
	return &SimpleLogger{
		mutex:    &sync.Mutex{},
		writer:   w,
		layout:   layout,
		location: location,
	}
}
