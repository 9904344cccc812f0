// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package ts

import "time"

// Layout describes the text representation of a time, as understood by
// time.Format.
type Layout string

func (l Layout) Format(t time.Time) string {
	return t.Format(string(l))
}

// NamedLayouts are the layouts addressable by name from the command line.
var NamedLayouts = map[string]Layout{
	"DateOnly":    time.DateOnly,
	"DateTime":    time.DateTime,
	"Kitchen":     time.Kitchen,
	"RFC3339":     time.RFC3339,
	"RFC3339Nano": time.RFC3339Nano,
	"TimeOnly":    time.TimeOnly,
}

// ParseLayout resolves a named layout, falling back to treating the input
// as a layout itself.
func ParseLayout(layout string) Layout {
	if named, ok := NamedLayouts[layout]; ok {
		return named
	}
	return Layout(layout)
}
