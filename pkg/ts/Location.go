// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package ts

import (
	"errors"
	"strconv"
	"time"
)

// ParseLocation resolves a time zone: "Local", a fixed UTC offset in whole
// hours (e.g., "-8"), or an IANA name such as "America/Los_Angeles".
func ParseLocation(location string) (*time.Location, error) {
	if len(location) == 0 {
		return nil, errors.New("location is empty")
	}
	if location == "Local" {
		return time.Local, nil
	}
	if hours, err := strconv.Atoi(location); err == nil {
		return time.FixedZone("UTC"+location, hours*60*60), nil
	}
	return time.LoadLocation(location)
}
