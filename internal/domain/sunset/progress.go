// internal/domain/sunset/progress.go
package sunset

import (
	"strconv"
	"strings"
	"time"
)

// Keys under which progress is kept in the key-value store.
const (
	KeyIndex = "index"
	KeyDate  = "date"
)

// DateLayout is the format written by Progress.Raw.
const DateLayout = time.RFC3339

// fallbackDateLayouts are accepted when reading values written by other tools.
var fallbackDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.UnixDate,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// RawState is progress exactly as the store holds it. Either field may be empty or garbage.
type RawState struct {
	Index string
	Date  string
}

// Progress is the parsed, validated form of RawState.
type Progress struct {
	Index int       // Next stage to show
	Date  time.Time // When the previous notification was shown
}

// Raw formats p for storage.
func (p Progress) Raw() RawState {
	return RawState{
		Index: strconv.Itoa(p.Index),
		Date:  p.Date.Format(DateLayout),
	}
}

// ParseProgress applies the reset policy: a non-numeric, negative or out of range index,
// or an unparseable date, yields index 0. The bool reports whether raw was valid.
func ParseProgress(raw RawState, stages int) (Progress, bool) {
	index, err := strconv.Atoi(strings.TrimSpace(raw.Index))
	if err != nil || index < 0 || index >= stages {
		return Progress{}, false
	}
	date, ok := parseDate(raw.Date)
	if !ok {
		return Progress{}, false
	}
	return Progress{Index: index, Date: date}, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	// Drop a trailing zone name such as " (Central European Summer Time)".
	if i := strings.Index(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		s = s[:i]
	}
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
