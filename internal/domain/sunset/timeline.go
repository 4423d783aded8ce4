// internal/domain/sunset/timeline.go
package sunset

import (
	"errors"
	"fmt"
	"time"
)

// DefaultOffsets are the day offsets from the start date at which each stage becomes eligible.
// The last entry is the terminal stage: reaching it uninstalls instead of notifying.
var DefaultOffsets = []int{7, 14, 28, 29}

// DefaultMinimumOffset is the minimum spacing in days between two notifications.
const DefaultMinimumOffset = 7

var (
	ErrEmptyTimeline     = errors.New("timeline must contain at least one stage")
	ErrNegativeOffset    = errors.New("timeline offsets must not be negative")
	ErrNegativeMinOffset = errors.New("minimum offset must not be negative")
	ErrMissingStartDate  = errors.New("timeline start date is not set")
	ErrUnorderedTimeline = errors.New("timeline offsets must be in ascending order")
)

// Timeline is the fixed deprecation schedule.
type Timeline struct {
	Start         time.Time
	Offsets       []int // Days after Start, one per stage
	MinimumOffset int   // Days between consecutive notifications
}

// NewTimeline validates the schedule and returns a copy that callers cannot mutate.
func NewTimeline(start time.Time, offsets []int, minimumOffset int) (Timeline, error) {
	if start.IsZero() {
		return Timeline{}, ErrMissingStartDate
	}
	if len(offsets) == 0 {
		return Timeline{}, ErrEmptyTimeline
	}
	if minimumOffset < 0 {
		return Timeline{}, ErrNegativeMinOffset
	}
	for i, o := range offsets {
		if o < 0 {
			return Timeline{}, fmt.Errorf("stage %d: %w", i, ErrNegativeOffset)
		}
		if i > 0 && o < offsets[i-1] {
			return Timeline{}, fmt.Errorf("stage %d: %w", i, ErrUnorderedTimeline)
		}
	}

	cp := make([]int, len(offsets))
	copy(cp, offsets)
	return Timeline{Start: start, Offsets: cp, MinimumOffset: minimumOffset}, nil
}

// Stages returns the number of timeline positions, terminal stage included.
func (t Timeline) Stages() int {
	return len(t.Offsets)
}

// TerminalStage is the index that triggers uninstall.
func (t Timeline) TerminalStage() int {
	return len(t.Offsets) - 1
}

// IsTerminal reports whether index is the uninstall stage.
func (t Timeline) IsTerminal(index int) bool {
	return index == t.TerminalStage()
}

// Thresholds returns the two gates that must both have passed before stage p.Index may be shown.
// time.Time is a value, so neither Start nor p.Date is modified.
func (t Timeline) Thresholds(p Progress) (timeline time.Time, offset time.Time) {
	timeline = t.Start.AddDate(0, 0, t.Offsets[p.Index])
	offset = p.Date.AddDate(0, 0, t.MinimumOffset)
	return timeline, offset
}

// NextEligible is the earliest moment at which stage p.Index passes both gates.
// The first stage is always eligible, so it returns the zero time for index 0.
func (t Timeline) NextEligible(p Progress) time.Time {
	if p.Index == 0 {
		return time.Time{}
	}
	tl, off := t.Thresholds(p)
	if tl.After(off) {
		return tl
	}
	return off
}
