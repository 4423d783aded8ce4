package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

// delayedSchedule fires once after delay, then every period.
// cron calls Next from its run loop only, so the armed flag needs no locking.
type delayedSchedule struct {
	delay  time.Duration
	period cron.ConstantDelaySchedule
	armed  bool
}

func newDelayedSchedule(delay, period time.Duration) *delayedSchedule {
	return &delayedSchedule{delay: delay, period: cron.Every(period)}
}

func (s *delayedSchedule) Next(t time.Time) time.Time {
	if !s.armed {
		s.armed = true
		return t.Add(s.delay)
	}
	return s.period.Next(t)
}
