package scheduler

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"extension_sunset/internal/domain/sunset"

	"github.com/sirupsen/logrus"
)

func TestDelayedSchedule(t *testing.T) {
	s := newDelayedSchedule(time.Minute, 12*time.Hour)
	base := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	if got := s.Next(base); !got.Equal(base.Add(time.Minute)) {
		t.Fatalf("first Next = %v, want %v", got, base.Add(time.Minute))
	}
	second := base.Add(time.Minute)
	if got := s.Next(second); !got.Equal(second.Add(12 * time.Hour)) {
		t.Fatalf("second Next = %v, want %v", got, second.Add(12*time.Hour))
	}
	third := second.Add(12 * time.Hour)
	if got := s.Next(third); !got.Equal(third.Add(12 * time.Hour)) {
		t.Fatalf("third Next = %v", got)
	}
}

type countingTicker struct {
	calls atomic.Int32
	fired chan struct{}
}

func (c *countingTicker) Tick(ctx context.Context) (sunset.Decision, error) {
	if c.calls.Add(1) == 1 {
		close(c.fired)
	}
	if _, ok := ctx.Deadline(); !ok {
		return sunset.Decision{}, context.DeadlineExceeded
	}
	return sunset.Decision{}, nil
}

func quietEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestSunsetScheduler_FiresAfterInitialDelay(t *testing.T) {
	ticker := &countingTicker{fired: make(chan struct{})}
	s := NewSunsetScheduler(ticker, quietEntry(), 20*time.Millisecond, time.Hour, time.Second)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case <-ticker.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("tick did not fire after the initial delay")
	}

	if err := s.Start(); err != ErrAlreadyStarted {
		t.Fatalf("second Start err = %v, want ErrAlreadyStarted", err)
	}
}

func TestSunsetScheduler_UnregisterFromInsideTick(t *testing.T) {
	done := make(chan struct{})
	var s *SunsetScheduler
	ticker := tickFunc(func(ctx context.Context) (sunset.Decision, error) {
		s.Unregister()
		close(done)
		return sunset.Decision{Action: sunset.ActionUninstall}, nil
	})
	s = NewSunsetScheduler(ticker, quietEntry(), 10*time.Millisecond, time.Hour, time.Second)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Unregister from inside a tick did not return")
	}
	if len(s.cronEngine.Entries()) != 0 {
		t.Fatalf("entries left after Unregister: %d", len(s.cronEngine.Entries()))
	}
	// Unregistering twice is harmless.
	s.Unregister()
}

type tickFunc func(ctx context.Context) (sunset.Decision, error)

func (f tickFunc) Tick(ctx context.Context) (sunset.Decision, error) { return f(ctx) }
