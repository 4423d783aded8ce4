package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"extension_sunset/internal/domain/sunset"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var ErrAlreadyStarted = errors.New("sunset scheduler already started")

// Ticker is the handler invoked on every timer tick.
type Ticker interface {
	Tick(ctx context.Context) (sunset.Decision, error)
}

// SunsetScheduler fires the sunset tick once after an initial delay and then periodically.
type SunsetScheduler struct {
	cronEngine   *cron.Cron
	ticker       Ticker
	logger       *logrus.Entry
	initialDelay time.Duration
	period       time.Duration
	tickTimeout  time.Duration

	mu      sync.Mutex
	entryID cron.EntryID
	started bool
}

func NewSunsetScheduler(
	ticker Ticker,
	logger *logrus.Entry,
	initialDelay time.Duration,
	period time.Duration,
	tickTimeout time.Duration,
) *SunsetScheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &SunsetScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // Use server's local time for cron
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		ticker:       ticker,
		logger:       logger,
		initialDelay: initialDelay,
		period:       period,
		tickTimeout:  tickTimeout,
	}
}

// Start registers the tick job and starts the timer.
func (s *SunsetScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}

	s.logger.WithFields(logrus.Fields{
		"initial_delay": s.initialDelay.String(),
		"period":        s.period.String(),
	}).Info("Starting sunset scheduler...")

	s.entryID = s.cronEngine.Schedule(newDelayedSchedule(s.initialDelay, s.period), cron.FuncJob(s.runTick))
	s.cronEngine.Start()
	s.started = true

	s.logger.Info("Sunset scheduler started.")
	return nil
}

func (s *SunsetScheduler) runTick() {
	ctx := context.Background()
	if s.tickTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.tickTimeout)
		defer cancel()
	}

	s.logger.Debug("Sunset tick triggered.")
	if _, err := s.ticker.Tick(ctx); err != nil {
		s.logger.WithError(err).Error("Sunset tick failed")
	}
}

// Unregister removes the tick job and stops the timer without waiting for a running tick,
// so it is safe to call from inside the tick itself.
func (s *SunsetScheduler) Unregister() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.cronEngine.Remove(s.entryID)
	s.cronEngine.Stop()
	s.started = false
	s.logger.Info("Sunset scheduler unregistered.")
}

// Stop stops the timer and waits for a running tick to finish.
func (s *SunsetScheduler) Stop() {
	s.logger.Info("Stopping sunset scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	s.logger.Info("Sunset scheduler gracefully stopped.")
}
