// internal/app/sunset_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"extension_sunset/internal/domain/sunset"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrUninstalled = errors.New("extension already uninstalled")

// SunsetService runs the deprecation timeline: it evaluates a tick and performs the resulting side effect.
type SunsetService struct {
	timeline    sunset.Timeline
	content     sunset.Content
	store       sunset.StateStore
	notifier    sunset.Notifier
	uninstaller sunset.Uninstaller
	logger      *logrus.Entry
	now         func() time.Time

	mu          sync.Mutex // Serializes ticks from the timer and from admin commands
	uninstalled bool
}

func NewSunsetService(
	timeline sunset.Timeline,
	content sunset.Content,
	store sunset.StateStore,
	notifier sunset.Notifier,
	uninstaller sunset.Uninstaller,
	logger *logrus.Entry,
) *SunsetService {
	return &SunsetService{
		timeline:    timeline,
		content:     content,
		store:       store,
		notifier:    notifier,
		uninstaller: uninstaller,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *SunsetService) WithClock(now func() time.Time) *SunsetService {
	s.now = now
	return s
}

// Tick evaluates the timeline once and executes the decision.
func (s *SunsetService) Tick(ctx context.Context) (sunset.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uninstalled {
		return sunset.Decision{Action: sunset.ActionNone}, ErrUninstalled
	}

	log := s.logger.WithField("tick_id", uuid.NewString())
	now := s.now()

	raw, err := s.store.Load(ctx)
	if err != nil {
		// An unreadable store is indistinguishable from a first run.
		log.WithError(err).Warn("Could not load sunset state, treating it as absent")
		raw = sunset.RawState{}
	}

	d := s.timeline.Evaluate(raw, now)
	log = log.WithFields(logrus.Fields{"action": d.Action.String(), "stage": d.Stage})

	switch d.Action {
	case sunset.ActionNone:
		log.Debug("Sunset stage not due yet")
		return d, nil

	case sunset.ActionUninstall:
		log.Info("Terminal sunset stage reached, uninstalling")
		if err := s.uninstaller.Uninstall(ctx); err != nil {
			log.WithError(err).Error("Uninstall failed")
			return d, fmt.Errorf("uninstall at stage %d: %w", d.Stage, err)
		}
		s.uninstalled = true
		return d, nil

	case sunset.ActionShow:
		n := s.content.Notification(d.Stage)
		if err := s.notifier.Notify(ctx, n); err != nil {
			log.WithError(err).Error("Failed to display sunset notification")
			return d, fmt.Errorf("notify stage %d: %w", d.Stage, err)
		}
		if err := s.store.Save(ctx, d.Next); err != nil {
			// The same stage will be shown again on the next tick.
			log.WithError(err).Error("Failed to persist sunset state")
			return d, fmt.Errorf("save state after stage %d: %w", d.Stage, err)
		}
		log.WithField("next_index", d.Next.Index).Info("Sunset notification shown")
		return d, nil
	}

	return d, fmt.Errorf("unknown sunset action %d", d.Action)
}

// StatusReport describes where the timeline stands.
type StatusReport struct {
	Stages            int
	Index             int
	Reset             bool // Stored state was missing or malformed
	LastShown         time.Time
	TimelineThreshold time.Time
	OffsetThreshold   time.Time
	NextEligible      time.Time // Zero when the next tick will act unconditionally
	Terminal          bool
	Uninstalled       bool
}

// Status reads the stored state without changing it.
func (s *SunsetService) Status(ctx context.Context) (StatusReport, error) {
	raw, err := s.store.Load(ctx)
	if err != nil {
		return StatusReport{}, fmt.Errorf("load sunset state: %w", err)
	}

	s.mu.Lock()
	uninstalled := s.uninstalled
	s.mu.Unlock()

	p, ok := sunset.ParseProgress(raw, s.timeline.Stages())
	r := StatusReport{
		Stages:      s.timeline.Stages(),
		Index:       p.Index,
		Reset:       !ok,
		LastShown:   p.Date,
		Terminal:    s.timeline.IsTerminal(p.Index),
		Uninstalled: uninstalled,
	}
	if p.Index > 0 {
		r.TimelineThreshold, r.OffsetThreshold = s.timeline.Thresholds(p)
		r.NextEligible = s.timeline.NextEligible(p)
	}
	return r, nil
}
