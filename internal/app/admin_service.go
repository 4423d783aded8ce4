package app

import (
	"context"
	"fmt"

	"extension_sunset/internal/domain/sunset"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrAdminNotConfigured = fmt.Errorf("no admin is configured")

// SunsetOperator is the part of SunsetService exposed to admins.
type SunsetOperator interface {
	Tick(ctx context.Context) (sunset.Decision, error)
	Status(ctx context.Context) (StatusReport, error)
}

type AdminService struct {
	sunset          SunsetOperator
	adminTelegramID int64
}

func NewAdminService(op SunsetOperator, adminID int64) *AdminService {
	return &AdminService{
		sunset:          op,
		adminTelegramID: adminID,
	}
}

func (s *AdminService) authorize(performingAdminID int64) error {
	if s.adminTelegramID == 0 {
		return ErrAdminNotConfigured
	}
	if performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return nil
}

// Status reports the current sunset progress.
func (s *AdminService) Status(ctx context.Context, performingAdminID int64) (StatusReport, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return StatusReport{}, err
	}
	return s.sunset.Status(ctx)
}

// CheckNow runs a tick immediately instead of waiting for the timer. The usual gates still apply.
func (s *AdminService) CheckNow(ctx context.Context, performingAdminID int64) (sunset.Decision, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return sunset.Decision{}, err
	}
	return s.sunset.Tick(ctx)
}
