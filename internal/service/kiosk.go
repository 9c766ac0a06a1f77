package service

import (
    "context"

    "github.com/dilshan/canteen-meal-service/internal/clock"
    "github.com/dilshan/canteen-meal-service/internal/model"
)

// KioskStore is the user lookup surface the biometric bridge needs.
type KioskStore interface {
    GetByBioID(ctx context.Context, bioID string) (*model.User, error)
    ClearSuspension(ctx context.Context, userID uint64) error
}

// KioskService resolves a raw terminal identifier to a user and
// enforces the suspension window on kiosk logins.
type KioskService struct {
    Users KioskStore
    Clock clock.Clock
}

// NewKioskService constructs a KioskService.
func NewKioskService(users KioskStore, clk clock.Clock) *KioskService {
    return &KioskService{Users: users, Clock: clk}
}

// Resolve maps the identifier the terminal reported on a scan to a
// user.  A login inside a stored suspension interval is rejected
// with the suspension end date; an interval that has already
// elapsed is cleared as a side effect of the lookup, so the same
// scan succeeds.
func (s *KioskService) Resolve(ctx context.Context, bioID string) (*model.User, error) {
    user, err := s.Users.GetByBioID(ctx, bioID)
    if err != nil {
        return nil, err
    }
    if user.SuspendedUntil != nil {
        if s.Clock.Now().Before(*user.SuspendedUntil) {
            return nil, &SuspendedError{Until: *user.SuspendedUntil}
        }
        if err := s.Users.ClearSuspension(ctx, user.ID); err != nil {
            return nil, err
        }
        user.SuspendedUntil = nil
    }
    return user, nil
}
