// Package service implements the meal-booking lifecycle: the booking
// state machine, the payment policy and the loan-ledger waterfall.
// Handlers stay thin; everything with an invariant lives here, built
// on small store interfaces so the engine tests run against fakes.
package service

import (
    "errors"
    "fmt"
    "time"
)

// Sentinel errors surfaced by lifecycle operations.  Handlers map
// them onto HTTP statuses with errors.Is.
var (
    // ErrAlreadyCollected is returned for any verify, pay or issue
    // attempt against a booking that already reached SERVED.  Served
    // is terminal; such attempts are conflicts, never silent no-ops.
    ErrAlreadyCollected = errors.New("meal already collected")

    // ErrInvalidTransition is returned when an operation targets a
    // booking whose status does not permit it, e.g. responding to a
    // request that was already resolved.
    ErrInvalidTransition = errors.New("booking status does not allow this operation")

    // ErrCodeMismatch is returned when a submitted verification code
    // does not match the stored one.  The stored code stays intact.
    ErrCodeMismatch = errors.New("verification code mismatch")
)

// ValidationError reports malformed or out-of-range input.  Nothing
// is mutated when one is returned.
type ValidationError struct {
    Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// TimeWindowError reports a meal request outside the meal type's
// daily serving window.
type TimeWindowError struct {
    MealType string
    Start    int // canteen-local hour, inclusive
    End      int // canteen-local hour, exclusive
}

func (e *TimeWindowError) Error() string {
    return fmt.Sprintf("it is not %s time: requests are open %02d:00-%02d:00",
        e.MealType, e.Start, e.End)
}

// DeadlineExceededError reports a cancellation attempted after the
// meal type's cutoff on the day before the meal.
type DeadlineExceededError struct {
    MealType string
    Deadline time.Time
}

func (e *DeadlineExceededError) Error() string {
    return fmt.Sprintf("%s can no longer be cancelled: deadline was %s",
        e.MealType, e.Deadline.Format(time.RFC3339))
}

// SuspendedError rejects a kiosk login while the user's suspension
// window is still open.
type SuspendedError struct {
    Until time.Time
}

func (e *SuspendedError) Error() string {
    return fmt.Sprintf("account suspended until %s", e.Until.Format("2006-01-02"))
}
