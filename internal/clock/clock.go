// Package clock centralizes every wall-clock decision the booking
// lifecycle makes: the 7-day booking horizon, the per-meal request
// windows and the per-meal cancellation cutoffs.  All of them are
// defined in the canteen's civil time (Asia/Colombo) regardless of
// where the server is deployed, while stored dates are normalized to
// UTC midnight of the canteen-local calendar day.  Operations take a
// single "now" snapshot per call so a check never races the clock.
package clock

import (
    "time"

    "github.com/dilshan/canteen-meal-service/internal/model"
)

// ZoneName is the canonical canteen time zone.  Window and cutoff
// hours below are civil hours in this zone.
const ZoneName = "Asia/Colombo"

// HorizonDays is how far ahead a meal may be booked, inclusive of
// today and of the final day.
const HorizonDays = 7

var zone = mustZone()

func mustZone() *time.Location {
    loc, err := time.LoadLocation(ZoneName)
    if err != nil {
        // Colombo has a fixed +05:30 offset and no DST; fall back to
        // it when the zone database is unavailable.
        return time.FixedZone(ZoneName, 5*3600+1800)
    }
    return loc
}

// Clock supplies the current instant.  Handlers use the real clock;
// tests pin it.
type Clock interface {
    Now() time.Time
}

// System reads time.Now.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.  Used in tests.
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T }

// Normalize maps an instant to UTC midnight of its canteen-local
// calendar day.  Every stored booking date goes through this so the
// unique (user, date, meal) key compares calendar days, never
// instants.
func Normalize(t time.Time) time.Time {
    local := t.In(zone)
    return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the normalized form of the current canteen-local day.
func Today(now time.Time) time.Time { return Normalize(now) }

// WithinHorizon reports whether date falls inside [today, today+7],
// both ends inclusive.  Both arguments must already be normalized.
func WithinHorizon(date, today time.Time) bool {
    max := today.AddDate(0, 0, HorizonDays)
    return !date.Before(today) && !date.After(max)
}

// mealWindow is a daily request window in canteen-local hours.
type mealWindow struct {
    start int // inclusive
    end   int // exclusive
}

var requestWindows = map[string]mealWindow{
    model.MealBreakfast: {start: 7, end: 11},
    model.MealLunch:     {start: 12, end: 16},
    model.MealDinner:    {start: 18, end: 22},
}

// InRequestWindow reports whether a meal of the given type may be
// requested at the given instant.  The window start hour is
// inclusive and the end hour exclusive, evaluated in canteen-local
// time.
func InRequestWindow(mealType string, now time.Time) bool {
    w, ok := requestWindows[mealType]
    if !ok {
        return false
    }
    hour := now.In(zone).Hour()
    return hour >= w.start && hour < w.end
}

// WindowHours returns the canteen-local start and end hours of the
// request window for the meal type, for display in error messages.
func WindowHours(mealType string) (start, end int) {
    w := requestWindows[mealType]
    return w.start, w.end
}

// Cancellation cutoff hour on the day before the meal, per type.
var cancelCutoffs = map[string]int{
    model.MealBreakfast: 10,
    model.MealLunch:     14,
    model.MealDinner:    18,
}

// CancelDeadline returns the instant after which a booking for the
// given normalized meal date can no longer be cancelled by its
// owner: the cutoff hour in canteen-local time on the day before the
// meal.  Cancellation at exactly the deadline is still permitted;
// only now > deadline fails.
func CancelDeadline(mealType string, date time.Time) time.Time {
    cutoff := cancelCutoffs[mealType]
    local := date.In(time.UTC) // normalized dates carry the civil day in UTC fields
    prev := time.Date(local.Year(), local.Month(), local.Day(), cutoff, 0, 0, 0, zone)
    return prev.AddDate(0, 0, -1)
}
