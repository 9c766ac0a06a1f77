package clock

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/dilshan/canteen-meal-service/internal/model"
)

func TestNormalizeUsesCanteenLocalDay(t *testing.T) {
    // 23:30 UTC on 10 March is already 05:00 on 11 March in Colombo.
    late := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
    got := Normalize(late)
    assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), got)

    // Midday maps to the same calendar day.
    noon := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
    assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Normalize(noon))
}

func TestNormalizeIsIdempotent(t *testing.T) {
    d := Normalize(time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC))
    assert.Equal(t, d, Normalize(d))
}

func TestWithinHorizonBounds(t *testing.T) {
    today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

    assert.True(t, WithinHorizon(today, today))
    assert.True(t, WithinHorizon(today.AddDate(0, 0, HorizonDays), today))
    assert.False(t, WithinHorizon(today.AddDate(0, 0, HorizonDays+1), today))
    assert.False(t, WithinHorizon(today.AddDate(0, 0, -1), today))
}

func TestRequestWindowBoundaries(t *testing.T) {
    // Colombo civil hour H is H-5:30 UTC.
    at := func(h, m int) time.Time {
        return time.Date(2026, 3, 10, h, m, 0, 0, time.FixedZone("IST", 5*3600+1800))
    }

    cases := []struct {
        mealType string
        now      time.Time
        want     bool
    }{
        {model.MealBreakfast, at(6, 59), false},
        {model.MealBreakfast, at(7, 0), true},
        {model.MealBreakfast, at(10, 59), true},
        {model.MealBreakfast, at(11, 0), false},
        {model.MealLunch, at(12, 0), true},
        {model.MealLunch, at(15, 59), true},
        {model.MealLunch, at(16, 0), false},
        {model.MealDinner, at(17, 59), false},
        {model.MealDinner, at(18, 0), true},
        {model.MealDinner, at(21, 59), true},
        {model.MealDinner, at(22, 0), false},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, InRequestWindow(tc.mealType, tc.now),
            "%s at %s", tc.mealType, tc.now.Format("15:04"))
    }

    assert.False(t, InRequestWindow("brunch", at(12, 0)))
}

func TestWindowHours(t *testing.T) {
    start, end := WindowHours(model.MealBreakfast)
    assert.Equal(t, 7, start)
    assert.Equal(t, 11, end)
}

func TestCancelDeadlineIsDayBeforeCutoff(t *testing.T) {
    // Meal on 11 March; lunch cutoff is 14:00 Colombo on 10 March.
    date := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
    deadline := CancelDeadline(model.MealLunch, date)

    want := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC) // 14:00 +05:30
    require.True(t, deadline.Equal(want), "deadline = %s", deadline.UTC())

    breakfast := CancelDeadline(model.MealBreakfast, date)
    assert.True(t, breakfast.Equal(time.Date(2026, 3, 10, 4, 30, 0, 0, time.UTC)))

    dinner := CancelDeadline(model.MealDinner, date)
    assert.True(t, dinner.Equal(time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)))
}

func TestFixedClock(t *testing.T) {
    at := time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC)
    var c Clock = Fixed{T: at}
    assert.Equal(t, at, c.Now())
}
