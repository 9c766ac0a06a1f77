package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Meal type names stored in `meal_bookings.meal_type`.
const (
    MealBreakfast = "breakfast"
    MealLunch     = "lunch"
    MealDinner    = "dinner"
)

// ValidMealType reports whether s names one of the three meal types.
func ValidMealType(s string) bool {
    return s == MealBreakfast || s == MealLunch || s == MealDinner
}

// Booking status values stored in `meal_bookings.status`.  A booking
// moves BOOKED → REQUESTED → VERIFIED → SERVED; the canteen may
// reject a request (REJECTED, terminal) or push a verified booking
// back to BOOKED so the employee can retry.  VERIFIED is an explicit
// state of its own rather than "requested with a verification
// timestamp" so the transition table stays checkable.
const (
    StatusBooked    = "booked"
    StatusRequested = "requested"
    StatusVerified  = "verified"
    StatusServed    = "served"
    StatusRejected  = "rejected"
)

// Payment classifications stored in `meal_bookings.payment_type`.
const (
    PaymentFree     = "free"
    PaymentPayNow   = "pay_now"
    PaymentPayLater = "pay_later"
)

// MealBooking represents one reserved meal as stored in the
// `meal_bookings` table.  There is exactly one row per
// (user, date, meal type) triple; the table carries a unique key on
// that triple and re-booking the same slot overwrites in place.
// Date holds UTC midnight of the canteen-local calendar day with no
// time-of-day component.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the booking.
//  Date        – calendar day of the meal (normalized midnight).
//  MealType    – breakfast, lunch or dinner.
//  Status      – state machine position (see status constants).
//  Code        – single-use 4-digit verification code (nullable;
//                present only between acceptance and verification).
//  PaymentType – payment classification (nullable until computed).
//  TotalPrice  – price taken from the price record at payment time.
//  AmountPaid  – amount collected so far.
//  Balance     – max(0, TotalPrice − AmountPaid); outstanding debt.
//  VerifiedAt  – when the code was verified (nullable).
//  BookedAt    – when the booking was (last) submitted.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type MealBooking struct {
    ID          uint64          // meal_bookings.id
    UserID      uint64          // meal_bookings.user_id
    Date        time.Time       // meal_bookings.date
    MealType    string          // meal_bookings.meal_type
    Status      string          // meal_bookings.status
    Code        *string         // meal_bookings.code (nullable)
    PaymentType *string         // meal_bookings.payment_type (nullable)
    TotalPrice  decimal.Decimal // meal_bookings.total_price
    AmountPaid  decimal.Decimal // meal_bookings.amount_paid
    Balance     decimal.Decimal // meal_bookings.balance
    VerifiedAt  *time.Time      // meal_bookings.verified_at (nullable)
    BookedAt    time.Time       // meal_bookings.booked_at
    CreatedAt   time.Time       // meal_bookings.created_at
    UpdatedAt   time.Time       // meal_bookings.updated_at
}
