package service

import (
    "context"
    "time"

    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/model"
)

// Store interfaces consumed by the lifecycle engine.  The MySQL
// repositories satisfy them in production; the engine tests use
// in-memory fakes.  Each method is atomic at the storage layer —
// the unique (user, date, meal type) key does the serializing for
// booking writes, and the waterfall adds its own per-user mutual
// exclusion on top.

// BookingStore persists meal bookings.
type BookingStore interface {
    UpsertBatch(ctx context.Context, bookings []model.MealBooking) error
    GetByID(ctx context.Context, id uint64) (*model.MealBooking, error)
    GetByIDForUser(ctx context.Context, id, userID uint64) (*model.MealBooking, error)
    FindForDay(ctx context.Context, userID uint64, date time.Time, mealType string) (*model.MealBooking, error)
    ListForDay(ctx context.Context, userID uint64, date time.Time) ([]model.MealBooking, error)
    Update(ctx context.Context, b *model.MealBooking) error
    ListOutstanding(ctx context.Context, userID, excludeID uint64) ([]model.MealBooking, error)
    SumOutstanding(ctx context.Context, userID uint64) (decimal.Decimal, error)
    Delete(ctx context.Context, id uint64) error
    CountServed(ctx context.Context, userID uint64) (int64, error)
    CountMissed(ctx context.Context, userID uint64, today time.Time) (int64, error)
}

// UserStore resolves principals and keeps the cached loan total.
type UserStore interface {
    GetByID(ctx context.Context, id uint64) (*model.User, error)
    SetLoanAmount(ctx context.Context, userID uint64, amount decimal.Decimal) error
}

// PriceStore reads the single price record, zero-valued when unset.
type PriceStore interface {
    Get(ctx context.Context) (*model.MealPrice, error)
}

// AuditStore appends immutable audit rows.
type AuditStore interface {
    Append(ctx context.Context, entry *model.AuditLog) error
}
