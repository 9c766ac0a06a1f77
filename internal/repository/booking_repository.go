package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/model"
)

// BookingRepo provides CRUD operations for meal bookings.  The
// meal_bookings table carries a unique key on (user_id, date,
// meal_type), so concurrent submissions for the same slot serialize
// to a single winning row at the storage layer rather than through
// an application-level check-then-write.  All timestamps are stored
// in UTC.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, date, meal_type, status, code, payment_type,
       total_price, amount_paid, balance, verified_at, booked_at, created_at, updated_at`

// scanBooking reads one meal_bookings row.  The row argument may be
// a *sql.Row or the current position of *sql.Rows.
func scanBooking(row interface{ Scan(...any) error }) (*model.MealBooking, error) {
    var b model.MealBooking
    var code, payType sql.NullString
    var verifiedAt sql.NullTime
    err := row.Scan(
        &b.ID, &b.UserID, &b.Date, &b.MealType, &b.Status, &code, &payType,
        &b.TotalPrice, &b.AmountPaid, &b.Balance, &verifiedAt, &b.BookedAt,
        &b.CreatedAt, &b.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if code.Valid {
        v := code.String
        b.Code = &v
    }
    if payType.Valid {
        v := payType.String
        b.PaymentType = &v
    }
    if verifiedAt.Valid {
        t := verifiedAt.Time
        b.VerifiedAt = &t
    }
    return &b, nil
}

// UpsertBatch inserts the given bookings in a single statement.
// Rows hitting the unique (user_id, date, meal_type) key are
// overwritten in place: the slot returns to BOOKED with a fresh
// booked_at and any code, payment or verification left over from an
// earlier pass through the lifecycle is cleared.  Validation happens
// in the service layer before this is called; the whole batch lands
// atomically or not at all.  Passing an empty slice has no effect.
func (r *BookingRepo) UpsertBatch(ctx context.Context, bookings []model.MealBooking) error {
    if len(bookings) == 0 {
        return nil
    }
    var sb strings.Builder
    sb.WriteString(`INSERT INTO meal_bookings (user_id, date, meal_type, status, booked_at) VALUES `)
    args := make([]any, 0, len(bookings)*5)
    for i, b := range bookings {
        if i > 0 {
            sb.WriteString(",")
        }
        sb.WriteString("(?, ?, ?, ?, ?)")
        args = append(args, b.UserID, b.Date, b.MealType, model.StatusBooked, b.BookedAt)
    }
    sb.WriteString(` ON DUPLICATE KEY UPDATE
        status = VALUES(status),
        booked_at = VALUES(booked_at),
        code = NULL,
        payment_type = NULL,
        total_price = 0,
        amount_paid = 0,
        balance = 0,
        verified_at = NULL`)
    _, err := r.db.ExecContext(ctx, sb.String(), args...)
    return err
}

// GetByID returns one booking by primary key.  ErrBookingNotFound is
// returned when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.MealBooking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM meal_bookings WHERE id = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// GetByIDForUser returns one booking by primary key restricted to
// the given owner.  A booking that exists but belongs to someone
// else reads as ErrBookingNotFound so the ID space leaks nothing.
func (r *BookingRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.MealBooking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM meal_bookings WHERE id = ? AND user_id = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, id, userID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// FindForDay returns the booking for (user, date, meal type), the
// unique triple.  ErrBookingNotFound when the slot was never booked.
func (r *BookingRepo) FindForDay(ctx context.Context, userID uint64, date time.Time, mealType string) (*model.MealBooking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM meal_bookings
               WHERE user_id = ? AND date = ? AND meal_type = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, userID, date, mealType))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// ListForDay returns all of a user's bookings for one calendar day,
// ordered for stable display.
func (r *BookingRepo) ListForDay(ctx context.Context, userID uint64, date time.Time) ([]model.MealBooking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM meal_bookings
               WHERE user_id = ? AND date = ?
               ORDER BY FIELD(meal_type, 'breakfast', 'lunch', 'dinner')`
    rows, err := r.db.QueryContext(ctx, q, userID, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.MealBooking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    return out, rows.Err()
}

// Update persists the mutable lifecycle fields of a booking: status,
// code, payment breakdown and verification timestamp.  The identity
// fields (user, date, meal type) never change after creation.
func (r *BookingRepo) Update(ctx context.Context, b *model.MealBooking) error {
    const q = `UPDATE meal_bookings
               SET status = ?, code = ?, payment_type = ?, total_price = ?,
                   amount_paid = ?, balance = ?, verified_at = ?
               WHERE id = ?`
    var code, payType any
    if b.Code != nil {
        code = *b.Code
    }
    if b.PaymentType != nil {
        payType = *b.PaymentType
    }
    var verifiedAt any
    if b.VerifiedAt != nil {
        verifiedAt = *b.VerifiedAt
    }
    res, err := r.db.ExecContext(ctx, q, b.Status, code, payType,
        b.TotalPrice, b.AmountPaid, b.Balance, verifiedAt, b.ID)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        // RowsAffected is 0 both for a missing row and for a no-op
        // write; confirm existence before reporting not found.
        var one int
        if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM meal_bookings WHERE id = ?`, b.ID).Scan(&one); errors.Is(err, sql.ErrNoRows) {
            return ErrBookingNotFound
        }
    }
    return nil
}

// ListOutstanding returns the user's bookings with a positive
// balance ordered oldest meal date first — the order the debt
// waterfall consumes them in.  excludeID skips one booking (the one
// currently being issued); pass 0 to include everything.
func (r *BookingRepo) ListOutstanding(ctx context.Context, userID, excludeID uint64) ([]model.MealBooking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM meal_bookings
               WHERE user_id = ? AND balance > 0 AND id <> ?
               ORDER BY date ASC, id ASC`
    rows, err := r.db.QueryContext(ctx, q, userID, excludeID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.MealBooking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    return out, rows.Err()
}

// SumOutstanding returns the sum of positive balances across all of
// a user's bookings.  This derived sum is the source of truth for
// users.loan_amount; the cached column is overwritten with it after
// every balance mutation.
func (r *BookingRepo) SumOutstanding(ctx context.Context, userID uint64) (decimal.Decimal, error) {
    const q = `SELECT COALESCE(SUM(balance), 0) FROM meal_bookings
               WHERE user_id = ? AND balance > 0`
    var total decimal.Decimal
    if err := r.db.QueryRowContext(ctx, q, userID).Scan(&total); err != nil {
        return decimal.Zero, err
    }
    return total, nil
}

// Delete removes a booking outright.  Cancellation is a hard delete;
// the administrative override path snapshots the row into the audit
// log before calling this.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM meal_bookings WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        return ErrBookingNotFound
    }
    return nil
}

// CountServed returns how many of the user's bookings reached SERVED.
func (r *BookingRepo) CountServed(ctx context.Context, userID uint64) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM meal_bookings WHERE user_id = ? AND status = ?`,
        userID, model.StatusServed).Scan(&n)
    return n, err
}

// CountMissed returns the user's wastage: bookings still BOOKED
// whose meal date has already passed.
func (r *BookingRepo) CountMissed(ctx context.Context, userID uint64, today time.Time) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM meal_bookings WHERE user_id = ? AND status = ? AND date < ?`,
        userID, model.StatusBooked, today).Scan(&n)
    return n, err
}
