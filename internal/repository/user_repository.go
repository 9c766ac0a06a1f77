package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/model"
)

// UserRepo provides lookups and financial-state updates for users.
// Identity itself (registration, sessions) lives outside this
// service; the repo only resolves already-known principals and
// keeps the cached loan amount and suspension window current.
type UserRepo struct {
    db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, first_name, last_name, username, mobile_number, role, sub_role,
       company_name, bio_id, loan_amount, suspended_until, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
    var u model.User
    var subRole, company, bioID sql.NullString
    var suspended sql.NullTime
    err := row.Scan(
        &u.ID, &u.FirstName, &u.LastName, &u.Username, &u.MobileNumber, &u.Role,
        &subRole, &company, &bioID, &u.LoanAmount, &suspended,
        &u.CreatedAt, &u.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if subRole.Valid {
        v := subRole.String
        u.SubRole = &v
    }
    if company.Valid {
        v := company.String
        u.CompanyName = &v
    }
    if bioID.Valid {
        v := bioID.String
        u.BioID = &v
    }
    if suspended.Valid {
        t := suspended.Time
        u.SuspendedUntil = &t
    }
    return &u, nil
}

// GetByID returns one user by primary key, or ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
    const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
    u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrUserNotFound
    }
    return u, err
}

// GetByCredentials resolves the username + mobile-number pair used
// for login.  Both must match the same row.
func (r *UserRepo) GetByCredentials(ctx context.Context, username, mobileNumber string) (*model.User, error) {
    const q = `SELECT ` + userColumns + ` FROM users WHERE username = ? AND mobile_number = ?`
    u, err := scanUser(r.db.QueryRowContext(ctx, q, username, mobileNumber))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrUserNotFound
    }
    return u, err
}

// GetByBioID resolves the identifier the biometric terminal reports
// on a fingerprint scan.
func (r *UserRepo) GetByBioID(ctx context.Context, bioID string) (*model.User, error) {
    const q = `SELECT ` + userColumns + ` FROM users WHERE bio_id = ?`
    u, err := scanUser(r.db.QueryRowContext(ctx, q, bioID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrUserNotFound
    }
    return u, err
}

// SetLoanAmount overwrites the cached loan total with a freshly
// derived sum of outstanding balances.
func (r *UserRepo) SetLoanAmount(ctx context.Context, userID uint64, amount decimal.Decimal) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE users SET loan_amount = ? WHERE id = ?`, amount, userID)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        var one int
        if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&one); errors.Is(err, sql.ErrNoRows) {
            return ErrUserNotFound
        }
    }
    return nil
}

// ClearSuspension nulls out an elapsed suspension window.  Called as
// a side effect of kiosk lookup once the stored interval has passed.
func (r *UserRepo) ClearSuspension(ctx context.Context, userID uint64) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE users SET suspended_until = NULL WHERE id = ?`, userID)
    return err
}
