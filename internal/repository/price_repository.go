package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/dilshan/canteen-meal-service/internal/model"
)

// PriceRepo manages the single meal_prices row.  "There is only
// ever one record" is a repository invariant, not a language-level
// singleton: reads fall back to zero prices when the row was never
// written, and writes always land on id = 1.
type PriceRepo struct {
    db *sql.DB
}

// NewPriceRepo returns a new PriceRepo bound to the given database.
func NewPriceRepo(db *sql.DB) *PriceRepo { return &PriceRepo{db: db} }

// Get returns the current prices.  When no prices were ever
// configured, all three read as zero with UpdatedBy = 0.
func (r *PriceRepo) Get(ctx context.Context) (*model.MealPrice, error) {
    const q = `SELECT breakfast, lunch, dinner, updated_by, updated_at
               FROM meal_prices WHERE id = 1`
    var p model.MealPrice
    var updatedBy sql.NullInt64
    var updatedAt sql.NullTime
    err := r.db.QueryRowContext(ctx, q).Scan(&p.Breakfast, &p.Lunch, &p.Dinner, &updatedBy, &updatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return &model.MealPrice{}, nil
    }
    if err != nil {
        return nil, err
    }
    if updatedBy.Valid {
        p.UpdatedBy = uint64(updatedBy.Int64)
    }
    if updatedAt.Valid {
        p.UpdatedAt = updatedAt.Time
    }
    return &p, nil
}

// Upsert writes the price record, creating the row on first use and
// overwriting it afterwards.
func (r *PriceRepo) Upsert(ctx context.Context, p *model.MealPrice) error {
    const q = `INSERT INTO meal_prices (id, breakfast, lunch, dinner, updated_by, updated_at)
               VALUES (1, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                   breakfast = VALUES(breakfast),
                   lunch = VALUES(lunch),
                   dinner = VALUES(dinner),
                   updated_by = VALUES(updated_by),
                   updated_at = VALUES(updated_at)`
    _, err := r.db.ExecContext(ctx, q, p.Breakfast, p.Lunch, p.Dinner, p.UpdatedBy, time.Now().UTC())
    return err
}
