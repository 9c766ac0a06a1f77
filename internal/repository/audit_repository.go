package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/dilshan/canteen-meal-service/internal/model"
)

// AuditRepo appends and lists immutable audit rows.  There is no
// update or delete: corrections get a new row.
type AuditRepo struct {
    db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// Append inserts one audit row and populates its generated ID.
// Administrative override paths must see this succeed before their
// response counts as successful.
func (r *AuditRepo) Append(ctx context.Context, entry *model.AuditLog) error {
    const q = `INSERT INTO audit_logs (action, performed_by, target_user, details, metadata, created_at)
               VALUES (?, ?, ?, ?, ?, ?)`
    var target any
    if entry.TargetUser != nil {
        target = *entry.TargetUser
    }
    if entry.CreatedAt.IsZero() {
        entry.CreatedAt = time.Now().UTC()
    }
    res, err := r.db.ExecContext(ctx, q, entry.Action, entry.PerformedBy, target,
        entry.Details, entry.Metadata, entry.CreatedAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    entry.ID = uint64(id)
    return nil
}

// AuditEntry is one audit row joined with display names for the
// actor and target, newest first, as the admin log view shows it.
type AuditEntry struct {
    ID            uint64  `json:"id"`
    Action        string  `json:"action"`
    PerformedBy   uint64  `json:"performed_by"`
    PerformerName string  `json:"performer_name"`
    TargetUser    *uint64 `json:"target_user,omitempty"`
    TargetName    *string `json:"target_name,omitempty"`
    Details       string  `json:"details"`
    Metadata      string  `json:"metadata"`
    CreatedAt     string  `json:"created_at"`
}

// List returns all audit rows newest first with actor and target
// names denormalized for display.
func (r *AuditRepo) List(ctx context.Context) ([]AuditEntry, error) {
    const q = `SELECT a.id, a.action, a.performed_by,
                      CONCAT(p.first_name, ' ', p.last_name),
                      a.target_user,
                      CASE WHEN t.id IS NULL THEN NULL ELSE CONCAT(t.first_name, ' ', t.last_name) END,
                      a.details, a.metadata, a.created_at
               FROM audit_logs a
               JOIN users p ON p.id = a.performed_by
               LEFT JOIN users t ON t.id = a.target_user
               ORDER BY a.created_at DESC, a.id DESC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]AuditEntry, 0)
    for rows.Next() {
        var e AuditEntry
        var target sql.NullInt64
        var targetName sql.NullString
        var createdAt time.Time
        if err := rows.Scan(&e.ID, &e.Action, &e.PerformedBy, &e.PerformerName,
            &target, &targetName, &e.Details, &e.Metadata, &createdAt); err != nil {
            return nil, err
        }
        if target.Valid {
            v := uint64(target.Int64)
            e.TargetUser = &v
        }
        if targetName.Valid {
            v := targetName.String
            e.TargetName = &v
        }
        e.CreatedAt = createdAt.UTC().Format(time.RFC3339)
        out = append(out, e)
    }
    return out, rows.Err()
}

// CountByAction returns how many audit rows carry the given action.
// The dashboard derives its cancellation count from this, since
// cancelled bookings are hard-deleted from meal_bookings.
func (r *AuditRepo) CountByAction(ctx context.Context, action string) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM audit_logs WHERE action = ?`, action).Scan(&n)
    return n, err
}
