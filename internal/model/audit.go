package model

import "time"

// Audit action names recorded in `audit_logs.action`.
const (
    ActionMealCancelled = "MEAL_CANCELLED"
    ActionLoanSettled   = "LOAN_SETTLED"
    ActionPricesUpdated = "PRICES_UPDATED"
)

// AuditLog is one immutable row in the `audit_logs` table.  Audit
// rows are append-only: administrative overrides (cancellation with
// reason, price changes, manual loan repayments) must write one
// before their response is considered successful.
//
// Fields:
//  ID          – primary key identifier.
//  Action      – action name, e.g. MEAL_CANCELLED.
//  PerformedBy – staff member who performed the action.
//  TargetUser  – employee the action concerned (nullable).
//  Details     – free-text reason or summary.
//  Metadata    – JSON-encoded snapshot of affected records.
//  CreatedAt   – timestamp of the action.
type AuditLog struct {
    ID          uint64     // audit_logs.id
    Action      string     // audit_logs.action
    PerformedBy uint64     // audit_logs.performed_by
    TargetUser  *uint64    // audit_logs.target_user (nullable)
    Details     string     // audit_logs.details
    Metadata    string     // audit_logs.metadata (JSON text)
    CreatedAt   time.Time  // audit_logs.created_at
}
