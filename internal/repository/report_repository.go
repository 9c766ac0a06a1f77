package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/model"
)

// ReportRepo derives read-only dashboard and report views by
// scanning the booking store and user financial state.  It never
// mutates anything; accuracy against current persisted state is the
// only invariant.
type ReportRepo struct {
    db *sql.DB
}

// NewReportRepo returns a new ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// DashboardStats is the all-time and today summary shown on the
// admin dashboard.
type DashboardStats struct {
    EmployeeCount    int64           `json:"employee_count"`
    OutstandingLoans decimal.Decimal `json:"outstanding_loans"`
    TotalBookings    int64           `json:"total_bookings"`
    CancelledCount   int64           `json:"cancelled_count"`
    WastageAllTime   int64           `json:"wastage_all_time"`
    Revenue          decimal.Decimal `json:"revenue"`
    IssuedToday      int64           `json:"issued_today"`
    WastageToday     int64           `json:"wastage_today"`
}

// Dashboard assembles the dashboard counters.  Wastage counts
// bookings still BOOKED whose meal date has passed; today's wastage
// counts today's bookings nobody has claimed yet.  The cancellation
// count comes from the audit log because cancelled rows are deleted.
func (r *ReportRepo) Dashboard(ctx context.Context, today time.Time) (*DashboardStats, error) {
    tomorrow := today.AddDate(0, 0, 1)
    var s DashboardStats
    steps := []struct {
        q    string
        args []any
        dest []any
    }{
        {`SELECT COUNT(*) FROM users WHERE role = ?`,
            []any{model.RoleEmployee}, []any{&s.EmployeeCount}},
        {`SELECT COALESCE(SUM(loan_amount), 0) FROM users WHERE role = ? AND loan_amount > 0`,
            []any{model.RoleEmployee}, []any{&s.OutstandingLoans}},
        {`SELECT COUNT(*) FROM meal_bookings`,
            nil, []any{&s.TotalBookings}},
        {`SELECT COUNT(*) FROM audit_logs WHERE action = ?`,
            []any{model.ActionMealCancelled}, []any{&s.CancelledCount}},
        {`SELECT COUNT(*) FROM meal_bookings WHERE status = ? AND date < ?`,
            []any{model.StatusBooked, today}, []any{&s.WastageAllTime}},
        {`SELECT COALESCE(SUM(total_price), 0) FROM meal_bookings WHERE status IN (?, ?, ?)`,
            []any{model.StatusServed, model.StatusBooked, model.StatusRequested}, []any{&s.Revenue}},
        {`SELECT COUNT(*) FROM meal_bookings WHERE status = ? AND date >= ? AND date < ?`,
            []any{model.StatusServed, today, tomorrow}, []any{&s.IssuedToday}},
        {`SELECT COUNT(*) FROM meal_bookings WHERE status = ? AND date >= ? AND date < ?`,
            []any{model.StatusBooked, today, tomorrow}, []any{&s.WastageToday}},
    }
    for _, st := range steps {
        if err := r.db.QueryRowContext(ctx, st.q, st.args...).Scan(st.dest...); err != nil {
            return nil, err
        }
    }
    return &s, nil
}

// EmployeeFinancialRow is one employee in the financial report:
// current debt against limit plus lifetime payments across all of
// their bookings.
type EmployeeFinancialRow struct {
    UserID            uint64          `json:"user_id"`
    Name              string          `json:"name"`
    MobileNumber      string          `json:"mobile_number"`
    SubRole           *string         `json:"sub_role,omitempty"`
    LoanAmount        decimal.Decimal `json:"loan_amount"`
    LoanLimit         decimal.Decimal `json:"loan_limit"`
    TotalPaidLifetime decimal.Decimal `json:"total_paid_lifetime"`
    LastActive        *string         `json:"last_active,omitempty"`
}

// EmployeeFinancials joins employees with their bookings and sums
// lifetime payments, sorted by highest debt first.
func (r *ReportRepo) EmployeeFinancials(ctx context.Context) ([]EmployeeFinancialRow, error) {
    const q = `SELECT u.id, CONCAT(u.first_name, ' ', u.last_name), u.mobile_number, u.sub_role,
                      u.loan_amount,
                      COALESCE(SUM(b.amount_paid), 0),
                      MAX(b.date)
               FROM users u
               LEFT JOIN meal_bookings b ON b.user_id = u.id
               WHERE u.role = ?
               GROUP BY u.id, u.first_name, u.last_name, u.mobile_number, u.sub_role, u.loan_amount
               ORDER BY u.loan_amount DESC`
    rows, err := r.db.QueryContext(ctx, q, model.RoleEmployee)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]EmployeeFinancialRow, 0)
    for rows.Next() {
        var row EmployeeFinancialRow
        var subRole sql.NullString
        var lastActive sql.NullTime
        if err := rows.Scan(&row.UserID, &row.Name, &row.MobileNumber, &subRole,
            &row.LoanAmount, &row.TotalPaidLifetime, &lastActive); err != nil {
            return nil, err
        }
        if subRole.Valid {
            v := subRole.String
            row.SubRole = &v
            u := model.User{SubRole: &v}
            row.LoanLimit = u.LoanLimit()
        } else {
            row.LoanLimit = decimal.Zero
        }
        if lastActive.Valid {
            d := lastActive.Time.UTC().Format("2006-01-02")
            row.LastActive = &d
        }
        out = append(out, row)
    }
    return out, rows.Err()
}

// BookingReportRow is one booking in the date-range report with the
// owner's display fields denormalized onto it.
type BookingReportRow struct {
    BookingID    uint64  `json:"booking_id"`
    Name         string  `json:"name"`
    MobileNumber string  `json:"mobile"`
    SubRole      *string `json:"type,omitempty"`
    Company      string  `json:"company"`
    MealType     string  `json:"meal"`
    Status       string  `json:"status"`
    BookedAt     string  `json:"time"`
    Date         string  `json:"date"`
}

// BookingsInRange returns one row per booking whose meal date falls
// in [from, to] inclusive, newest date first then meal order.
// Manpower employees show their agency name; everyone else shows as
// Internal.
func (r *ReportRepo) BookingsInRange(ctx context.Context, from, to time.Time) ([]BookingReportRow, error) {
    const q = `SELECT b.id, CONCAT(u.first_name, ' ', u.last_name), u.mobile_number,
                      u.sub_role, u.company_name, b.meal_type, b.status, b.booked_at, b.date
               FROM meal_bookings b
               JOIN users u ON u.id = b.user_id
               WHERE b.date >= ? AND b.date <= ?
               ORDER BY b.date DESC, FIELD(b.meal_type, 'breakfast', 'lunch', 'dinner')`
    rows, err := r.db.QueryContext(ctx, q, from, to)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]BookingReportRow, 0)
    for rows.Next() {
        var row BookingReportRow
        var subRole, company sql.NullString
        var bookedAt, date time.Time
        if err := rows.Scan(&row.BookingID, &row.Name, &row.MobileNumber,
            &subRole, &company, &row.MealType, &row.Status, &bookedAt, &date); err != nil {
            return nil, err
        }
        row.Company = "Internal"
        if subRole.Valid {
            v := subRole.String
            row.SubRole = &v
            if v == model.SubRoleManpower {
                if company.Valid && company.String != "" {
                    row.Company = company.String
                } else {
                    row.Company = "Unknown Agency"
                }
            }
        }
        row.BookedAt = bookedAt.UTC().Format(time.RFC3339)
        row.Date = date.UTC().Format("2006-01-02")
        out = append(out, row)
    }
    return out, rows.Err()
}
