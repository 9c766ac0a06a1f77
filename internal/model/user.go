package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Role names stored in the `users.role` column.  Employees book and
// collect meals; canteen staff respond to requests and issue them;
// admin and HR manage prices, reports and administrative overrides.
const (
    RoleAdmin     = "admin"
    RoleHRManager = "hrmanager"
    RoleCanteen   = "canteen"
    RoleEmployee  = "employee"
)

// Sub-role names stored in `users.sub_role`.  Only employees carry a
// sub-role; it decides the payment classification applied when a
// meal is paid for.
const (
    SubRoleIntern    = "intern"
    SubRoleCasual    = "casual"
    SubRolePermanent = "permanent"
    SubRoleManpower  = "manpower"
)

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.  LoanAmount is a denormalized cache of the sum of
// outstanding booking balances for this user; the service layer
// recomputes and overwrites it after every balance mutation so the
// stored value never drifts for long.
//
// Fields:
//  ID             – primary key identifier of the user.
//  FirstName      – given name, used in notifications and reports.
//  LastName       – family name.
//  Username       – unique login name.
//  MobileNumber   – unique mobile number, second login factor.
//  Role           – role name (admin, hrmanager, canteen, employee).
//  SubRole        – employee payment category (nullable for staff).
//  CompanyName    – agency name for manpower employees (nullable).
//  BioID          – identifier reported by the biometric terminal
//                   on a fingerprint scan (nullable, unique when set).
//  LoanAmount     – cached sum of outstanding booking balances.
//  SuspendedUntil – end of a kiosk-login suspension window (nullable).
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type User struct {
    ID             uint64          // users.id
    FirstName      string          // users.first_name
    LastName       string          // users.last_name
    Username       string          // users.username
    MobileNumber   string          // users.mobile_number
    Role           string          // users.role
    SubRole        *string         // users.sub_role (nullable)
    CompanyName    *string         // users.company_name (nullable)
    BioID          *string         // users.bio_id (nullable)
    LoanAmount     decimal.Decimal // users.loan_amount
    SuspendedUntil *time.Time      // users.suspended_until (nullable)
    CreatedAt      time.Time       // users.created_at
    UpdatedAt      time.Time       // users.updated_at
}

// FullName joins first and last name for display in notifications
// and report rows.
func (u *User) FullName() string {
    return u.FirstName + " " + u.LastName
}

// LoanLimit returns the policy ceiling on outstanding debt for the
// user's sub-role.  The limit is derived, never stored: interns owe
// nothing, casual and manpower employees may run a small tab,
// permanent employees a larger one.
func (u *User) LoanLimit() decimal.Decimal {
    if u.SubRole == nil {
        return decimal.Zero
    }
    switch *u.SubRole {
    case SubRoleCasual, SubRoleManpower:
        return decimal.NewFromInt(5000)
    case SubRolePermanent:
        return decimal.NewFromInt(10000)
    default:
        return decimal.Zero
    }
}
