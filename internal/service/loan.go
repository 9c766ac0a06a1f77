package service

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/model"
    "github.com/dilshan/canteen-meal-service/internal/queue"
)

// LoanService owns the debt-settlement waterfall: applying a lump
// payment across a user's outstanding bookings oldest-first until
// the amount runs out, then rewriting the cached loan total from
// the remaining balances.  Two entry points share it — manual staff
// repayment, and issuance-time overpayment with the booking being
// issued excluded (it was settled directly) — and both produce
// identical ledger semantics.
type LoanService struct {
    Bookings BookingStore
    Users    UserStore
    Audit    AuditStore

    mu    sync.Mutex
    locks map[uint64]*sync.Mutex
}

// NewLoanService constructs a LoanService over the given stores.
func NewLoanService(bookings BookingStore, users UserStore, audit AuditStore) *LoanService {
    return &LoanService{
        Bookings: bookings,
        Users:    users,
        Audit:    audit,
        locks:    make(map[uint64]*sync.Mutex),
    }
}

// userLock returns the mutex serializing waterfall runs for one
// user.  Concurrent issuance and repayment against the same user
// would otherwise double-count or under-apply payments; this is the
// one place the engine needs genuine mutual exclusion.
func (s *LoanService) userLock(userID uint64) *sync.Mutex {
    s.mu.Lock()
    defer s.mu.Unlock()
    l, ok := s.locks[userID]
    if !ok {
        l = &sync.Mutex{}
        s.locks[userID] = l
    }
    return l
}

// SettlementResult summarizes one waterfall run.
type SettlementResult struct {
    Amount          decimal.Decimal
    BookingsTouched []uint64
    LoanBefore      decimal.Decimal
    LoanAfter       decimal.Decimal
}

// Repay applies a manual loan repayment initiated by staff.  The
// amount must be positive and the user must exist; nothing is
// mutated otherwise.  The audit row is part of the operation — a
// failed append fails the repayment response.
func (s *LoanService) Repay(ctx context.Context, staffID, userID uint64, amount decimal.Decimal) (*SettlementResult, []queue.Envelope, error) {
    if amount.LessThanOrEqual(decimal.Zero) {
        return nil, nil, &ValidationError{Reason: "repayment amount must be positive"}
    }
    if _, err := s.Users.GetByID(ctx, userID); err != nil {
        return nil, nil, err
    }
    res, err := s.Settle(ctx, staffID, userID, amount, 0)
    if err != nil {
        return nil, nil, err
    }
    events := []queue.Envelope{
        envelope("wallet_refresh", userChannel(userID), queue.WalletRefreshEvent{UserID: userID}),
        envelope("loan_settled", "canteen", queue.LoanSettledEvent{
            UserID:          userID,
            Amount:          res.Amount.String(),
            BookingsTouched: res.BookingsTouched,
            LoanBefore:      res.LoanBefore.String(),
            LoanAfter:       res.LoanAfter.String(),
        }),
    }
    return res, events, nil
}

// Settle runs the waterfall for amount against the user's unpaid
// bookings, skipping excludeID (0 skips nothing).  Touched bookings
// are persisted one by one as they are updated; the aggregate
// rewrite at the end is the self-healing recompute, never an
// increment.  Amount left over once every debt is cleared is simply
// unused.  Partial application is normal, not an error.
func (s *LoanService) Settle(ctx context.Context, performedBy, userID uint64, amount decimal.Decimal, excludeID uint64) (*SettlementResult, error) {
    if amount.LessThanOrEqual(decimal.Zero) {
        return nil, &ValidationError{Reason: "settlement amount must be positive"}
    }

    lock := s.userLock(userID)
    lock.Lock()
    defer lock.Unlock()

    before, err := s.Bookings.SumOutstanding(ctx, userID)
    if err != nil {
        return nil, err
    }
    outstanding, err := s.Bookings.ListOutstanding(ctx, userID, excludeID)
    if err != nil {
        return nil, err
    }

    remaining := amount
    touched := make([]uint64, 0, len(outstanding))
    for i := range outstanding {
        if !remaining.IsPositive() {
            break
        }
        b := outstanding[i]
        payment := decimal.Min(remaining, b.Balance)
        b.AmountPaid = b.AmountPaid.Add(payment)
        b.Balance = b.Balance.Sub(payment)
        remaining = remaining.Sub(payment)
        if err := s.Bookings.Update(ctx, &b); err != nil {
            return nil, err
        }
        touched = append(touched, b.ID)
    }

    after, err := s.recomputeLoan(ctx, userID)
    if err != nil {
        return nil, err
    }

    res := &SettlementResult{
        Amount:          amount,
        BookingsTouched: touched,
        LoanBefore:      before,
        LoanAfter:       after,
    }
    meta, _ := json.Marshal(map[string]any{
        "amount":      amount.String(),
        "bookings":    touched,
        "loan_before": before.String(),
        "loan_after":  after.String(),
    })
    entry := &model.AuditLog{
        Action:      model.ActionLoanSettled,
        PerformedBy: performedBy,
        TargetUser:  &userID,
        Details:     fmt.Sprintf("settled %s against %d booking(s)", amount.String(), len(touched)),
        Metadata:    string(meta),
    }
    if err := s.Audit.Append(ctx, entry); err != nil {
        return nil, err
    }
    return res, nil
}

// recomputeLoan rewrites users.loan_amount as the sum of the user's
// positive balances.  Every balance-mutating path in the engine ends
// here, so the cached column converges even if an earlier rewrite
// was lost.
func (s *LoanService) recomputeLoan(ctx context.Context, userID uint64) (decimal.Decimal, error) {
    total, err := s.Bookings.SumOutstanding(ctx, userID)
    if err != nil {
        return decimal.Zero, err
    }
    if err := s.Users.SetLoanAmount(ctx, userID, total); err != nil {
        return decimal.Zero, err
    }
    return total, nil
}

// WalletStats is the employee-facing financial summary.
type WalletStats struct {
    SuccessMeals int64           `json:"success_meals"`
    MissedMeals  int64           `json:"missed_meals"`
    LoanAmount   decimal.Decimal `json:"loan_amount"`
    LoanLimit    decimal.Decimal `json:"loan_limit"`
    SubRole      *string         `json:"sub_role,omitempty"`
}

// Wallet derives the user's meal counts and loan position.  The
// loan amount shown is the freshly derived sum, and the cached
// column is overwritten with it on the way out (self-heal on read).
func (s *LoanService) Wallet(ctx context.Context, userID uint64, today time.Time) (*WalletStats, error) {
    user, err := s.Users.GetByID(ctx, userID)
    if err != nil {
        return nil, err
    }
    served, err := s.Bookings.CountServed(ctx, userID)
    if err != nil {
        return nil, err
    }
    missed, err := s.Bookings.CountMissed(ctx, userID, today)
    if err != nil {
        return nil, err
    }
    loan, err := s.recomputeLoan(ctx, userID)
    if err != nil {
        return nil, err
    }
    return &WalletStats{
        SuccessMeals: served,
        MissedMeals:  missed,
        LoanAmount:   loan,
        LoanLimit:    user.LoanLimit(),
        SubRole:      user.SubRole,
    }, nil
}
