package service

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/clock"
    "github.com/dilshan/canteen-meal-service/internal/model"
    "github.com/dilshan/canteen-meal-service/internal/queue"
)

// BookingService drives a booking through its lifecycle:
//
//	booked → requested → verified → served
//
// with rejection terminal out of requested, and an explicit
// reject-issue path resetting a request back to booked.  Each
// operation snapshots "now" once from the injected clock, mutates
// through the stores, and returns the notification events for the
// handler to dispatch after the write.
type BookingService struct {
    Bookings BookingStore
    Users    UserStore
    Prices   PriceStore
    Audit    AuditStore
    Loans    *LoanService
    Clock    clock.Clock
}

// NewBookingService constructs a BookingService over the given
// stores, sharing the loan service's waterfall for settlement.
func NewBookingService(bookings BookingStore, users UserStore, prices PriceStore, audit AuditStore, loans *LoanService, clk clock.Clock) *BookingService {
    return &BookingService{
        Bookings: bookings,
        Users:    users,
        Prices:   prices,
        Audit:    audit,
        Loans:    loans,
        Clock:    clk,
    }
}

func envelope(event, channel string, payload any) queue.Envelope {
    return queue.Envelope{
        Event:   event,
        Channel: channel,
        Payload: payload,
        At:      time.Now().UTC().Format(time.RFC3339),
    }
}

func userChannel(userID uint64) string { return fmt.Sprintf("user:%d", userID) }

// BookingRequest is one slot in a booking submission.
type BookingRequest struct {
    Date     time.Time
    MealType string
}

// Book validates and upserts a batch of bookings for the user.
// Every date must land inside [today, today+7] against a single
// "today" snapshot; one bad slot fails the whole batch before any
// write.  Slots already booked are overwritten in place — the
// unique (user, date, meal) key makes resubmission idempotent.
func (s *BookingService) Book(ctx context.Context, userID uint64, reqs []BookingRequest) (int, error) {
    if len(reqs) == 0 {
        return 0, &ValidationError{Reason: "at least one booking is required"}
    }
    now := s.Clock.Now()
    today := clock.Today(now)

    records := make([]model.MealBooking, 0, len(reqs))
    for _, req := range reqs {
        if !model.ValidMealType(req.MealType) {
            return 0, &ValidationError{Reason: fmt.Sprintf("invalid meal type %q", req.MealType)}
        }
        date := clock.Normalize(req.Date)
        if !clock.WithinHorizon(date, today) {
            return 0, &ValidationError{Reason: fmt.Sprintf(
                "date %s is out of the allowed %d-day range", date.Format("2006-01-02"), clock.HorizonDays)}
        }
        records = append(records, model.MealBooking{
            UserID:   userID,
            Date:     date,
            MealType: req.MealType,
            Status:   model.StatusBooked,
            BookedAt: now.UTC(),
        })
    }
    if err := s.Bookings.UpsertBatch(ctx, records); err != nil {
        return 0, err
    }
    return len(records), nil
}

// TodayMeals lists the user's bookings for the current canteen day.
func (s *BookingService) TodayMeals(ctx context.Context, userID uint64) ([]model.MealBooking, error) {
    return s.Bookings.ListForDay(ctx, userID, clock.Today(s.Clock.Now()))
}

// Request marks today's booking of the given meal type as requested
// and alerts the canteen.  The meal type's serving window is checked
// in canteen-local time against one snapshot of now.
func (s *BookingService) Request(ctx context.Context, userID uint64, mealType string) (*model.MealBooking, []queue.Envelope, error) {
    if !model.ValidMealType(mealType) {
        return nil, nil, &ValidationError{Reason: fmt.Sprintf("invalid meal type %q", mealType)}
    }
    now := s.Clock.Now()
    if !clock.InRequestWindow(mealType, now) {
        start, end := clock.WindowHours(mealType)
        return nil, nil, &TimeWindowError{MealType: mealType, Start: start, End: end}
    }
    booking, err := s.Bookings.FindForDay(ctx, userID, clock.Today(now), mealType)
    if err != nil {
        return nil, nil, err
    }
    if booking.Status != model.StatusBooked {
        return nil, nil, ErrInvalidTransition
    }
    booking.Status = model.StatusRequested
    if err := s.Bookings.Update(ctx, booking); err != nil {
        return nil, nil, err
    }
    user, err := s.Users.GetByID(ctx, userID)
    if err != nil {
        return nil, nil, err
    }
    events := []queue.Envelope{
        envelope("new_meal_request", "canteen", queue.MealRequestedEvent{
            BookingID:    booking.ID,
            EmployeeName: user.FullName(),
            MealType:     mealType,
        }),
    }
    return booking, events, nil
}

// Respond records the canteen's decision on a pending request.
// Accept mints a single-use 4-digit code and sends it to the
// employee's private channel; the booking stays REQUESTED because
// verification is a separate gate.  Reject is terminal and clears
// the item from the canteen's pending view.
func (s *BookingService) Respond(ctx context.Context, bookingID uint64, accept bool) ([]queue.Envelope, error) {
    booking, err := s.Bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if booking.Status != model.StatusRequested {
        return nil, ErrInvalidTransition
    }
    if accept {
        code, err := mintCode()
        if err != nil {
            return nil, err
        }
        booking.Code = &code
        if err := s.Bookings.Update(ctx, booking); err != nil {
            return nil, err
        }
        return []queue.Envelope{
            envelope("meal_accepted", userChannel(booking.UserID), queue.MealAcceptedEvent{
                BookingID: booking.ID,
                Code:      code,
            }),
        }, nil
    }
    booking.Status = model.StatusRejected
    if err := s.Bookings.Update(ctx, booking); err != nil {
        return nil, err
    }
    return []queue.Envelope{
        envelope("meal_rejected", userChannel(booking.UserID), queue.MealRejectedEvent{
            BookingID: booking.ID,
            Message:   "Request denied by canteen.",
        }),
        envelope("meal_rejected", "canteen", queue.MealRejectedEvent{
            BookingID: booking.ID,
        }),
    }, nil
}

// VerifyCode burns the one-time code.  A wrong code fails without
// clearing anything; a correct one stamps the verification time,
// clears the code and advances the booking to VERIFIED, so a second
// attempt can only mismatch.
func (s *BookingService) VerifyCode(ctx context.Context, bookingID, userID uint64, submitted string) (*model.MealBooking, error) {
    booking, err := s.Bookings.GetByIDForUser(ctx, bookingID, userID)
    if err != nil {
        return nil, err
    }
    if booking.Status == model.StatusServed {
        return nil, ErrAlreadyCollected
    }
    if booking.Code == nil || *booking.Code != submitted {
        return nil, ErrCodeMismatch
    }
    now := s.Clock.Now().UTC()
    booking.VerifiedAt = &now
    booking.Code = nil
    booking.Status = model.StatusVerified
    if err := s.Bookings.Update(ctx, booking); err != nil {
        return nil, err
    }
    return booking, nil
}

// ComputePayment prices the verified booking and applies the
// sub-role policy, persisting the breakdown.  The canteen gets the
// breakdown together with the employee's current loan total so it
// can decide whether to round a cash payment up against debt.  The
// booking stays VERIFIED until explicit issuance.
func (s *BookingService) ComputePayment(ctx context.Context, bookingID uint64, requestedType *string, amountPaid decimal.Decimal) (*model.MealBooking, []queue.Envelope, error) {
    booking, err := s.Bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, nil, err
    }
    if booking.Status == model.StatusServed {
        return nil, nil, ErrAlreadyCollected
    }
    if booking.Status != model.StatusVerified {
        return nil, nil, ErrInvalidTransition
    }
    user, err := s.Users.GetByID(ctx, booking.UserID)
    if err != nil {
        return nil, nil, err
    }
    prices, err := s.Prices.Get(ctx)
    if err != nil {
        return nil, nil, err
    }
    breakdown, err := classifyPayment(user, prices.For(booking.MealType), requestedType, amountPaid)
    if err != nil {
        return nil, nil, err
    }
    booking.PaymentType = &breakdown.PaymentType
    booking.TotalPrice = breakdown.TotalPrice
    booking.AmountPaid = breakdown.AmountPaid
    booking.Balance = breakdown.Balance
    if err := s.Bookings.Update(ctx, booking); err != nil {
        return nil, nil, err
    }
    loan, err := s.Bookings.SumOutstanding(ctx, booking.UserID)
    if err != nil {
        return nil, nil, err
    }
    events := []queue.Envelope{
        envelope("payment_computed", "canteen", queue.PaymentComputedEvent{
            BookingID:   booking.ID,
            MealType:    booking.MealType,
            PaymentType: breakdown.PaymentType,
            TotalPrice:  breakdown.TotalPrice.String(),
            AmountPaid:  breakdown.AmountPaid.String(),
            Balance:     breakdown.Balance.String(),
            LoanAmount:  loan.String(),
        }),
    }
    return booking, events, nil
}

// Issue finalizes the booking as SERVED.  When a collected amount
// is given, a surplus over the total may be routed through the loan
// waterfall against the owner's other unpaid bookings, and a
// shortfall under a pay_later classification becomes this booking's
// own balance.  A shortfall on pay_now or free is a policy
// violation, not silent debt.
func (s *BookingService) Issue(ctx context.Context, issuedBy, bookingID uint64, collected *decimal.Decimal, settleExcessToLoan bool) ([]queue.Envelope, error) {
    booking, err := s.Bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if booking.Status == model.StatusServed {
        return nil, ErrAlreadyCollected
    }
    if booking.Status != model.StatusVerified {
        return nil, ErrInvalidTransition
    }
    if booking.PaymentType == nil {
        return nil, &ValidationError{Reason: "payment has not been computed for this booking"}
    }

    var surplus decimal.Decimal
    if collected != nil {
        if collected.IsNegative() {
            return nil, &ValidationError{Reason: "collected amount cannot be negative"}
        }
        if collected.GreaterThanOrEqual(booking.TotalPrice) {
            surplus = collected.Sub(booking.TotalPrice)
            booking.AmountPaid = booking.TotalPrice
            booking.Balance = decimal.Zero
        } else {
            if *booking.PaymentType != model.PaymentPayLater {
                return nil, &ValidationError{Reason: fmt.Sprintf(
                    "%s issuance requires payment in full", *booking.PaymentType)}
            }
            booking.AmountPaid = *collected
            booking.Balance = booking.TotalPrice.Sub(*collected)
        }
    }

    booking.Status = model.StatusServed
    if err := s.Bookings.Update(ctx, booking); err != nil {
        return nil, err
    }

    events := []queue.Envelope{
        envelope("meal_issued", userChannel(booking.UserID), queue.MealIssuedEvent{
            BookingID: booking.ID,
            MealType:  booking.MealType,
        }),
        envelope("meal_issued", "canteen", queue.MealIssuedEvent{
            BookingID: booking.ID,
            MealType:  booking.MealType,
        }),
    }

    if surplus.IsPositive() && settleExcessToLoan {
        // The booking being issued was settled directly above and is
        // excluded from its own overpayment's waterfall.
        res, err := s.Loans.Settle(ctx, issuedBy, booking.UserID, surplus, booking.ID)
        if err != nil {
            return nil, err
        }
        events = append(events, envelope("loan_settled", "canteen", queue.LoanSettledEvent{
            UserID:          booking.UserID,
            Amount:          res.Amount.String(),
            BookingsTouched: res.BookingsTouched,
            LoanBefore:      res.LoanBefore.String(),
            LoanAfter:       res.LoanAfter.String(),
        }))
    } else if _, err := s.Loans.recomputeLoan(ctx, booking.UserID); err != nil {
        // Aggregate rewrite failures self-heal on the next read;
        // the issuance itself stands.
        return nil, err
    }

    events = append(events, envelope("wallet_refresh", userChannel(booking.UserID), queue.WalletRefreshEvent{
        UserID: booking.UserID,
    }))
    return events, nil
}

// RejectIssue pushes a requested or verified booking back to
// BOOKED, wiping the code, verification timestamp and payment
// fields so the employee can start the request over.
func (s *BookingService) RejectIssue(ctx context.Context, bookingID uint64) ([]queue.Envelope, error) {
    booking, err := s.Bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if booking.Status != model.StatusRequested && booking.Status != model.StatusVerified {
        return nil, ErrInvalidTransition
    }
    hadBalance := booking.Balance.IsPositive()
    booking.Status = model.StatusBooked
    booking.Code = nil
    booking.VerifiedAt = nil
    booking.PaymentType = nil
    booking.TotalPrice = decimal.Zero
    booking.AmountPaid = decimal.Zero
    booking.Balance = decimal.Zero
    if err := s.Bookings.Update(ctx, booking); err != nil {
        return nil, err
    }
    if hadBalance {
        if _, err := s.Loans.recomputeLoan(ctx, booking.UserID); err != nil {
            return nil, err
        }
    }
    return []queue.Envelope{
        envelope("booking_reset", userChannel(booking.UserID), queue.BookingResetEvent{BookingID: booking.ID}),
        envelope("booking_reset", "canteen", queue.BookingResetEvent{BookingID: booking.ID}),
    }, nil
}

// Cancel deletes the owner's still-BOOKED booking if the meal
// type's cutoff on the day before the meal has not passed.  Exactly
// at the deadline still succeeds; one second past it fails.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID uint64) error {
    booking, err := s.Bookings.GetByIDForUser(ctx, bookingID, userID)
    if err != nil {
        return err
    }
    if booking.Status != model.StatusBooked {
        return ErrInvalidTransition
    }
    deadline := clock.CancelDeadline(booking.MealType, booking.Date)
    if s.Clock.Now().After(deadline) {
        return &DeadlineExceededError{MealType: booking.MealType, Deadline: deadline}
    }
    return s.Bookings.Delete(ctx, booking.ID)
}

// AdminCancel is the privileged override: it deletes a booking in
// any state, but only after an audit row holding the deleted
// snapshot and the operator's reason has been durably appended.
func (s *BookingService) AdminCancel(ctx context.Context, adminID, bookingID uint64, reason string) ([]queue.Envelope, error) {
    if reason == "" {
        return nil, &ValidationError{Reason: "a reason is required to cancel a booking administratively"}
    }
    booking, err := s.Bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    snapshot, _ := json.Marshal(map[string]any{
        "booking_id": booking.ID,
        "user_id":    booking.UserID,
        "date":       booking.Date.Format("2006-01-02"),
        "meal_type":  booking.MealType,
        "status":     booking.Status,
        "balance":    booking.Balance.String(),
    })
    entry := &model.AuditLog{
        Action:      model.ActionMealCancelled,
        PerformedBy: adminID,
        TargetUser:  &booking.UserID,
        Details:     reason,
        Metadata:    string(snapshot),
    }
    if err := s.Audit.Append(ctx, entry); err != nil {
        return nil, err
    }
    if err := s.Bookings.Delete(ctx, booking.ID); err != nil {
        return nil, err
    }
    if booking.Balance.IsPositive() {
        if _, err := s.Loans.recomputeLoan(ctx, booking.UserID); err != nil {
            return nil, err
        }
    }
    return []queue.Envelope{
        envelope("booking_cancelled", userChannel(booking.UserID), queue.BookingResetEvent{BookingID: booking.ID}),
        envelope("wallet_refresh", userChannel(booking.UserID), queue.WalletRefreshEvent{UserID: booking.UserID}),
    }, nil
}
