// Package queue defines the notification payloads exchanged over the
// message broker.  Business operations build these events and return
// them; delivery happens only after the underlying write succeeded,
// and a delivery failure never rolls the write back.
package queue

// NotificationQueue is the durable queue every lifecycle event is
// published to.  Consumers fan the messages out by channel.
const NotificationQueue = "canteen.notifications"

// Envelope wraps one event with its routing channel.  Channel is
// "canteen" for the shared canteen queue view, "user:<id>" for an
// employee's private channel and "kiosk:<sn>" for a biometric
// terminal's room.
type Envelope struct {
    Event   string `json:"event"`
    Channel string `json:"channel"`
    Payload any    `json:"payload"`
    At      string `json:"at"`
}

// MealRequestedEvent tells the canteen an employee wants a booked
// meal served now.
type MealRequestedEvent struct {
    BookingID    uint64 `json:"booking_id"`
    EmployeeName string `json:"employee_name"`
    MealType     string `json:"meal_type"`
}

// MealAcceptedEvent carries the one-time verification code to the
// employee's private channel after the canteen accepts a request.
type MealAcceptedEvent struct {
    BookingID uint64 `json:"booking_id"`
    Code      string `json:"code"`
}

// MealRejectedEvent notifies the employee of a denied request; the
// same booking ID also goes to the canteen channel so pending-queue
// views drop the item.
type MealRejectedEvent struct {
    BookingID uint64 `json:"booking_id"`
    Message   string `json:"message"`
}

// PaymentComputedEvent gives the canteen the payment breakdown plus
// the employee's current loan total, the context it needs to decide
// whether to round a cash payment up against outstanding debt.
type PaymentComputedEvent struct {
    BookingID   uint64 `json:"booking_id"`
    MealType    string `json:"meal_type"`
    PaymentType string `json:"payment_type"`
    TotalPrice  string `json:"total_price"`
    AmountPaid  string `json:"amount_paid"`
    Balance     string `json:"balance"`
    LoanAmount  string `json:"loan_amount"`
}

// MealIssuedEvent marks the terminal transition; the canteen copy
// removes the booking from the active queue.
type MealIssuedEvent struct {
    BookingID uint64 `json:"booking_id"`
    MealType  string `json:"meal_type"`
}

// BookingResetEvent notifies both parties that a request was pushed
// back to BOOKED so the employee can retry.
type BookingResetEvent struct {
    BookingID uint64 `json:"booking_id"`
}

// WalletRefreshEvent prompts the employee's client to re-read its
// financial state after a balance or loan change.
type WalletRefreshEvent struct {
    UserID uint64 `json:"user_id"`
}

// LoanSettledEvent describes a completed debt-settlement waterfall.
type LoanSettledEvent struct {
    UserID          uint64   `json:"user_id"`
    Amount          string   `json:"amount"`
    BookingsTouched []uint64 `json:"bookings_touched"`
    LoanBefore      string   `json:"loan_before"`
    LoanAfter       string   `json:"loan_after"`
}

// KioskLoginEvent delivers a minted token to the kiosk room of the
// device that scanned the employee's fingerprint.
type KioskLoginEvent struct {
    UserID uint64 `json:"user_id"`
    Name   string `json:"name"`
    Role   string `json:"role"`
    Token  string `json:"token"`
}
