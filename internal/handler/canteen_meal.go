package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/service"
)

// CanteenMealHandler covers the counter-side of the lifecycle:
// accepting or rejecting requests, computing payment, issuing the
// meal and resetting a booking back to booked.
type CanteenMealHandler struct {
    Bookings *service.BookingService
}

func NewCanteenMealHandler(bookings *service.BookingService) *CanteenMealHandler {
    return &CanteenMealHandler{Bookings: bookings}
}

// Respond handles POST /v1/canteen/respond with action "accept" or
// "reject". Accepting mints the four-digit collection code.
func (h *CanteenMealHandler) Respond(c echo.Context) error {
    var req struct {
        BookingID uint64 `json:"booking_id"`
        Action    string `json:"action"`
    }
    if err := c.Bind(&req); err != nil || req.BookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "booking_id is required"})
    }
    if req.Action != "accept" && req.Action != "reject" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "action must be accept or reject"})
    }

    events, err := h.Bookings.Respond(c.Request().Context(), req.BookingID, req.Action == "accept")
    if err != nil {
        return fail(c, err)
    }
    go service.Dispatch(context.Background(), events)
    return c.JSON(http.StatusOK, echo.Map{"message": "response recorded"})
}

// ComputePayment handles POST /v1/canteen/payment for a verified
// booking. payment_type and amount_paid are only meaningful for sub
// roles that may choose how to pay.
func (h *CanteenMealHandler) ComputePayment(c echo.Context) error {
    var req struct {
        BookingID   uint64  `json:"booking_id"`
        PaymentType *string `json:"payment_type"`
        AmountPaid  *string `json:"amount_paid"`
    }
    if err := c.Bind(&req); err != nil || req.BookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "booking_id is required"})
    }
    paid := decimal.Zero
    if req.AmountPaid != nil {
        var err error
        paid, err = decimal.NewFromString(*req.AmountPaid)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "amount_paid must be a decimal string"})
        }
    }

    booking, events, err := h.Bookings.ComputePayment(c.Request().Context(), req.BookingID, req.PaymentType, paid)
    if err != nil {
        return fail(c, err)
    }
    go service.Dispatch(context.Background(), events)
    return c.JSON(http.StatusOK, echo.Map{"message": "payment computed", "booking": booking})
}

// Issue handles POST /v1/canteen/issue, marking the booking served.
// collected_amount is what was handed over at the counter; any excess
// can optionally be swept into outstanding balances.
func (h *CanteenMealHandler) Issue(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    var req struct {
        BookingID          uint64  `json:"booking_id"`
        CollectedAmount    *string `json:"collected_amount"`
        SettleExcessToLoan bool    `json:"settle_excess_to_loan"`
    }
    if err := c.Bind(&req); err != nil || req.BookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "booking_id is required"})
    }
    var collected *decimal.Decimal
    if req.CollectedAmount != nil {
        amt, err := decimal.NewFromString(*req.CollectedAmount)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "collected_amount must be a decimal string"})
        }
        collected = &amt
    }

    events, err := h.Bookings.Issue(c.Request().Context(), uid, req.BookingID, collected, req.SettleExcessToLoan)
    if err != nil {
        return fail(c, err)
    }
    go service.Dispatch(context.Background(), events)
    return c.JSON(http.StatusOK, echo.Map{"message": "meal issued"})
}

// RejectIssue handles POST /v1/canteen/reject-issue, pushing a
// requested or verified booking back to booked with a clean slate.
func (h *CanteenMealHandler) RejectIssue(c echo.Context) error {
    var req struct {
        BookingID uint64 `json:"booking_id"`
    }
    if err := c.Bind(&req); err != nil || req.BookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "booking_id is required"})
    }
    events, err := h.Bookings.RejectIssue(c.Request().Context(), req.BookingID)
    if err != nil {
        return fail(c, err)
    }
    go service.Dispatch(context.Background(), events)
    return c.JSON(http.StatusOK, echo.Map{"message": "booking reset"})
}
