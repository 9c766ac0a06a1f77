package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/service"
)

// LoanHandler accepts manual loan repayments from staff.
type LoanHandler struct {
    Loans *service.LoanService
}

func NewLoanHandler(loans *service.LoanService) *LoanHandler {
    return &LoanHandler{Loans: loans}
}

// Repay handles POST /v1/loans/repay. The amount is applied to the
// user's unpaid balances oldest-first; anything left over after the
// last balance is simply not used.
func (h *LoanHandler) Repay(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    var req struct {
        UserID uint64 `json:"user_id"`
        Amount string `json:"amount"`
    }
    if err := c.Bind(&req); err != nil || req.UserID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "user_id and amount are required"})
    }
    amount, err := decimal.NewFromString(req.Amount)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "amount must be a decimal string"})
    }

    result, events, err := h.Loans.Repay(c.Request().Context(), uid, req.UserID, amount)
    if err != nil {
        return fail(c, err)
    }
    go service.Dispatch(context.Background(), events)
    return c.JSON(http.StatusOK, echo.Map{
        "message":          "repayment applied",
        "applied_amount":   result.Amount,
        "bookings_touched": result.BookingsTouched,
        "loan_before":      result.LoanBefore,
        "loan_after":       result.LoanAfter,
    })
}
