package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/dilshan/canteen-meal-service/internal/clock"
    "github.com/dilshan/canteen-meal-service/internal/service"
)

// EmployeeMealHandler exposes the self-service side of the booking
// lifecycle: booking future meals, requesting today's meal inside its
// window, verifying the collection code and cancelling.
type EmployeeMealHandler struct {
    Bookings *service.BookingService
    Loans    *service.LoanService
}

func NewEmployeeMealHandler(bookings *service.BookingService, loans *service.LoanService) *EmployeeMealHandler {
    return &EmployeeMealHandler{Bookings: bookings, Loans: loans}
}

// Book handles POST /v1/meals/book. The body carries a batch of
// date/meal-type pairs; the batch is all-or-nothing.
func (h *EmployeeMealHandler) Book(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    var req struct {
        Bookings []struct {
            Date     string `json:"date"`
            MealType string `json:"meal_type"`
        } `json:"bookings"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "invalid request body"})
    }
    reqs := make([]service.BookingRequest, 0, len(req.Bookings))
    for _, b := range req.Bookings {
        date, err := time.Parse("2006-01-02", b.Date)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "date must be YYYY-MM-DD: " + b.Date})
        }
        reqs = append(reqs, service.BookingRequest{Date: date, MealType: b.MealType})
    }

    count, err := h.Bookings.Book(c.Request().Context(), uid, reqs)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"message": "meals booked", "count": count})
}

// TodayMeals handles GET /v1/meals/today.
func (h *EmployeeMealHandler) TodayMeals(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    meals, err := h.Bookings.TodayMeals(c.Request().Context(), uid)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"meals": meals})
}

// Request handles POST /v1/meals/request, moving today's booking for
// the given meal type into the requested state.
func (h *EmployeeMealHandler) Request(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    var req struct {
        MealType string `json:"meal_type"`
    }
    if err := c.Bind(&req); err != nil || req.MealType == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "meal_type is required"})
    }
    booking, events, err := h.Bookings.Request(c.Request().Context(), uid, req.MealType)
    if err != nil {
        return fail(c, err)
    }
    go service.Dispatch(context.Background(), events)
    return c.JSON(http.StatusOK, echo.Map{"message": "meal requested", "booking": booking})
}

// Verify handles POST /v1/meals/verify. On success the booking moves
// to verified and the one-shot code is consumed.
func (h *EmployeeMealHandler) Verify(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    var req struct {
        BookingID uint64 `json:"booking_id"`
        Code      string `json:"code"`
    }
    if err := c.Bind(&req); err != nil || req.BookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "booking_id and code are required"})
    }
    booking, err := h.Bookings.VerifyCode(c.Request().Context(), req.BookingID, uid, req.Code)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "code verified", "booking": booking})
}

// Cancel handles DELETE /v1/meals/:id. Only booked meals can be
// cancelled, and only before the meal's cut-off.
func (h *EmployeeMealHandler) Cancel(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || bookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "invalid booking id"})
    }
    if err := h.Bookings.Cancel(c.Request().Context(), uid, bookingID); err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled"})
}

// Wallet handles GET /v1/wallet with the caller's meal counts and
// loan position.
func (h *EmployeeMealHandler) Wallet(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    today := clock.Today(h.Bookings.Clock.Now())
    stats, err := h.Loans.Wallet(c.Request().Context(), uid, today)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, stats)
}
