package handler

import (
    "context"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/dilshan/canteen-meal-service/internal/service"
)

// AdminHandler holds the administrative overrides that bypass the
// normal booking rules.
type AdminHandler struct {
    Bookings *service.BookingService
}

func NewAdminHandler(bookings *service.BookingService) *AdminHandler {
    return &AdminHandler{Bookings: bookings}
}

// CancelBooking handles DELETE /v1/admin/bookings/:id. Unlike the
// employee cancel, this works in any state and at any time, but a
// reason is mandatory and the deletion is audited.
func (h *AdminHandler) CancelBooking(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || bookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "invalid booking id"})
    }
    var req struct {
        Reason string `json:"reason"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "invalid request body"})
    }

    events, err := h.Bookings.AdminCancel(c.Request().Context(), uid, bookingID, req.Reason)
    if err != nil {
        return fail(c, err)
    }
    go service.Dispatch(context.Background(), events)
    return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled"})
}
