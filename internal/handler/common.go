package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/dilshan/canteen-meal-service/internal/repository"
    "github.com/dilshan/canteen-meal-service/internal/service"
)

// userID extracts the authenticated principal's numeric id from the
// context, where the JWT middleware stored it.
func userID(c echo.Context) (uint64, error) {
    if v, ok := c.Get("user_id").(uint64); ok && v > 0 {
        return v, nil
    }
    return 0, errors.New("no authenticated user in context")
}

// fail translates engine and repository errors into HTTP responses.
// Every branch returns the error kind plus a human-readable message
// so clients can show something useful; nothing is swallowed.
func fail(c echo.Context, err error) error {
    var vErr *service.ValidationError
    var twErr *service.TimeWindowError
    var dlErr *service.DeadlineExceededError
    var susErr *service.SuspendedError
    switch {
    case errors.As(err, &vErr):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": vErr.Error()})
    case errors.As(err, &twErr):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "time_window", "message": twErr.Error()})
    case errors.As(err, &dlErr):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "deadline_exceeded", "message": dlErr.Error()})
    case errors.As(err, &susErr):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "suspended", "message": susErr.Error()})
    case errors.Is(err, service.ErrCodeMismatch):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "code_mismatch", "message": err.Error()})
    case errors.Is(err, service.ErrAlreadyCollected),
        errors.Is(err, service.ErrInvalidTransition),
        errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": err.Error()})
    case errors.Is(err, repository.ErrBookingNotFound),
        errors.Is(err, repository.ErrUserNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": err.Error()})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": err.Error()})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "internal server error"})
    }
}
