package middleware

// identity.go holds the helper shared by the rate limiter for
// building per-user keys.  JWTAuth stores the numeric user id in
// context; before authentication ran (or on public routes) the
// caller keys as "anon".

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's id as a string for
// use in redis keys, or "anon" when no principal is present.
func currentUserID(c echo.Context) string {
    if v, ok := c.Get("user_id").(uint64); ok && v > 0 {
        return strconv.FormatUint(v, 10)
    }
    return "anon"
}
