package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health reports process liveness. Kept public so load balancers can
// probe it without a token.
func Health(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
