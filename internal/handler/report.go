package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/dilshan/canteen-meal-service/internal/clock"
    "github.com/dilshan/canteen-meal-service/internal/repository"
)

// ReportHandler serves the management read models: the dashboard
// aggregates, per-employee financials, date-range meal reports and
// the audit trail.
type ReportHandler struct {
    Reports *repository.ReportRepo
    Audit   *repository.AuditRepo
    Clock   clock.Clock
}

func NewReportHandler(reports *repository.ReportRepo, audit *repository.AuditRepo, clk clock.Clock) *ReportHandler {
    return &ReportHandler{Reports: reports, Audit: audit, Clock: clk}
}

// Dashboard handles GET /v1/reports/dashboard.
func (h *ReportHandler) Dashboard(c echo.Context) error {
    today := clock.Today(h.Clock.Now())
    stats, err := h.Reports.Dashboard(c.Request().Context(), today)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, stats)
}

// EmployeeFinancials handles GET /v1/reports/financials, one row per
// employee with lifetime spend, paid and outstanding totals.
func (h *ReportHandler) EmployeeFinancials(c echo.Context) error {
    rows, err := h.Reports.EmployeeFinancials(c.Request().Context())
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"employees": rows})
}

// Range handles GET /v1/reports/range?from=YYYY-MM-DD&to=YYYY-MM-DD.
// Both bounds are inclusive.
func (h *ReportHandler) Range(c echo.Context) error {
    from, err := time.Parse("2006-01-02", c.QueryParam("from"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "from must be YYYY-MM-DD"})
    }
    to, err := time.Parse("2006-01-02", c.QueryParam("to"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "to must be YYYY-MM-DD"})
    }
    fromDay := clock.Normalize(from)
    toDay := clock.Normalize(to)
    if toDay.Before(fromDay) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "to must not precede from"})
    }

    rows, err := h.Reports.BookingsInRange(c.Request().Context(), fromDay, toDay)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"from": fromDay, "to": toDay, "bookings": rows})
}

// AuditLogs handles GET /v1/reports/audit, newest first.
func (h *ReportHandler) AuditLogs(c echo.Context) error {
    entries, err := h.Audit.List(c.Request().Context())
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"logs": entries})
}
