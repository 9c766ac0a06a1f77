// Package router wires HTTP routes to their handlers and hangs the
// authentication, role and caching middleware on the right groups.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/dilshan/canteen-meal-service/internal/config"
    "github.com/dilshan/canteen-meal-service/internal/handler"
    "github.com/dilshan/canteen-meal-service/internal/middleware"
    "github.com/dilshan/canteen-meal-service/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
    Auth     *handler.AuthHandler
    Employee *handler.EmployeeMealHandler
    Canteen  *handler.CanteenMealHandler
    Price    *handler.PriceHandler
    Loan     *handler.LoanHandler
    Admin    *handler.AdminHandler
    Report   *handler.ReportHandler
    Kiosk    *handler.KioskHandler
}

// Register mounts every route on the Echo instance.  The kiosk
// endpoints stay outside the /v1 tree and carry no JWT: the terminals
// speak their own plain-text protocol and cannot send headers.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
    e.GET("/healthz", handler.Health)

    // Unauthenticated session endpoints.
    e.POST("/v1/auth/login", h.Auth.Login)

    // Biometric terminal bridge (ZKTeco push protocol).
    e.GET("/iclock/cdata", h.Kiosk.Handshake)
    e.POST("/iclock/cdata", h.Kiosk.AttendanceLog)
    e.GET("/iclock/getrequest", h.Kiosk.KeepAlive)

    // Everything below needs a valid access token.
    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    auth.GET("/me", h.Auth.Me)
    auth.GET("/prices", h.Price.Get)

    // Employee self-service.
    emp := auth.Group("/meals")
    emp.Use(middleware.RequireRole(model.RoleEmployee, model.RoleAdmin))
    emp.POST("/book", h.Employee.Book)
    emp.GET("/today", h.Employee.TodayMeals)
    emp.POST("/request", h.Employee.Request)
    emp.POST("/verify", h.Employee.Verify)
    emp.DELETE("/:id", h.Employee.Cancel)
    auth.GET("/wallet", h.Employee.Wallet, middleware.RequireRole(model.RoleEmployee, model.RoleAdmin))

    // Canteen counter operations.
    canteen := auth.Group("/canteen")
    canteen.Use(middleware.RequireRole(model.RoleCanteen, model.RoleAdmin))
    canteen.POST("/respond", h.Canteen.Respond)
    canteen.POST("/payment", h.Canteen.ComputePayment)
    canteen.POST("/issue", h.Canteen.Issue)
    canteen.POST("/reject-issue", h.Canteen.RejectIssue)
    canteen.POST("/loans/repay", h.Loan.Repay)

    // Administrative overrides and reporting.
    admin := auth.Group("/admin")
    admin.Use(middleware.RequireRole(model.RoleAdmin, model.RoleHRManager))
    admin.DELETE("/bookings/:id", h.Admin.CancelBooking)
    admin.PUT("/prices", h.Price.Update)

    reports := auth.Group("/reports")
    reports.Use(middleware.RequireRole(model.RoleAdmin, model.RoleHRManager))
    reports.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
    reports.GET("/dashboard", h.Report.Dashboard)
    reports.GET("/financials", h.Report.EmployeeFinancials)
    reports.GET("/range", h.Report.Range)
    reports.GET("/audit", h.Report.AuditLogs)
}
