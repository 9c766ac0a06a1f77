package main

import (
    "log"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/dilshan/canteen-meal-service/internal/clock"
    "github.com/dilshan/canteen-meal-service/internal/config"
    "github.com/dilshan/canteen-meal-service/internal/database"
    "github.com/dilshan/canteen-meal-service/internal/handler"
    "github.com/dilshan/canteen-meal-service/internal/queue"
    "github.com/dilshan/canteen-meal-service/internal/repository"
    "github.com/dilshan/canteen-meal-service/internal/router"
    "github.com/dilshan/canteen-meal-service/internal/service"
)

func main() {
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb != nil {
        defer rdb.Close()
    }

    // Notification consumer keeps its own connection and reconnects
    // on broker restarts; the HTTP side never waits on it.
    go func() {
        if err := queue.StartNotificationConsumer(); err != nil {
            log.Printf("notifications: consumer stopped: %v", err)
        }
    }()

    users := repository.NewUserRepo(db)
    bookings := repository.NewBookingRepo(db)
    prices := repository.NewPriceRepo(db)
    audit := repository.NewAuditRepo(db)
    reports := repository.NewReportRepo(db)

    clk := clock.System{}
    loans := service.NewLoanService(bookings, users, audit)
    bookingSvc := service.NewBookingService(bookings, users, prices, audit, loans, clk)
    kioskSvc := service.NewKioskService(users, clk)

    h := router.Handlers{
        Auth:     handler.NewAuthHandler(users, cfg.JWTSecret, cfg.AccessTTLMin),
        Employee: handler.NewEmployeeMealHandler(bookingSvc, loans),
        Canteen:  handler.NewCanteenMealHandler(bookingSvc),
        Price:    handler.NewPriceHandler(prices, audit),
        Loan:     handler.NewLoanHandler(loans),
        Admin:    handler.NewAdminHandler(bookingSvc),
        Report:   handler.NewReportHandler(reports, audit, clk),
        Kiosk:    handler.NewKioskHandler(kioskSvc, cfg.JWTSecret, cfg.KioskTTLMin),
    }

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())

    router.Register(e, h, cfg.JWTSecret, rdb)

    log.Printf("canteen-meal-service listening on :%s (%s)", cfg.Port, cfg.Env)
    if err := e.Start(":" + cfg.Port); err != nil {
        log.Fatalf("server: %v", err)
    }
}
