package handler

import (
    "encoding/json"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/model"
    "github.com/dilshan/canteen-meal-service/internal/repository"
)

// PriceHandler reads and updates the single meal price record. Price
// changes are audited with a before/after snapshot.
type PriceHandler struct {
    Prices *repository.PriceRepo
    Audit  *repository.AuditRepo
}

func NewPriceHandler(prices *repository.PriceRepo, audit *repository.AuditRepo) *PriceHandler {
    return &PriceHandler{Prices: prices, Audit: audit}
}

// Get handles GET /v1/prices. Unset prices read as zero.
func (h *PriceHandler) Get(c echo.Context) error {
    p, err := h.Prices.Get(c.Request().Context())
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "breakfast":  p.Breakfast,
        "lunch":      p.Lunch,
        "dinner":     p.Dinner,
        "updated_at": p.UpdatedAt,
    })
}

// Update handles PUT /v1/prices. All three prices are replaced in one
// call; negative values are rejected.
func (h *PriceHandler) Update(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    var req struct {
        Breakfast string `json:"breakfast"`
        Lunch     string `json:"lunch"`
        Dinner    string `json:"dinner"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "invalid request body"})
    }
    parse := func(name, raw string) (decimal.Decimal, error) {
        v, err := decimal.NewFromString(raw)
        if err != nil {
            return decimal.Zero, err
        }
        if v.IsNegative() {
            return decimal.Zero, fmt.Errorf("%s price cannot be negative", name)
        }
        return v, nil
    }
    breakfast, err := parse("breakfast", req.Breakfast)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": err.Error()})
    }
    lunch, err := parse("lunch", req.Lunch)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": err.Error()})
    }
    dinner, err := parse("dinner", req.Dinner)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": err.Error()})
    }

    ctx := c.Request().Context()
    before, err := h.Prices.Get(ctx)
    if err != nil {
        return fail(c, err)
    }
    next := &model.MealPrice{Breakfast: breakfast, Lunch: lunch, Dinner: dinner, UpdatedBy: uid}
    if err := h.Prices.Upsert(ctx, next); err != nil {
        return fail(c, err)
    }

    meta, _ := json.Marshal(echo.Map{
        "before": echo.Map{"breakfast": before.Breakfast, "lunch": before.Lunch, "dinner": before.Dinner},
        "after":  echo.Map{"breakfast": breakfast, "lunch": lunch, "dinner": dinner},
    })
    if err := h.Audit.Append(ctx, &model.AuditLog{
        Action:      model.ActionPricesUpdated,
        PerformedBy: uid,
        Details:     "meal prices updated",
        Metadata:    string(meta),
    }); err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "prices updated"})
}
