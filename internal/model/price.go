package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// MealPrice is the single process-wide price record stored in the
// `meal_prices` table.  There is at most one row (id = 1); when the
// row has never been written, every price reads as zero.
//
// Fields:
//  Breakfast – current breakfast price.
//  Lunch     – current lunch price.
//  Dinner    – current dinner price.
//  UpdatedBy – user who last changed the prices (0 when unset).
//  UpdatedAt – timestamp of the last change.
type MealPrice struct {
    Breakfast decimal.Decimal // meal_prices.breakfast
    Lunch     decimal.Decimal // meal_prices.lunch
    Dinner    decimal.Decimal // meal_prices.dinner
    UpdatedBy uint64          // meal_prices.updated_by
    UpdatedAt time.Time       // meal_prices.updated_at
}

// For returns the price for the given meal type.  Unknown meal
// types price at zero; callers validate the type before lookup.
func (p *MealPrice) For(mealType string) decimal.Decimal {
    switch mealType {
    case MealBreakfast:
        return p.Breakfast
    case MealLunch:
        return p.Lunch
    case MealDinner:
        return p.Dinner
    default:
        return decimal.Zero
    }
}
