package service

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/dilshan/canteen-meal-service/internal/clock"
    "github.com/dilshan/canteen-meal-service/internal/model"
    "github.com/dilshan/canteen-meal-service/internal/repository"
)

func TestSettleAppliesOldestFirst(t *testing.T) {
    e := newEngine(lunchNow)
    e.addEmployee(1, model.SubRoleCasual)
    today := clock.Today(lunchNow)
    b1 := e.bookings.add(model.MealBooking{
        UserID: 1, Date: today.AddDate(0, 0, -6), MealType: model.MealLunch,
        Status: model.StatusServed, TotalPrice: dec("30"), Balance: dec("30"),
    })
    b2 := e.bookings.add(model.MealBooking{
        UserID: 1, Date: today.AddDate(0, 0, -4), MealType: model.MealLunch,
        Status: model.StatusServed, TotalPrice: dec("50"), Balance: dec("50"),
    })
    b3 := e.bookings.add(model.MealBooking{
        UserID: 1, Date: today.AddDate(0, 0, -2), MealType: model.MealLunch,
        Status: model.StatusServed, TotalPrice: dec("20"), Balance: dec("20"),
    })

    res, err := e.loans.Settle(context.Background(), 9, 1, dec("70"), 0)

    require.NoError(t, err)
    assert.True(t, e.bookings.row(b1.ID).Balance.IsZero())
    assert.True(t, e.bookings.row(b2.ID).Balance.Equal(dec("10")))
    assert.True(t, e.bookings.row(b3.ID).Balance.Equal(dec("20")))
    assert.True(t, res.LoanBefore.Equal(dec("100")))
    assert.True(t, res.LoanAfter.Equal(dec("30")))
    assert.Equal(t, []uint64{b1.ID, b2.ID}, res.BookingsTouched)
    assert.True(t, e.users.row(1).LoanAmount.Equal(dec("30")))

    entries := e.audit.byAction(model.ActionLoanSettled)
    require.Len(t, entries, 1)
    assert.Equal(t, uint64(9), entries[0].PerformedBy)
}

func TestSettleLeftoverIsUnused(t *testing.T) {
    e := newEngine(lunchNow)
    e.addEmployee(1, model.SubRoleCasual)
    today := clock.Today(lunchNow)
    b := e.bookings.add(model.MealBooking{
        UserID: 1, Date: today.AddDate(0, 0, -1), MealType: model.MealDinner,
        Status: model.StatusServed, TotalPrice: dec("40"), Balance: dec("40"),
    })

    res, err := e.loans.Settle(context.Background(), 9, 1, dec("100"), 0)

    require.NoError(t, err)
    got := e.bookings.row(b.ID)
    assert.True(t, got.Balance.IsZero())
    // The booking is paid to its price, never past it.
    assert.True(t, got.AmountPaid.Equal(dec("40")))
    assert.True(t, res.LoanAfter.IsZero())
    assert.True(t, e.users.row(1).LoanAmount.IsZero())
}

func TestSettleHonorsExclusion(t *testing.T) {
    e := newEngine(lunchNow)
    e.addEmployee(1, model.SubRoleCasual)
    today := clock.Today(lunchNow)
    excluded := e.bookings.add(model.MealBooking{
        UserID: 1, Date: today.AddDate(0, 0, -5), MealType: model.MealLunch,
        Status: model.StatusServed, TotalPrice: dec("60"), Balance: dec("60"),
    })
    other := e.bookings.add(model.MealBooking{
        UserID: 1, Date: today.AddDate(0, 0, -1), MealType: model.MealLunch,
        Status: model.StatusServed, TotalPrice: dec("25"), Balance: dec("25"),
    })

    _, err := e.loans.Settle(context.Background(), 9, 1, dec("50"), excluded.ID)

    require.NoError(t, err)
    assert.True(t, e.bookings.row(excluded.ID).Balance.Equal(dec("60")))
    assert.True(t, e.bookings.row(other.ID).Balance.IsZero())
}

func TestRepayRejectsNonPositiveAmount(t *testing.T) {
    e := newEngine(lunchNow)
    e.addEmployee(1, model.SubRoleCasual)

    _, _, err := e.loans.Repay(context.Background(), 9, 1, dec("0"))
    var vErr *ValidationError
    assert.ErrorAs(t, err, &vErr)

    _, _, err = e.loans.Repay(context.Background(), 9, 1, dec("-5"))
    assert.ErrorAs(t, err, &vErr)
}

func TestRepayUnknownUser(t *testing.T) {
    e := newEngine(lunchNow)

    _, _, err := e.loans.Repay(context.Background(), 9, 42, dec("10"))
    assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestRepayEmitsEvents(t *testing.T) {
    e := newEngine(lunchNow)
    e.addEmployee(1, model.SubRoleCasual)
    today := clock.Today(lunchNow)
    e.bookings.add(model.MealBooking{
        UserID: 1, Date: today.AddDate(0, 0, -1), MealType: model.MealLunch,
        Status: model.StatusServed, TotalPrice: dec("90"), Balance: dec("90"),
    })

    res, events, err := e.loans.Repay(context.Background(), 9, 1, dec("90"))

    require.NoError(t, err)
    assert.True(t, res.LoanAfter.IsZero())
    require.Len(t, events, 2)
    assert.Equal(t, "wallet_refresh", events[0].Event)
    assert.Equal(t, "user:1", events[0].Channel)
    assert.Equal(t, "loan_settled", events[1].Event)
    assert.Equal(t, "canteen", events[1].Channel)
}

func TestWalletSelfHealsStaleLoanCache(t *testing.T) {
    e := newEngine(lunchNow)
    sub := model.SubRoleCasual
    e.users.add(model.User{ID: 1, FirstName: "A", LastName: "B", Role: model.RoleEmployee, SubRole: &sub, LoanAmount: dec("999")})
    today := clock.Today(lunchNow)
    e.bookings.add(model.MealBooking{
        UserID: 1, Date: today.AddDate(0, 0, -3), MealType: model.MealLunch,
        Status: model.StatusServed, TotalPrice: dec("150"), Balance: dec("150"),
    })
    e.bookings.add(model.MealBooking{
        UserID: 1, Date: today.AddDate(0, 0, -2), MealType: model.MealDinner,
        Status: model.StatusBooked, // never requested: a missed meal
    })

    stats, err := e.loans.Wallet(context.Background(), 1, today)

    require.NoError(t, err)
    assert.Equal(t, int64(1), stats.SuccessMeals)
    assert.Equal(t, int64(1), stats.MissedMeals)
    assert.True(t, stats.LoanAmount.Equal(dec("150")))
    assert.True(t, stats.LoanLimit.Equal(dec("5000")))
    assert.True(t, e.users.row(1).LoanAmount.Equal(dec("150")))
}

func TestConcurrentSettlesSerializePerUser(t *testing.T) {
    e := newEngine(lunchNow)
    e.addEmployee(1, model.SubRoleCasual)
    today := clock.Today(lunchNow)
    for i := 0; i < 10; i++ {
        e.bookings.add(model.MealBooking{
            UserID: 1, Date: today.AddDate(0, 0, -10+i), MealType: model.MealLunch,
            Status: model.StatusServed, TotalPrice: dec("10"), Balance: dec("10"),
        })
    }

    done := make(chan error, 2)
    for i := 0; i < 2; i++ {
        go func() {
            _, err := e.loans.Settle(context.Background(), 9, 1, dec("50"), 0)
            done <- err
        }()
    }
    for i := 0; i < 2; i++ {
        require.NoError(t, <-done)
    }

    // Two 50s against 100 of debt clear it exactly once each.
    sum, err := e.bookings.SumOutstanding(context.Background(), 1)
    require.NoError(t, err)
    assert.True(t, sum.IsZero(), "expected all balances settled, got %s", sum)
    assert.True(t, e.users.row(1).LoanAmount.IsZero())
}

// The waterfall must never invent money: total paid across bookings
// equals the original debt regardless of interleaving.
func TestSettleConservesAmounts(t *testing.T) {
    e := newEngine(lunchNow)
    e.addEmployee(1, model.SubRoleCasual)
    today := clock.Today(lunchNow)
    ids := make([]uint64, 0, 3)
    for i, amt := range []string{"35", "45", "20"} {
        b := e.bookings.add(model.MealBooking{
            UserID: 1, Date: today.AddDate(0, 0, -3+i), MealType: model.MealLunch,
            Status: model.StatusServed, TotalPrice: dec(amt), Balance: dec(amt),
        })
        ids = append(ids, b.ID)
    }

    _, err := e.loans.Settle(context.Background(), 9, 1, dec("60"), 0)
    require.NoError(t, err)

    paid := dec("0")
    remaining := dec("0")
    for _, id := range ids {
        b := e.bookings.row(id)
        paid = paid.Add(b.AmountPaid)
        remaining = remaining.Add(b.Balance)
    }
    assert.True(t, paid.Equal(dec("60")))
    assert.True(t, remaining.Equal(dec("40")))
}
