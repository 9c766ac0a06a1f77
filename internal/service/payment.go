package service

import (
    "crypto/rand"
    "fmt"
    "math/big"

    "github.com/shopspring/decimal"

    "github.com/dilshan/canteen-meal-service/internal/model"
)

// PaymentBreakdown is the result of applying the sub-role payment
// policy to one booking at the current price.
type PaymentBreakdown struct {
    PaymentType string
    TotalPrice  decimal.Decimal
    AmountPaid  decimal.Decimal
    Balance     decimal.Decimal
}

// classifyPayment applies the fixed sub-role policy:
//
//	intern           – always free, zero total.
//	permanent        – pay_now, full amount due at issuance.
//	casual, manpower – caller picks pay_now or pay_later; pay_later
//	                   may leave a balance that becomes ledger debt.
//
// requestedType and paid are only consulted for the choosing
// sub-roles; the others have no say.  Balance never goes negative.
func classifyPayment(user *model.User, price decimal.Decimal, requestedType *string, paid decimal.Decimal) (*PaymentBreakdown, error) {
    subRole := ""
    if user.SubRole != nil {
        subRole = *user.SubRole
    }
    switch subRole {
    case model.SubRoleIntern:
        return &PaymentBreakdown{
            PaymentType: model.PaymentFree,
            TotalPrice:  decimal.Zero,
            AmountPaid:  decimal.Zero,
            Balance:     decimal.Zero,
        }, nil
    case model.SubRolePermanent:
        return &PaymentBreakdown{
            PaymentType: model.PaymentPayNow,
            TotalPrice:  price,
            AmountPaid:  price,
            Balance:     decimal.Zero,
        }, nil
    case model.SubRoleCasual, model.SubRoleManpower:
        chosen := model.PaymentPayNow
        if requestedType != nil {
            chosen = *requestedType
        }
        switch chosen {
        case model.PaymentPayNow:
            return &PaymentBreakdown{
                PaymentType: model.PaymentPayNow,
                TotalPrice:  price,
                AmountPaid:  price,
                Balance:     decimal.Zero,
            }, nil
        case model.PaymentPayLater:
            if paid.IsNegative() {
                return nil, &ValidationError{Reason: "amount paid cannot be negative"}
            }
            if paid.GreaterThan(price) {
                paid = price
            }
            return &PaymentBreakdown{
                PaymentType: model.PaymentPayLater,
                TotalPrice:  price,
                AmountPaid:  paid,
                Balance:     price.Sub(paid),
            }, nil
        default:
            return nil, &ValidationError{Reason: fmt.Sprintf("invalid payment type %q", chosen)}
        }
    default:
        return nil, &ValidationError{Reason: fmt.Sprintf("user has no payable sub-role %q", subRole)}
    }
}

// mintCode draws a uniform fixed-width 4-digit verification code
// from crypto/rand.
func mintCode() (string, error) {
    n, err := rand.Int(rand.Reader, big.NewInt(10000))
    if err != nil {
        return "", err
    }
    return fmt.Sprintf("%04d", n.Int64()), nil
}
