package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var ErrAmountOverflow = errors.New("amount overflows int64")

// Money is an amount in minor currency units, e.g. cents.
type Money struct {
	Amount   int64
	Currency currency.Unit
}

func NewMoney(amount int64, code string) (Money, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Money{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}
	return Money{Amount: amount, Currency: unit}, nil
}

func (m Money) SameCurrency(other Money) bool {
	return m.Currency.String() == other.Currency.String()
}

func (m Money) Add(other Money) (Money, error) {
	if (other.Amount > 0 && m.Amount > math.MaxInt64-other.Amount) ||
		(other.Amount < 0 && m.Amount < math.MinInt64-other.Amount) {
		return Money{}, fmt.Errorf("%d + %d: %w", m.Amount, other.Amount, ErrAmountOverflow)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Multiply is defined for non-negative amounts and factors only.
func (m Money) Multiply(n int) (Money, error) {
	if m.Amount < 0 || n < 0 {
		return Money{}, fmt.Errorf("%d × %d: negative operand", m.Amount, n)
	}
	if n > 0 && m.Amount > math.MaxInt64/int64(n) {
		return Money{}, fmt.Errorf("%d × %d: %w", m.Amount, n, ErrAmountOverflow)
	}
	return Money{Amount: m.Amount * int64(n), Currency: m.Currency}, nil
}

// Decimal converts minor units to the major unit using the currency's standard scale.
func (m Money) Decimal() decimal.Decimal {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return decimal.New(m.Amount, -int32(scale))
}

func (m Money) String() string {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return fmt.Sprintf("%s %s", m.Currency, m.Decimal().StringFixed(int32(scale)))
}
