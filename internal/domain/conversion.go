package domain

import "github.com/shopspring/decimal"

const (
	RatePlaces   int32 = 12
	AmountPlaces int32 = 6
)

type Conversion struct {
	Amount decimal.Decimal
	Rate   decimal.Decimal
}

// Convert multiplies amount by rate. Both the rate and the result are
// truncated toward zero, never rounded.
func Convert(rate, amount decimal.Decimal) (Conversion, error) {
	if !amount.IsPositive() {
		return Conversion{}, ErrInvalidAmount
	}
	truncated := rate.Truncate(RatePlaces)
	return Conversion{
		Amount: amount.Mul(truncated).Truncate(AmountPlaces),
		Rate:   truncated,
	}, nil
}

func (c Conversion) AmountString() string { return c.Amount.StringFixed(AmountPlaces) }

func (c Conversion) RateString() string { return c.Rate.StringFixed(RatePlaces) }
