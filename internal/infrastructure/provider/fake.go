package provider

import (
	"context"
	"errors"
	"fmt"

	"crypto-converter/internal/application"
	"crypto-converter/internal/domain"

	"github.com/shopspring/decimal"
)

// Ensure Fake implements application.PriceProvider.
var _ application.PriceProvider = (*Fake)(nil)

var errEmpty = errors.New("no prices configured")

// Fake returns the same prices on every call.
type Fake struct {
	prices []domain.SymbolPrice
}

func NewFake(prices ...domain.SymbolPrice) *Fake { return &Fake{prices: prices} }

// DefaultFakePrices seeds local runs; symbols not listed get a price of 1.
func DefaultFakePrices(symbols []domain.Symbol) []domain.SymbolPrice {
	known := map[domain.Symbol]decimal.Decimal{
		"BTCUSDT": decimal.RequireFromString("50000.00"),
		"ETHUSDT": decimal.RequireFromString("3000.00"),
	}
	if len(symbols) == 0 {
		symbols = []domain.Symbol{"BTCUSDT", "ETHUSDT"}
	}
	out := make([]domain.SymbolPrice, 0, len(symbols))
	for _, s := range symbols {
		p, ok := known[s]
		if !ok {
			p = decimal.NewFromInt(1)
		}
		out = append(out, domain.SymbolPrice{Symbol: s, Price: p})
	}
	return out
}

func (f *Fake) FetchPrices(context.Context) ([]domain.SymbolPrice, error) {
	if len(f.prices) == 0 {
		return nil, fmt.Errorf("%w: fake: %w", application.ErrProviderFetch, errEmpty)
	}
	out := make([]domain.SymbolPrice, len(f.prices))
	copy(out, f.prices)
	return out, nil
}
