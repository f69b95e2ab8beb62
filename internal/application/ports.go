package application

import (
	"context"
	"time"

	"crypto-converter/internal/domain"
)

//go:generate mockgen -package=application -destination=mock_ports_test.go -source=ports.go

// QuoteStore owns every symbol series. Implementations return ErrNotFound
// for empty lookups and wrap transport failures with ErrBackendUnavailable.
type QuoteStore interface {
	Write(ctx context.Context, at time.Time, prices []domain.SymbolPrice) error
	Latest(ctx context.Context, symbol domain.Symbol) (domain.Observation, error)
	At(ctx context.Context, symbol domain.Symbol, target time.Time, tolerance time.Duration) (domain.Observation, error)
	Sweep(ctx context.Context, maxAge time.Duration) (int64, error)
}

// PriceProvider returns the current price of every tracked symbol.
type PriceProvider interface {
	FetchPrices(ctx context.Context) ([]domain.SymbolPrice, error)
}

type Clock interface {
	Now() time.Time
}
