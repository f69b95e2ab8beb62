package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is one sampled exchange rate for a symbol at one instant.
type Observation struct {
	Price     decimal.Decimal
	Timestamp time.Time
}

// SymbolPrice is what a price provider reports for a single symbol.
type SymbolPrice struct {
	Symbol Symbol
	Price  decimal.Decimal
}
