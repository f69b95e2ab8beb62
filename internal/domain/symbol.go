package domain

import (
	"regexp"
	"strings"
)

// Symbol is a currency-pair ticker such as BTCUSDT.
type Symbol string

var tickerRe = regexp.MustCompile(`^[A-Za-z0-9]{1,10}$`)

func ValidateTicker(t string) bool {
	return tickerRe.MatchString(t)
}

// NewSymbol joins two tickers into the provider's pair notation.
func NewSymbol(from, to string) (Symbol, error) {
	if !ValidateTicker(from) || !ValidateTicker(to) {
		return "", ErrInvalidTicker
	}
	return Symbol(strings.ToUpper(from + to)), nil
}

func (s Symbol) String() string { return string(s) }
