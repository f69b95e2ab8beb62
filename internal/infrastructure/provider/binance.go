package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"crypto-converter/internal/application"
	"crypto-converter/internal/domain"
	"crypto-converter/internal/infrastructure/httpx"

	"github.com/shopspring/decimal"
)

const binanceTickerPricePath = "api/v3/ticker/price"

// Binance reads spot prices from the public ticker endpoint.
type Binance struct {
	BaseURL string
	// Symbols restricts the request; empty means every listed symbol.
	Symbols []domain.Symbol
	Client  *httpx.Client
}

var _ application.PriceProvider = (*Binance)(nil)

type binanceTicker struct {
	Symbol string           `json:"symbol"`
	Price  *decimal.Decimal `json:"price"`
}

func (p *Binance) priceURL() (string, error) {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	u = u.JoinPath(binanceTickerPricePath)
	if len(p.Symbols) > 0 {
		// Binance rejects spaces inside the array, json.Marshal emits none.
		list, err := json.Marshal(p.Symbols)
		if err != nil {
			return "", err
		}
		q := u.Query()
		q.Set("symbols", string(list))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (p *Binance) FetchPrices(ctx context.Context) ([]domain.SymbolPrice, error) {
	if p.BaseURL == "" {
		return nil, fmt.Errorf("%w: binance: missing base url", application.ErrProviderFetch)
	}
	u, err := p.priceURL()
	if err != nil {
		return nil, fmt.Errorf("%w: binance: %w", application.ErrProviderFetch, err)
	}
	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}

	var body []binanceTicker
	if err := client.GetJSON(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("%w: binance: %w", application.ErrProviderFetch, err)
	}

	out := make([]domain.SymbolPrice, 0, len(body))
	for i, t := range body {
		if t.Symbol == "" || t.Price == nil {
			return nil, fmt.Errorf("%w: binance: malformed entry %d", application.ErrProviderFetch, i)
		}
		out = append(out, domain.SymbolPrice{Symbol: domain.Symbol(t.Symbol), Price: *t.Price})
	}
	return out, nil
}
