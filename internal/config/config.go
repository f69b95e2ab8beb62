package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	defaults "crypto-converter/internal/infrastructure/config"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port           string
	RequestTimeout time.Duration
	// Worker
	MetricsAddr  string
	SaveInterval time.Duration
	// Provider
	Provider       string
	BinanceBaseURL string
	Tickers        []string
	// Quotes
	QuoteObsolete  time.Duration
	QuoteFreshness time.Duration
	QuoteTolerance time.Duration
	// Redis
	RedisURL     string
	RedisTimeout time.Duration

	tickersErr error
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func durationDef(key string, unit, def time.Duration) time.Duration {
	n := atoiDef(os.Getenv(key), -1)
	if n < 0 {
		return def
	}
	return time.Duration(n) * unit
}

// parseTickers accepts either a JSON array (`["BTCUSDT","ETHUSDT"]`) or a
// comma separated list. Symbols are upper-cased; blanks are dropped.
func parseTickers(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var items []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("TICKERS: %w", err)
		}
	} else {
		items = strings.Split(raw, ",")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.ToUpper(strings.TrimSpace(it)); it != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

// Load reads environment variables and applies defaults.
func Load() Config {
	tickers, tickersErr := parseTickers(os.Getenv("TICKERS"))
	metricsAddr, ok := os.LookupEnv("METRICS_ADDR")
	if !ok {
		metricsAddr = defaults.DefaultMetricsAddr
	}
	return Config{
		Env:            getEnv("ENV", "local"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnv("PORT", defaults.DefaultHTTPPort),
		RequestTimeout: durationDef("REQUEST_TIMEOUT_MS", time.Millisecond, defaults.DefaultRequestTimeout),
		MetricsAddr:    metricsAddr,
		SaveInterval:   durationDef("SAVE_INTERVAL", time.Second, defaults.DefaultSaveInterval),
		Provider:       strings.ToLower(getEnv("PROVIDER", "binance")),
		BinanceBaseURL: getEnv("BINANCE_BASE_URL", defaults.DefaultBinanceBaseURL),
		Tickers:        tickers,
		QuoteObsolete:  durationDef("QUOTE_OBSOLETE_DAYS", 24*time.Hour, defaults.DefaultQuoteObsolete),
		QuoteFreshness: durationDef("QUOTE_FRESH_SECONDS", time.Second, defaults.DefaultQuoteFreshness),
		QuoteTolerance: durationDef("QUOTE_TOLERANCE_SECONDS", time.Second, defaults.DefaultQuoteTolerance),
		RedisURL:       getEnv("REDIS_URL", defaults.DefaultRedisURL),
		RedisTimeout:   durationDef("REDIS_TIMEOUT_MS", time.Millisecond, defaults.DefaultRedisTimeout),
		tickersErr:     tickersErr,
	}
}

// Validate reports settings that would make a process misbehave at runtime.
func (c Config) Validate() error {
	var errs []error
	if c.tickersErr != nil {
		errs = append(errs, c.tickersErr)
	}
	switch c.Provider {
	case "binance", "fake":
	default:
		errs = append(errs, fmt.Errorf("PROVIDER: unknown provider %q", c.Provider))
	}
	if c.SaveInterval <= 0 {
		errs = append(errs, errors.New("SAVE_INTERVAL must be positive"))
	}
	if c.QuoteObsolete <= 0 {
		errs = append(errs, errors.New("QUOTE_OBSOLETE_DAYS must be positive"))
	}
	if c.QuoteFreshness <= 0 {
		errs = append(errs, errors.New("QUOTE_FRESH_SECONDS must be positive"))
	}
	return errors.Join(errs...)
}
