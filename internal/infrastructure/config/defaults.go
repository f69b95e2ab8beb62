package config

import "time"

const (
	DefaultHTTPPort        = "8000"
	DefaultMetricsAddr     = ":9100"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRequestTimeout  = 3 * time.Second
	DefaultRedisURL        = "redis://localhost:6379"
	DefaultRedisTimeout    = time.Second
	DefaultBinanceBaseURL  = "https://api.binance.com"

	DefaultSaveInterval      = 30 * time.Second
	DefaultQuoteObsolete     = 7 * 24 * time.Hour
	DefaultQuoteFreshness    = 60 * time.Second
	DefaultQuoteTolerance    = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
)
