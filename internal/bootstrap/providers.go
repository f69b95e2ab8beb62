package bootstrap

import (
	"errors"
	"fmt"
	"net/http"

	"crypto-converter/internal/application"
	"crypto-converter/internal/config"
	"crypto-converter/internal/domain"
	httpserver "crypto-converter/internal/infrastructure/http"
	"crypto-converter/internal/infrastructure/httpx"
	"crypto-converter/internal/infrastructure/logx"
	"crypto-converter/internal/infrastructure/provider"
	redisstore "crypto-converter/internal/infrastructure/redis"
	"crypto-converter/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrUnknownProvider = errors.New("unknown PROVIDER")

// ProvideLogger builds the process logger from the wired config.
func ProvideLogger(cfg config.Config) *zap.Logger { return logx.New(cfg.LogLevel) }

func ProvideConfig() (config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ProvideRedisClient does not dial; connectivity shows up in /readyz.
func ProvideRedisClient(cfg config.Config, log *zap.Logger) (redis.UniversalClient, func(), error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, func() {}, fmt.Errorf("REDIS_URL: %w", err)
	}
	if cfg.RedisTimeout > 0 {
		opts.DialTimeout = cfg.RedisTimeout
		opts.ReadTimeout = cfg.RedisTimeout
		opts.WriteTimeout = cfg.RedisTimeout
	}
	client := redis.NewClient(opts)
	cleanup := func() {
		log.Info("closing redis")
		_ = client.Close()
	}
	return client, cleanup, nil
}

func ProvideQuoteStore(client redis.UniversalClient, cfg config.Config, log *zap.Logger) *redisstore.QuoteStore {
	return redisstore.New(client,
		redisstore.WithLogger(log),
		redisstore.WithKeyTTL(cfg.QuoteObsolete),
	)
}

func ProvidePriceProvider(cfg config.Config) (application.PriceProvider, error) {
	symbols := make([]domain.Symbol, 0, len(cfg.Tickers))
	for _, t := range cfg.Tickers {
		symbols = append(symbols, domain.Symbol(t))
	}
	switch cfg.Provider {
	case "binance":
		return &provider.Binance{
			BaseURL: cfg.BinanceBaseURL,
			Symbols: symbols,
			Client: &httpx.Client{
				HTTP: &http.Client{Timeout: cfg.RequestTimeout},
			},
		}, nil
	case "fake":
		return provider.NewFake(provider.DefaultFakePrices(symbols)...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func ProvideConverterService(store application.QuoteStore, cfg config.Config) *application.ConverterService {
	return application.NewConverterService(store,
		application.WithFreshness(cfg.QuoteFreshness),
		application.WithTolerance(cfg.QuoteTolerance),
	)
}

func ProvideServer(svc *application.ConverterService, store *redisstore.QuoteStore, cfg config.Config, log *zap.Logger) *httpserver.Server {
	srv := httpserver.NewServer(svc)
	srv.SetLogger(log)
	srv.SetReadyCheck(store.Ping)
	srv.SetRequestTimeout(cfg.RequestTimeout)
	return srv
}

func ProvideIngester(p application.PriceProvider, store application.QuoteStore, cfg config.Config, log *zap.Logger) *worker.Ingester {
	return &worker.Ingester{
		Provider: p,
		Store:    store,
		Interval: cfg.SaveInterval,
		MaxAge:   cfg.QuoteObsolete,
		Log:      log,
	}
}
