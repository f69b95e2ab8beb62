//go:build wireinject

package bootstrap

import (
	"context"

	"crypto-converter/internal/application"
	httpserver "crypto-converter/internal/infrastructure/http"
	redisstore "crypto-converter/internal/infrastructure/redis"
	"crypto-converter/internal/infrastructure/worker"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideRedisClient,
	ProvideQuoteStore,
	wire.Bind(new(application.QuoteStore), new(*redisstore.QuoteStore)),
)

// API injector: builds *httpserver.Server + Cleanup
func InitAPI(ctx context.Context) (*httpserver.Server, func(), error) {
	wire.Build(
		infraSet,
		ProvideConverterService,
		ProvideServer,
	)
	return nil, nil, nil
}

// Worker injector: builds the ingestion process + Cleanup
func InitWorker(ctx context.Context) (*WorkerApp, func(), error) {
	wire.Build(
		infraSet,
		ProvidePriceProvider,
		ProvideIngester,
		wire.Bind(new(application.Worker), new(*worker.Ingester)),
		ProvideWorkerApp,
	)
	return nil, nil, nil
}
