package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"crypto-converter/internal/application"
	"crypto-converter/internal/config"
	defaults "crypto-converter/internal/infrastructure/config"
	httpserver "crypto-converter/internal/infrastructure/http"
	redisstore "crypto-converter/internal/infrastructure/redis"

	"go.uber.org/zap"
)

// WorkerApp is the worker process: the ingestion loop plus an optional
// metrics/health listener.
type WorkerApp struct {
	Worker      application.Worker
	Ready       func(context.Context) error
	MetricsAddr string
	Log         *zap.Logger
}

func ProvideWorkerApp(w application.Worker, store *redisstore.QuoteStore, cfg config.Config, log *zap.Logger) *WorkerApp {
	return &WorkerApp{
		Worker:      w,
		Ready:       store.Ping,
		MetricsAddr: cfg.MetricsAddr,
		Log:         log,
	}
}

// Run blocks until ctx is canceled and the worker has returned.
func (a *WorkerApp) Run(ctx context.Context) error {
	if a.Worker == nil {
		return errors.New("no worker configured")
	}
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}

	var side *http.Server
	if a.MetricsAddr != "" {
		side = &http.Server{
			Addr:              a.MetricsAddr,
			Handler:           httpserver.MetricsRouter(a.Ready, log),
			ReadHeaderTimeout: defaults.DefaultReadHeaderTimeout,
		}
		go func() {
			log.Info("metrics_listener_started", zap.String("addr", a.MetricsAddr))
			if err := side.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics_listener_failed", zap.Error(err))
			}
		}()
	}

	a.Worker.Start(ctx)

	if side != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaults.DefaultShutdownTimeout)
		defer cancel()
		_ = side.Shutdown(shutdownCtx)
	}
	return nil
}
