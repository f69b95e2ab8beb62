package worker

import (
	"context"
	"errors"
	"time"

	"crypto-converter/internal/application"
	"crypto-converter/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

const (
	defaultInterval = 30 * time.Second
	defaultMaxAge   = 7 * 24 * time.Hour
)

var _ application.Worker = (*Ingester)(nil)

// Ingester periodically pulls prices from Provider, stores them with one
// shared timestamp and sweeps observations older than MaxAge.
type Ingester struct {
	Provider application.PriceProvider
	Store    application.QuoteStore

	Interval time.Duration
	MaxAge   time.Duration
	Clock    application.Clock
	Log      *zap.Logger
}

// CycleReport describes what one cycle did.
type CycleReport struct {
	At       time.Time
	Written  int
	Swept    int64
	FetchErr error
	WriteErr error
	SweepErr error
	Elapsed  time.Duration
}

// Result is the metrics label for the first failing step.
func (r CycleReport) Result() string {
	switch {
	case r.FetchErr != nil:
		return "fetch_failed"
	case r.WriteErr != nil:
		return "write_failed"
	case r.SweepErr != nil:
		return "sweep_failed"
	default:
		return "ok"
	}
}

func (w *Ingester) defaults() {
	if w.Interval <= 0 {
		w.Interval = defaultInterval
	}
	if w.MaxAge <= 0 {
		w.MaxAge = defaultMaxAge
	}
	if w.Clock == nil {
		w.Clock = application.SystemClock
	}
	if w.Log == nil {
		w.Log = zap.NewNop()
	}
}

// nextDelay returns how long to sleep so cycles start on a fixed period.
// Overruns start the next cycle immediately.
func nextDelay(interval, elapsed time.Duration) time.Duration {
	if d := interval - elapsed; d > 0 {
		return d
	}
	return 0
}

func (w *Ingester) Start(ctx context.Context) {
	w.defaults()
	log := w.Log.With(zap.String("worker", "ingest"))
	log.Info("ingest_worker_started",
		zap.Duration("interval", w.Interval),
		zap.Duration("max_age", w.MaxAge))

	for {
		if ctx.Err() != nil {
			log.Info("ingest_worker_stopped")
			return
		}
		rep := w.RunCycle(ctx)

		timer := time.NewTimer(nextDelay(w.Interval, rep.Elapsed))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("ingest_worker_stopped")
			return
		case <-timer.C:
		}
	}
}

// RunCycle fetches, writes and sweeps once. A failed fetch skips the write
// but the sweep still runs.
func (w *Ingester) RunCycle(ctx context.Context) CycleReport {
	w.defaults()
	log := w.Log
	start := w.Clock.Now()
	var rep CycleReport

	prices, err := w.Provider.FetchPrices(ctx)
	if err != nil {
		rep.FetchErr = err
		logStepErr(ctx, log, "ingest.fetch_failed", err)
	} else {
		rep.At = w.Clock.Now()
		if err := w.Store.Write(ctx, rep.At, prices); err != nil {
			rep.WriteErr = err
			logStepErr(ctx, log, "ingest.write_failed", err)
		} else {
			rep.Written = len(prices)
		}
	}

	swept, err := w.Store.Sweep(ctx, w.MaxAge)
	if err != nil {
		rep.SweepErr = err
		logStepErr(ctx, log, "ingest.sweep_failed", err)
	} else {
		rep.Swept = swept
	}

	rep.Elapsed = w.Clock.Now().Sub(start)
	metrics.RecordCycle(rep.Result(), rep.Elapsed, rep.Written, rep.Swept)
	if rep.Result() == "ok" {
		log.Debug("ingest.cycle_done",
			zap.Int("written", rep.Written),
			zap.Int64("swept", rep.Swept),
			zap.Duration("elapsed", rep.Elapsed))
	}
	return rep
}

// logStepErr stays quiet when the failure is just shutdown.
func logStepErr(ctx context.Context, log *zap.Logger, event string, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}
	log.Warn(event, zap.Error(err))
}
