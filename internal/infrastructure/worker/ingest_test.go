package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"crypto-converter/internal/application"
	"crypto-converter/internal/domain"
	"crypto-converter/internal/infrastructure/provider"
	redisstore "crypto-converter/internal/infrastructure/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Unix(1_700_000_000, 0).UTC()

func withStore(t *testing.T, clock application.Clock) (*redisstore.QuoteStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return redisstore.New(rdb, redisstore.WithClock(clock)), mr
}

// flakyProvider fails the first failFirst calls.
type flakyProvider struct {
	calls     atomic.Int32
	failFirst int32
	prices    []domain.SymbolPrice
}

func (p *flakyProvider) FetchPrices(context.Context) ([]domain.SymbolPrice, error) {
	n := p.calls.Add(1)
	if n <= p.failFirst {
		return nil, application.ErrProviderFetch
	}
	return p.prices, nil
}

func TestNextDelay(t *testing.T) {
	cases := []struct {
		interval, elapsed, want time.Duration
	}{
		{30 * time.Second, 0, 30 * time.Second},
		{30 * time.Second, 2 * time.Second, 28 * time.Second},
		{30 * time.Second, 30 * time.Second, 0},
		{30 * time.Second, 45 * time.Second, 0},
	}
	for _, c := range cases {
		require.Equal(t, c.want, nextDelay(c.interval, c.elapsed))
	}
}

func TestRunCycle_BatchSharesTimestamp(t *testing.T) {
	clock := application.FixedClock{T: t0}
	store, _ := withStore(t, clock)
	w := &Ingester{
		Provider: provider.NewFake(provider.DefaultFakePrices(nil)...),
		Store:    store,
		Clock:    clock,
	}

	rep := w.RunCycle(context.Background())
	require.Equal(t, "ok", rep.Result())
	require.Equal(t, 2, rep.Written)
	require.True(t, rep.At.Equal(t0))

	btc, err := store.Latest(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.True(t, btc.Price.Equal(decimal.RequireFromString("50000.00")))
	require.True(t, btc.Timestamp.Equal(t0))

	eth, err := store.Latest(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	require.True(t, eth.Price.Equal(decimal.RequireFromString("3000.00")))
	require.True(t, eth.Timestamp.Equal(btc.Timestamp))
}

func TestRunCycle_FetchFailureStillSweeps(t *testing.T) {
	clock := application.FixedClock{T: t0}
	store, _ := withStore(t, clock)
	ctx := context.Background()
	maxAge := time.Hour
	one := []domain.SymbolPrice{{Symbol: "BTCUSDT", Price: decimal.NewFromInt(1)}}
	require.NoError(t, store.Write(ctx, t0.Add(-maxAge-time.Second), one))
	require.NoError(t, store.Write(ctx, t0, one))

	w := &Ingester{
		Provider: &flakyProvider{failFirst: 1},
		Store:    store,
		MaxAge:   maxAge,
		Clock:    clock,
	}
	rep := w.RunCycle(ctx)
	require.ErrorIs(t, rep.FetchErr, application.ErrProviderFetch)
	require.Equal(t, "fetch_failed", rep.Result())
	require.Zero(t, rep.Written)
	require.EqualValues(t, 1, rep.Swept)

	series, err := store.Series(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, series, 1)
	require.True(t, series[0].Timestamp.Equal(t0))
}

func TestRunCycle_BackendDown(t *testing.T) {
	clock := application.FixedClock{T: t0}
	store, mr := withStore(t, clock)
	mr.Close()

	w := &Ingester{
		Provider: provider.NewFake(provider.DefaultFakePrices(nil)...),
		Store:    store,
		Clock:    clock,
	}
	rep := w.RunCycle(context.Background())
	require.ErrorIs(t, rep.WriteErr, application.ErrBackendUnavailable)
	require.ErrorIs(t, rep.SweepErr, application.ErrBackendUnavailable)
	require.Equal(t, "write_failed", rep.Result())
}

func TestStart_KeepsRunningAfterFetchFailure(t *testing.T) {
	store, _ := withStore(t, application.SystemClock)
	p := &flakyProvider{
		failFirst: 2,
		prices:    []domain.SymbolPrice{{Symbol: "BTCUSDT", Price: decimal.NewFromInt(50000)}},
	}
	w := &Ingester{Provider: p, Store: store, Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := store.Latest(context.Background(), "BTCUSDT")
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)
	require.GreaterOrEqual(t, p.calls.Load(), int32(3))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestStart_CancelledBeforeFirstCycle(t *testing.T) {
	store, _ := withStore(t, application.SystemClock)
	p := &flakyProvider{}
	w := &Ingester{Provider: p, Store: store, Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)
	require.Zero(t, p.calls.Load())
}

func TestStart_StopsDuringSleep(t *testing.T) {
	store, _ := withStore(t, application.SystemClock)
	p := &flakyProvider{prices: provider.DefaultFakePrices(nil)}
	w := &Ingester{Provider: p, Store: store, Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop while sleeping")
	}
	require.EqualValues(t, 1, p.calls.Load())
}

type slowProvider struct {
	calls atomic.Int32
	delay time.Duration
}

func (p *slowProvider) FetchPrices(context.Context) ([]domain.SymbolPrice, error) {
	p.calls.Add(1)
	time.Sleep(p.delay)
	return provider.DefaultFakePrices(nil), nil
}

func TestStart_OverrunStartsNextCycleImmediately(t *testing.T) {
	store, _ := withStore(t, application.SystemClock)
	p := &slowProvider{delay: 15 * time.Millisecond}
	w := &Ingester{Provider: p, Store: store, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return p.calls.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
