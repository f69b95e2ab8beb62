package redisstore

import (
	"context"
	"fmt"
	"time"

	"crypto-converter/internal/application"
	"crypto-converter/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultScanCount = 100

var _ application.QuoteStore = (*QuoteStore)(nil)

// QuoteStore keeps one sorted set per symbol, scored by observation time.
// It holds no state of its own; everything lives in Redis.
type QuoteStore struct {
	client    redis.UniversalClient
	log       *zap.Logger
	clock     application.Clock
	keyTTL    time.Duration
	scanCount int64
}

type Option func(*QuoteStore)

func WithLogger(l *zap.Logger) Option { return func(s *QuoteStore) { s.log = l } }
func WithClock(c application.Clock) Option { return func(s *QuoteStore) { s.clock = c } }
func WithKeyTTL(ttl time.Duration) Option { return func(s *QuoteStore) { s.keyTTL = ttl } }
func WithScanCount(n int64) Option { return func(s *QuoteStore) { s.scanCount = n } }

func New(client redis.UniversalClient, opts ...Option) *QuoteStore {
	s := &QuoteStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.clock == nil {
		s.clock = application.SystemClock
	}
	if s.scanCount <= 0 {
		s.scanCount = defaultScanCount
	}
	return s
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", application.ErrBackendUnavailable, op, err)
}

// Write stores one observation per symbol, all stamped with at. The pipeline
// is not transactional: on failure some symbols may already be written.
// Any previous observation with the same timestamp is replaced, so
// rewriting an identical observation is a no-op.
func (s *QuoteStore) Write(ctx context.Context, at time.Time, prices []domain.SymbolPrice) error {
	if len(prices) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, p := range prices {
		key := quoteKey(p.Symbol)
		z := encodeObservation(p.Price, at)
		bound := formatScore(z.Score)
		pipe.ZRemRangeByScore(ctx, key, bound, bound)
		pipe.ZAdd(ctx, key, z)
		if s.keyTTL > 0 {
			pipe.Expire(ctx, key, s.keyTTL)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable("write", err)
	}
	return nil
}

func (s *QuoteStore) Latest(ctx context.Context, symbol domain.Symbol) (domain.Observation, error) {
	res, err := s.client.ZRevRangeWithScores(ctx, quoteKey(symbol), 0, 0).Result()
	if err != nil {
		return domain.Observation{}, unavailable("latest", err)
	}
	if len(res) == 0 {
		return domain.Observation{}, application.ErrNotFound
	}
	return decodeObservation(res[0])
}

// At returns the observation closest to target within ±tolerance.
// Equidistant candidates resolve to the earlier timestamp.
func (s *QuoteStore) At(ctx context.Context, symbol domain.Symbol, target time.Time, tolerance time.Duration) (domain.Observation, error) {
	if tolerance <= 0 {
		tolerance = application.DefaultTolerance
	}
	// Scores hold whole microseconds; align the target so the window is exact.
	target = target.Round(time.Microsecond)
	res, err := s.client.ZRangeByScoreWithScores(ctx, quoteKey(symbol), &redis.ZRangeBy{
		Min: formatScore(score(target.Add(-tolerance))),
		Max: formatScore(score(target.Add(tolerance))),
	}).Result()
	if err != nil {
		return domain.Observation{}, unavailable("at", err)
	}
	if len(res) == 0 {
		return domain.Observation{}, application.ErrNotFound
	}

	want := target.UnixMicro()
	best, bestDiff := 0, int64(-1)
	for i, z := range res {
		diff := scoreTime(z.Score).UnixMicro() - want
		if diff < 0 {
			diff = -diff
		}
		// res is ascending, so strict comparison keeps the earliest on ties.
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return decodeObservation(res[best])
}

// Series returns every stored observation for symbol, oldest first.
func (s *QuoteStore) Series(ctx context.Context, symbol domain.Symbol) ([]domain.Observation, error) {
	res, err := s.client.ZRangeWithScores(ctx, quoteKey(symbol), 0, -1).Result()
	if err != nil {
		return nil, unavailable("series", err)
	}
	out := make([]domain.Observation, 0, len(res))
	for _, z := range res {
		obs, err := decodeObservation(z)
		if err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, nil
}

// Sweep drops observations older than now-maxAge from every symbol.
// Keys are visited with SCAN, so symbols created mid-sweep may be missed.
func (s *QuoteStore) Sweep(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.clock.Now().Add(-maxAge)
	// "(" makes the bound exclusive: an observation exactly at the cutoff survives.
	upper := "(" + formatScore(score(cutoff))

	var total int64
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", s.scanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		n, err := s.client.ZRemRangeByScore(ctx, key, "-inf", upper).Result()
		if err != nil {
			return total, unavailable("sweep", err)
		}
		if n > 0 {
			s.log.Info("quote_store.swept", zap.String("key", key), zap.Int64("removed", n))
		}
		total += n
	}
	if err := iter.Err(); err != nil {
		return total, unavailable("sweep scan", err)
	}
	return total, nil
}

func (s *QuoteStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}
