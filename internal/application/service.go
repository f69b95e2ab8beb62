package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto-converter/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultFreshness = 60 * time.Second
	DefaultTolerance = 60 * time.Second
	// DefaultLookupTimeout bounds a coalesced latest lookup, which does not
	// follow any single caller's context.
	DefaultLookupTimeout = 3 * time.Second
)

type ConvertRequest struct {
	From   string
	To     string
	Amount decimal.Decimal
	// At selects a point-in-time quote; nil means the latest one.
	At *time.Time
	// Tolerance overrides the service default for At lookups.
	Tolerance time.Duration
}

type ConverterService struct {
	store     QuoteStore
	clock     Clock
	freshness time.Duration
	tolerance time.Duration
	lookup    time.Duration
	latest    singleflight.Group
}

type Option func(*ConverterService)

func WithClock(c Clock) Option { return func(s *ConverterService) { s.clock = c } }
func WithFreshness(d time.Duration) Option {
	return func(s *ConverterService) { s.freshness = d }
}
func WithTolerance(d time.Duration) Option {
	return func(s *ConverterService) { s.tolerance = d }
}
func WithLookupTimeout(d time.Duration) Option {
	return func(s *ConverterService) { s.lookup = d }
}

func NewConverterService(store QuoteStore, opts ...Option) *ConverterService {
	s := &ConverterService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = SystemClock
	}
	if s.freshness <= 0 {
		s.freshness = DefaultFreshness
	}
	if s.tolerance <= 0 {
		s.tolerance = DefaultTolerance
	}
	if s.lookup <= 0 {
		s.lookup = DefaultLookupTimeout
	}
	return s
}

func (s *ConverterService) Convert(ctx context.Context, req ConvertRequest) (domain.Conversion, error) {
	symbol, err := domain.NewSymbol(req.From, req.To)
	if err != nil {
		return domain.Conversion{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if !req.Amount.IsPositive() {
		return domain.Conversion{}, fmt.Errorf("%w: %w", ErrBadRequest, domain.ErrInvalidAmount)
	}

	var obs domain.Observation
	if req.At != nil {
		obs, err = s.QuoteAt(ctx, symbol, *req.At, req.Tolerance)
	} else {
		obs, err = s.FreshQuote(ctx, symbol)
	}
	if err != nil {
		return domain.Conversion{}, err
	}
	return domain.Convert(obs.Price, req.Amount)
}

// FreshQuote returns the latest observation unless it is older than the
// freshness window.
func (s *ConverterService) FreshQuote(ctx context.Context, symbol domain.Symbol) (domain.Observation, error) {
	ch := s.latest.DoChan(string(symbol), func() (any, error) {
		// Shared by every coalesced caller, so one caller going away must
		// not cancel it for the rest.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.lookup)
		defer cancel()
		return s.store.Latest(sctx, symbol)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return domain.Observation{}, fmt.Errorf("%w: latest: %w", ErrBackendUnavailable, ctx.Err())
	case res = <-ch:
	}
	if errors.Is(res.Err, ErrNotFound) {
		return domain.Observation{}, ErrPairNotFound
	}
	if res.Err != nil {
		return domain.Observation{}, res.Err
	}
	obs := res.Val.(domain.Observation)
	if obs.Timestamp.Before(s.clock.Now().Add(-s.freshness)) {
		return domain.Observation{}, ErrStale
	}
	return obs, nil
}

func (s *ConverterService) QuoteAt(ctx context.Context, symbol domain.Symbol, target time.Time, tolerance time.Duration) (domain.Observation, error) {
	if tolerance <= 0 {
		tolerance = s.tolerance
	}
	obs, err := s.store.At(ctx, symbol, target, tolerance)
	if errors.Is(err, ErrNotFound) {
		return domain.Observation{}, ErrQuoteNotFound
	}
	return obs, err
}
