package redisstore

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"crypto-converter/internal/application"
	"crypto-converter/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	keyPrefix       = "quote:"
	memberDelimiter = ":"
)

func quoteKey(symbol domain.Symbol) string { return keyPrefix + string(symbol) }

// score maps a timestamp to seconds since epoch with microsecond resolution.
// Integers of that magnitude are exact in a float64, so the mapping round-trips.
func score(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

func scoreTime(s float64) time.Time {
	return time.UnixMicro(int64(math.Round(s * 1e6))).UTC()
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// encodeObservation builds the sorted-set entry for one observation. The
// timestamp is part of the member so equal prices at different instants
// never overwrite each other.
func encodeObservation(price decimal.Decimal, at time.Time) redis.Z {
	s := score(at)
	return redis.Z{
		Score:  s,
		Member: price.String() + memberDelimiter + formatScore(s),
	}
}

func decodeObservation(z redis.Z) (domain.Observation, error) {
	member, ok := z.Member.(string)
	if !ok {
		return domain.Observation{}, fmt.Errorf("%w: member of type %T", application.ErrDataCorruption, z.Member)
	}
	parts := strings.Split(member, memberDelimiter)
	if len(parts) != 2 {
		return domain.Observation{}, fmt.Errorf("%w: member %q", application.ErrDataCorruption, member)
	}
	price, err := decimal.NewFromString(parts[0])
	if err != nil {
		return domain.Observation{}, fmt.Errorf("%w: price in %q: %v", application.ErrDataCorruption, member, err)
	}
	if _, err := strconv.ParseFloat(parts[1], 64); err != nil {
		return domain.Observation{}, fmt.Errorf("%w: timestamp in %q: %v", application.ErrDataCorruption, member, err)
	}
	return domain.Observation{Price: price, Timestamp: scoreTime(z.Score)}, nil
}
