package application

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")
var ErrBadRequest = errors.New("bad request")
var ErrStale = errors.New("quotes outdated")
var ErrBackendUnavailable = errors.New("backend unavailable")
var ErrProviderFetch = errors.New("provider fetch failed")
var ErrDataCorruption = errors.New("data corruption")

var (
	ErrPairNotFound  = fmt.Errorf("currency pair %w", ErrNotFound)
	ErrQuoteNotFound = fmt.Errorf("quote %w", ErrNotFound)
)
