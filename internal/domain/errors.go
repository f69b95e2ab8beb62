package domain

import "errors"

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidTicker = errors.New("invalid ticker")
)
