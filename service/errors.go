package service

import "errors"

var (
	// ErrRateLimited indicates the caller exceeded its request budget.
	ErrRateLimited = errors.New("service: rate limited")

	// ErrClosed indicates the core has been closed.
	ErrClosed = errors.New("service: closed")

	// ErrHeightNotManual indicates the height follows a node and cannot be
	// advanced by hand.
	ErrHeightNotManual = errors.New("service: height source is not manual")
)
