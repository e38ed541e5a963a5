package store

import "errors"

var (
	// ErrCorruptRecord indicates a stored key or value cannot be decoded.
	ErrCorruptRecord = errors.New("store: corrupt record")

	// ErrNilDelta indicates Apply was called without a delta.
	ErrNilDelta = errors.New("store: nil delta")
)
