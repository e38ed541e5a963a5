package network

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// HeightFetcher reports the chain tip height from a node.
type HeightFetcher interface {
	BlockCount(ctx context.Context) (uint64, error)
}

// Compile-time interface check.
var _ HeightFetcher = (*RPCClient)(nil)

// MockHeightFetcher is a test double for HeightFetcher.
type MockHeightFetcher struct {
	BlockCountFn func(ctx context.Context) (uint64, error)
}

// BlockCount calls BlockCountFn.
func (m *MockHeightFetcher) BlockCount(ctx context.Context) (uint64, error) {
	return m.BlockCountFn(ctx)
}

// Tracker caches the chain height reported by a HeightFetcher. Reads never
// block on the network; the cached value only moves forward.
type Tracker struct {
	fetcher HeightFetcher
	height  atomic.Uint64
	logger  *slog.Logger
}

// NewTracker creates a tracker starting at height start.
func NewTracker(fetcher HeightFetcher, start uint64, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{fetcher: fetcher, logger: logger.With("component", "height")}
	t.height.Store(start)
	return t
}

// CurrentHeight returns the last observed height.
func (t *Tracker) CurrentHeight() uint64 { return t.height.Load() }

// Refresh fetches the tip height and stores it. A height below the cached
// one is rejected with ErrHeightRegressed and leaves the cache unchanged.
func (t *Tracker) Refresh(ctx context.Context) (uint64, error) {
	h, err := t.fetcher.BlockCount(ctx)
	if err != nil {
		return t.CurrentHeight(), err
	}
	for {
		cur := t.height.Load()
		if h < cur {
			return cur, fmt.Errorf("%w: node reported %d, have %d", ErrHeightRegressed, h, cur)
		}
		if t.height.CompareAndSwap(cur, h) {
			if h != cur {
				t.logger.Debug("height advanced", "height", h)
			}
			return h, nil
		}
	}
}

// Run refreshes the height every interval until ctx is done. Fetch errors
// are logged and retried on the next tick.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := t.Refresh(ctx); err != nil && ctx.Err() == nil {
			t.logger.Warn("height refresh failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ManualHeight is a height source advanced by hand, for offline use and
// tests.
type ManualHeight struct {
	height atomic.Uint64
}

// NewManualHeight returns a ManualHeight starting at h.
func NewManualHeight(h uint64) *ManualHeight {
	m := &ManualHeight{}
	m.height.Store(h)
	return m
}

// CurrentHeight returns the current height.
func (m *ManualHeight) CurrentHeight() uint64 { return m.height.Load() }

// Set moves the height to h. Heights never decrease; a lower h is ignored.
func (m *ManualHeight) Set(h uint64) {
	for {
		cur := m.height.Load()
		if h <= cur || m.height.CompareAndSwap(cur, h) {
			return
		}
	}
}

// Advance moves the height forward by n blocks and returns the new height.
func (m *ManualHeight) Advance(n uint64) uint64 {
	return m.height.Add(n)
}
