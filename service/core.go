// Package service exposes the share ledgers and the distribution engine as
// one surface. Every call returns a Result tagged with a request id and a
// result code, and mutating calls are rate limited per caller.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bitfsorg/libyield-go/config"
	"github.com/bitfsorg/libyield-go/distribution"
	"github.com/bitfsorg/libyield-go/ledger"
	"github.com/bitfsorg/libyield-go/metrics"
	"github.com/bitfsorg/libyield-go/network"
	"github.com/bitfsorg/libyield-go/store"
)

// Result is the tagged outcome of one call. Code is CodeOK exactly when Err
// is nil; on failure Value holds whatever the call produced before failing.
type Result[T any] struct {
	ID    uuid.UUID
	Value T
	Code  string
	Err   error
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Empty is the value of calls that only succeed or fail.
type Empty struct{}

// HeightSource reports the current chain height.
type HeightSource interface {
	CurrentHeight() uint64
}

// Options configures a Core built from already opened components.
type Options struct {
	Registry *ledger.Registry
	Engine   *distribution.Engine
	Height   HeightSource
	RPS      float64 // per-caller request rate; 0 disables limiting
	Burst    int
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	Now      func() time.Time // clock for rate limiting; nil means time.Now
}

// Core is the exposed surface over a ledger registry and an engine.
type Core struct {
	registry *ledger.Registry
	engine   *distribution.Engine
	height   HeightSource
	limiter  *callerLimiter
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	closers   []func() error
}

// New builds a Core from opened components.
func New(opts Options) (*Core, error) {
	if opts.Registry == nil || opts.Engine == nil || opts.Height == nil {
		return nil, errors.New("service: registry, engine and height source are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Core{
		registry: opts.Registry,
		engine:   opts.Engine,
		height:   opts.Height,
		limiter:  newCallerLimiter(opts.RPS, opts.Burst),
		logger:   logger.With("component", "service"),
		metrics:  opts.Metrics,
		now:      now,
	}, nil
}

// Open builds a Core from cfg: logger, metrics registered with reg (may be
// nil), the bbolt store under cfg.DataDir, one default ledger plus a
// dedicated ledger per configured farm, the distribution engine, and a
// height source. With an RPC URL the height follows the node and is polled
// until ctx is done or the Core is closed; without one it is a ManualHeight
// starting at cfg.Height.Start, moved forward with AdvanceHeight.
func Open(ctx context.Context, cfg config.Config, reg prometheus.Registerer) (_ *Core, err error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	var closers []func() error
	defer func() {
		if err != nil {
			runClosers(closers)
		}
	}()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	closers = append(closers, logCloser.Close)

	rec, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("service: metrics: %w", err)
	}

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	closers = append(closers, db.Close)

	height, stop, err := openHeight(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, stop)

	lopts := func(name string) ledger.Options {
		return ledger.Options{
			Name:           name,
			Admin:          ledger.Account(cfg.Ledger.Admin),
			Self:           ledger.Account(cfg.Ledger.Self),
			MaxMetadataLen: cfg.Ledger.MaxMetadataLen,
			Minters:        accounts[ledger.Account](cfg.Ledger.Minters),
			Store:          db.Ledger(name),
			Height:         height,
			Logger:         logger,
			Metrics:        rec,
		}
	}
	fallback, err := ledger.Open(lopts("default"))
	if err != nil {
		return nil, err
	}
	registry := ledger.NewRegistry(fallback)
	for _, f := range cfg.Ledger.Farms {
		l, err := ledger.Open(lopts("farm-" + strconv.FormatUint(f, 10)))
		if err != nil {
			return nil, err
		}
		if err := registry.Register(ledger.FarmID(f), l); err != nil {
			return nil, err
		}
	}

	engine, err := distribution.Open(distribution.Options{
		Admin:   distribution.Account(cfg.Distribution.Admin),
		Oracles: accounts[distribution.Account](cfg.Distribution.Oracles),
		Source:  registry,
		Store:   db.Engine(),
		Height:  height,
		Logger:  logger,
		Metrics: rec,
	})
	if err != nil {
		return nil, err
	}

	c, err := New(Options{
		Registry: registry,
		Engine:   engine,
		Height:   height,
		RPS:      cfg.RateLimit.RPS,
		Burst:    cfg.RateLimit.Burst,
		Logger:   logger,
		Metrics:  rec,
	})
	if err != nil {
		return nil, err
	}
	c.closers = closers
	c.logger.Info("service opened", "data_dir", cfg.DataDir,
		"farms", len(cfg.Ledger.Farms), "height", height.CurrentHeight())
	return c, nil
}

// openHeight returns the configured height source and a func that stops
// any background polling.
func openHeight(ctx context.Context, cfg config.Config, logger *slog.Logger) (HeightSource, func() error, error) {
	if cfg.RPC.URL == "" {
		return network.NewManualHeight(cfg.Height.Start), func() error { return nil }, nil
	}
	rpcCfg, err := network.ResolveConfig(&network.RPCConfig{
		URL:      cfg.RPC.URL,
		User:     cfg.RPC.User,
		Password: cfg.RPC.Password,
	}, nil, cfg.Network)
	if err != nil {
		return nil, nil, err
	}
	tracker := network.NewTracker(network.NewRPCClient(*rpcCfg), cfg.Height.Start, logger)
	if _, err := tracker.Refresh(ctx); err != nil {
		logger.Warn("initial height refresh failed", "error", err, "height", tracker.CurrentHeight())
	}
	if cfg.Height.PollInterval <= 0 {
		return tracker, func() error { return nil }, nil
	}

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		tracker.Run(pollCtx, cfg.Height.PollInterval)
	}()
	return tracker, func() error {
		cancel()
		<-done
		return nil
	}, nil
}

func accounts[T ~string](ids []string) []T {
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = T(id)
	}
	return out
}

// runClosers runs closers in reverse order of registration.
func runClosers(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops height polling and releases the store and log file. Calls
// made after Close fail with ErrClosed. It is safe to call more than once.
func (c *Core) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = runClosers(c.closers)
	})
	return c.closeErr
}

// manualHeight is a height source that can be moved by hand.
type manualHeight interface {
	HeightSource
	Advance(n uint64) uint64
}

// AdvanceHeight moves a manual height source forward by n blocks and
// returns the new height. It fails with ErrHeightNotManual when the height
// follows a node.
func (c *Core) AdvanceHeight(n uint64) Result[uint64] {
	return call(c, "advance_height", "", func() (uint64, error) {
		m, ok := c.height.(manualHeight)
		if !ok {
			return c.height.CurrentHeight(), ErrHeightNotManual
		}
		h := m.Advance(n)
		c.logger.Info("height advanced", "by", n, "height", h)
		return h, nil
	})
}

// Height returns the height source shared by every component.
func (c *Core) Height() HeightSource { return c.height }

// Registry returns the ledger registry.
func (c *Core) Registry() *ledger.Registry { return c.registry }

// Engine returns the distribution engine.
func (c *Core) Engine() *distribution.Engine { return c.engine }

// call runs fn on behalf of caller and wraps the outcome. A non-empty
// caller spends one rate-limit token first.
func call[T any](c *Core, op, caller string, fn func() (T, error)) Result[T] {
	res := Result[T]{ID: uuid.New()}
	switch {
	case c.closed.Load():
		res.Err = ErrClosed
	case caller != "" && !c.limiter.allow(caller, c.now()):
		res.Err = fmt.Errorf("%w: %s", ErrRateLimited, caller)
	default:
		res.Value, res.Err = fn()
	}
	res.Code = Code(res.Err)
	c.metrics.Result(op, res.Code)

	switch res.Code {
	case CodeOK:
	case CodeInternal:
		c.logger.Error("operation failed", "request_id", res.ID, "op", op, "caller", caller, "error", res.Err)
	default:
		c.logger.Debug("operation rejected", "request_id", res.ID, "op", op, "caller", caller, "code", res.Code)
	}
	return res
}

// exec adapts an error-only operation to call.
func exec(c *Core, op, caller string, fn func() error) Result[Empty] {
	return call(c, op, caller, func() (Empty, error) { return Empty{}, fn() })
}

// Compile-time checks.
var _ manualHeight = (*network.ManualHeight)(nil)

// Compile-time check that a Closer can wrap Core.
var _ io.Closer = (*Core)(nil)
