package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the freshness window used when no TTL option is given.
const DefaultTTL = 30 * time.Second

// FetchFunc loads the value held by a Cell.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type cellConfig struct {
	name         string
	ttl          time.Duration
	waitTimeout  time.Duration
	staleOnError bool
	logger       *zap.Logger
	metrics      *Metrics
	store        Store
	storeKey     string
	now          func() time.Time
}

func defaultCellConfig() cellConfig {
	return cellConfig{
		name:         "default",
		ttl:          DefaultTTL,
		staleOnError: true,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
}

// CellOption configures a Cell or a Group.
type CellOption func(*cellConfig)

// WithTTL sets how long a fetched value is served without refetching.
func WithTTL(ttl time.Duration) CellOption {
	return func(c *cellConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithWaitTimeout bounds how long a caller waits on a fetch started by someone
// else before it abandons that fetch and starts a new one. Zero disables it.
func WithWaitTimeout(d time.Duration) CellOption {
	return func(c *cellConfig) {
		if d >= 0 {
			c.waitTimeout = d
		}
	}
}

// WithStaleOnError controls whether the last good value is served when a fetch fails.
func WithStaleOnError(enabled bool) CellOption {
	return func(c *cellConfig) {
		c.staleOnError = enabled
	}
}

// WithName sets the name used in logs and metric labels.
func WithName(name string) CellOption {
	return func(c *cellConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithCellLogger sets the logger.
func WithCellLogger(logger *zap.Logger) CellOption {
	return func(c *cellConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables request and fetch metrics.
func WithMetrics(m *Metrics) CellOption {
	return func(c *cellConfig) {
		c.metrics = m
	}
}

// WithSharedStore backs the cell with a second-level store shared between
// processes. For a Group the key is used as a prefix.
func WithSharedStore(store Store, key string) CellOption {
	return func(c *cellConfig) {
		c.store = store
		c.storeKey = key
	}
}

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) CellOption {
	return func(c *cellConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Cell memoizes the result of a FetchFunc for a fixed window and coalesces
// concurrent loads into a single call.
type Cell[T any] struct {
	cfg   cellConfig
	fetch FetchFunc[T]
	group singleflight.Group

	mu        sync.RWMutex
	value     T
	hasValue  bool
	fetchedAt time.Time
	lastGood  T
	hasGood   bool
	// gen changes on invalidation. flight changes when a waiter gives up on a
	// pending fetch; committed is the flight of the value currently held.
	gen       uint64
	flight    uint64
	committed uint64
}

// storedValue is the shared store payload. FetchedAt keeps the age of the
// value across processes.
type storedValue[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

// fetchRun records how a caller's flight was served. Only the caller whose
// function singleflight executed sees led set.
type fetchRun struct {
	led       bool
	fromStore bool
}

// NewCell creates a Cell around fetch.
func NewCell[T any](fetch FetchFunc[T], opts ...CellOption) *Cell[T] {
	cfg := defaultCellConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newCellWithConfig(fetch, cfg)
}

func newCellWithConfig[T any](fetch FetchFunc[T], cfg cellConfig) *Cell[T] {
	return &Cell[T]{cfg: cfg, fetch: fetch}
}

// Name returns the cell name.
func (c *Cell[T]) Name() string {
	return c.cfg.name
}

// Get returns the cached value while it is fresh, otherwise it joins or starts a fetch.
func (c *Cell[T]) Get(ctx context.Context) (T, error) {
	if v, ok := c.fresh(); ok {
		c.cfg.metrics.request(c.cfg.name, ResultHit)
		return v, nil
	}
	gen, flight := c.pending()
	return c.await(ctx, gen, flight)
}

// Peek returns the cached value without fetching. The boolean is false when
// the cell is empty; expired values are still returned.
func (c *Cell[T]) Peek() (T, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.fetchedAt, c.hasValue
}

// Set primes the cell with v as if it had just been fetched.
func (c *Cell[T]) Set(ctx context.Context, v T) {
	gen, flight := c.pending()
	at := c.cfg.now()
	if c.commit(gen, flight, v, at) {
		c.writeStore(ctx, v, at)
	}
}

// Invalidate drops the cached value and the last good value kept for fetch
// errors. Fetches already in flight complete for their callers but do not
// repopulate the cell.
func (c *Cell[T]) Invalidate(ctx context.Context) {
	c.reset(ctx, false)
}

// Refresh drops the cached value and fetches a new one. Unlike Invalidate it
// keeps the last good value as the fallback for a failing fetch.
func (c *Cell[T]) Refresh(ctx context.Context) (T, error) {
	c.reset(ctx, true)
	return c.Get(ctx)
}

func (c *Cell[T]) reset(ctx context.Context, keepLastGood bool) {
	var zero T
	c.mu.Lock()
	c.gen++
	c.value = zero
	c.hasValue = false
	c.fetchedAt = time.Time{}
	if !keepLastGood {
		c.lastGood = zero
		c.hasGood = false
	}
	c.mu.Unlock()

	if c.cfg.store != nil {
		deleteShared(ctx, c.cfg, c.cfg.storeKey)
	}
	c.cfg.logger.Debug("Cache cell invalidated", zap.String("cell", c.cfg.name))
}

func (c *Cell[T]) fresh() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.hasValue && c.cfg.now().Sub(c.fetchedAt) < c.cfg.ttl {
		return c.value, true
	}
	var zero T
	return zero, false
}

func (c *Cell[T]) pending() (uint64, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen, c.flight
}

// commit stores v unless the cell was invalidated since the fetch started or
// a later flight already committed.
func (c *Cell[T]) commit(gen, flight uint64, v T, at time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || flight < c.committed {
		return false
	}
	c.value = v
	c.hasValue = true
	c.fetchedAt = at
	c.lastGood = v
	c.hasGood = true
	c.committed = flight
	return true
}

// abandon gives up on a flight that exceeded the wait timeout and returns the
// flight to join next. Only the first waiter to give up starts a new flight;
// later ones join it.
func (c *Cell[T]) abandon(gen, flight uint64) (uint64, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen && c.flight == flight {
		c.flight++
		c.group.Forget(flightKey(gen, flight))
		c.cfg.logger.Warn("Pending cache fetch exceeded wait timeout, starting a new one",
			zap.String("cell", c.cfg.name),
			zap.Duration("wait_timeout", c.cfg.waitTimeout))
	}
	return c.gen, c.flight
}

func (c *Cell[T]) stale() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastGood, c.hasGood
}

func flightKey(gen, flight uint64) string {
	return fmt.Sprintf("g%d.f%d", gen, flight)
}

func (c *Cell[T]) await(ctx context.Context, gen, flight uint64) (T, error) {
	var zero T
	run := &fetchRun{}
	ch := c.group.DoChan(flightKey(gen, flight), c.runner(ctx, gen, flight, run))

	var timeout <-chan time.Time
	if c.cfg.waitTimeout > 0 {
		timer := time.NewTimer(c.cfg.waitTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res := <-ch:
		return c.settle(res, run)
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timeout:
	}

	c.cfg.metrics.request(c.cfg.name, ResultTimeout)
	if v, ok := c.fresh(); ok {
		return v, nil
	}

	gen, flight = c.abandon(gen, flight)
	retry := &fetchRun{}
	ch = c.group.DoChan(flightKey(gen, flight), c.runner(ctx, gen, flight, retry))
	select {
	case res := <-ch:
		return c.settle(res, retry)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// runner detaches the fetch from the caller's cancellation so one caller
// giving up does not fail everyone else waiting on the same fetch.
func (c *Cell[T]) runner(ctx context.Context, gen, flight uint64, run *fetchRun) func() (any, error) {
	fetchCtx := context.WithoutCancel(ctx)
	return func() (any, error) {
		run.led = true
		if v, at, ok := c.readStore(fetchCtx); ok {
			run.fromStore = true
			c.commit(gen, flight, v, at)
			return v, nil
		}

		start := time.Now()
		v, err := c.fetch(fetchCtx)
		c.cfg.metrics.fetched(c.cfg.name, time.Since(start))
		if err != nil {
			return nil, err
		}
		at := c.cfg.now()
		if c.commit(gen, flight, v, at) {
			c.writeStore(fetchCtx, v, at)
		}
		return v, nil
	}
}

func (c *Cell[T]) settle(res singleflight.Result, run *fetchRun) (T, error) {
	if res.Err != nil {
		if c.cfg.staleOnError {
			if v, ok := c.stale(); ok {
				c.cfg.metrics.request(c.cfg.name, ResultStale)
				c.cfg.logger.Warn("Cache fetch failed, serving last good value",
					zap.String("cell", c.cfg.name),
					zap.Error(res.Err))
				return v, nil
			}
		}
		c.cfg.metrics.request(c.cfg.name, ResultError)
		c.cfg.logger.Error("Cache fetch failed",
			zap.String("cell", c.cfg.name),
			zap.Error(res.Err))
		var zero T
		return zero, res.Err
	}

	switch {
	case !run.led:
		c.cfg.metrics.request(c.cfg.name, ResultCoalesced)
	case run.fromStore:
		c.cfg.metrics.request(c.cfg.name, ResultHit)
	default:
		c.cfg.metrics.request(c.cfg.name, ResultMiss)
	}
	v, _ := res.Val.(T)
	return v, nil
}

// readStore returns the shared value and its fetch time. Values past the TTL
// count as a miss even if the store still holds them.
func (c *Cell[T]) readStore(ctx context.Context) (T, time.Time, bool) {
	var entry storedValue[T]
	if c.cfg.store == nil {
		return entry.Value, time.Time{}, false
	}
	found, err := c.cfg.store.Get(ctx, c.cfg.storeKey, &entry)
	if err != nil {
		c.cfg.logger.Warn("Failed to read shared cache entry",
			zap.String("cell", c.cfg.name),
			zap.String("key", c.cfg.storeKey),
			zap.Error(err))
		var zero T
		return zero, time.Time{}, false
	}
	if !found || entry.FetchedAt.IsZero() || c.cfg.now().Sub(entry.FetchedAt) >= c.cfg.ttl {
		var zero T
		return zero, time.Time{}, false
	}
	return entry.Value, entry.FetchedAt, true
}

// writeStore keeps the value in the shared store for the rest of its TTL.
func (c *Cell[T]) writeStore(ctx context.Context, v T, at time.Time) {
	if c.cfg.store == nil {
		return
	}
	ttl := c.cfg.ttl - c.cfg.now().Sub(at)
	if ttl <= 0 {
		return
	}
	if err := c.cfg.store.Set(ctx, c.cfg.storeKey, storedValue[T]{Value: v, FetchedAt: at}, ttl); err != nil {
		c.cfg.logger.Warn("Failed to write shared cache entry",
			zap.String("cell", c.cfg.name),
			zap.String("key", c.cfg.storeKey),
			zap.Error(err))
	}
}

func deleteShared(ctx context.Context, cfg cellConfig, key string) {
	if err := cfg.store.Delete(ctx, key); err != nil {
		cfg.logger.Warn("Failed to delete shared cache entry",
			zap.String("cell", cfg.name),
			zap.String("key", key),
			zap.Error(err))
	}
}
