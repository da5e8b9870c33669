package cache

import (
	"context"
	"fmt"
	"sync"
)

// KeyedFetchFunc loads the value for one key of a Group.
type KeyedFetchFunc[K comparable, T any] func(ctx context.Context, key K) (T, error)

// Group holds one lazily created Cell per key, e.g. one per tenant.
// All cells share the group's options and metric name.
type Group[K comparable, T any] struct {
	cfg   cellConfig
	fetch KeyedFetchFunc[K, T]

	mu    sync.Mutex
	cells map[K]*Cell[T]
}

// NewGroup creates an empty Group. A shared store key given through
// WithSharedStore is used as a prefix for each cell's key.
func NewGroup[K comparable, T any](fetch KeyedFetchFunc[K, T], opts ...CellOption) *Group[K, T] {
	cfg := defaultCellConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Group[K, T]{
		cfg:   cfg,
		fetch: fetch,
		cells: make(map[K]*Cell[T]),
	}
}

// Cell returns the cell for key, creating it on first use.
func (g *Group[K, T]) Cell(key K) *Cell[T] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cell, ok := g.cells[key]; ok {
		return cell
	}

	cfg := g.cfg
	if cfg.store != nil {
		cfg.storeKey = g.storeKey(key)
	}
	cell := newCellWithConfig(func(ctx context.Context) (T, error) {
		return g.fetch(ctx, key)
	}, cfg)
	g.cells[key] = cell
	return cell
}

// Get returns the value for key.
func (g *Group[K, T]) Get(ctx context.Context, key K) (T, error) {
	return g.Cell(key).Get(ctx)
}

// Refresh invalidates and refetches the value for key.
func (g *Group[K, T]) Refresh(ctx context.Context, key K) (T, error) {
	return g.Cell(key).Refresh(ctx)
}

func (g *Group[K, T]) storeKey(key K) string {
	prefix := g.cfg.storeKey
	if prefix == "" {
		prefix = g.cfg.name
	}
	return fmt.Sprintf("%s:%v", prefix, key)
}

// Invalidate drops the cached value for key. Keys without a local cell are not
// created, but their shared store entry is still deleted.
func (g *Group[K, T]) Invalidate(ctx context.Context, key K) {
	g.mu.Lock()
	cell, ok := g.cells[key]
	g.mu.Unlock()
	if ok {
		cell.Invalidate(ctx)
		return
	}
	if g.cfg.store != nil {
		deleteShared(ctx, g.cfg, g.storeKey(key))
	}
}

// InvalidateAll drops every local cell's value. Shared store entries are only
// deleted for keys that have a cell in this process; other entries expire
// with their TTL.
func (g *Group[K, T]) InvalidateAll(ctx context.Context) {
	g.mu.Lock()
	cells := make([]*Cell[T], 0, len(g.cells))
	for _, cell := range g.cells {
		cells = append(cells, cell)
	}
	g.mu.Unlock()

	for _, cell := range cells {
		cell.Invalidate(ctx)
	}
}

// Len returns the number of cells created so far.
func (g *Group[K, T]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cells)
}
