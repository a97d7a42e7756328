// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the number of in-flight network operations allowed
// per process when no size is configured.
const DefaultConcurrency = 5

// Pool is a counting permit shared by every network operation of a run.
// Listing fetches, detail resolution and PDF downloads all draw from the
// same pool.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// NewPool returns a pool with n permits. n <= 0 uses DefaultConcurrency.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = DefaultConcurrency
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n)), size: n}
}

// Acquire blocks until a permit is available or ctx is done.
func (p *Pool) Acquire(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

// Release returns a permit taken by Acquire.
func (p *Pool) Release() {
	p.sem.Release(1)
}

// Size returns the number of permits.
func (p *Pool) Size() int {
	return p.size
}

// Batch runs fn for every item concurrently and returns the results in
// input order once all calls have returned. Completion order is
// unconstrained. Concurrency is bounded by whatever pool fn draws from,
// not by Batch itself.
func Batch[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, i int, item T) R) []R {
	results := make([]R, len(items))
	var g errgroup.Group
	for i, item := range items {
		g.Go(func() error {
			results[i] = fn(ctx, i, item)
			return nil
		})
	}
	g.Wait()
	return results
}
