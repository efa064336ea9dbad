package compute

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk is the smallest shard worth a goroutine.
const minChunk = 16

// Pool splits index ranges into contiguous shards and runs them on a
// bounded number of goroutines.
type Pool struct {
	workers int
}

// NewPool returns a pool of n workers. n <= 0 uses every CPU.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return &Pool{workers: n}
}

func (p *Pool) Workers() int { return p.workers }

// ForEach calls fn over disjoint ranges covering [0, n) and waits for all
// of them. The first error cancels ctx for the remaining shards and is
// returned.
func (p *Pool) ForEach(ctx context.Context, n int, fn func(ctx context.Context, lo, hi int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	workers := p.workers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(ctx, 0, n)
	}

	chunkSize := (n + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		lo, hi := start, min(start+chunkSize, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, lo, hi)
		})
	}
	return g.Wait()
}
