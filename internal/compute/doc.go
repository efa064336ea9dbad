// Package compute runs per-body work across CPU cores.
//
// Work is split into contiguous index shards, one goroutine each, capped at
// the pool's worker count. Small inputs run inline on the caller's
// goroutine:
//
//	pool := compute.NewPool(runtime.NumCPU())
//	err := pool.ForEach(ctx, len(bodies), func(ctx context.Context, lo, hi int) error {
//		for i := lo; i < hi; i++ {
//			forces[i], err = field.ForceOn(i)
//			...
//		}
//		return nil
//	})
//
// Each shard writes only its own indices, so results need no locking.
package compute
