package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs one config under consecutive seeds.
type Ensemble struct {
	cfg       *config.Config
	registry  *Registry
	numRuns   int
	seedStart int64
	parallel  int
}

// NewEnsemble prepares numRuns copies of cfg seeded from seedStart. At most
// parallel runs execute at once; parallel <= 0 means no limit.
func NewEnsemble(r *Registry, cfg *config.Config, numRuns int, seedStart int64, parallel int) *Ensemble {
	return &Ensemble{cfg: cfg, registry: r, numRuns: numRuns, seedStart: seedStart, parallel: parallel}
}

// Run returns one result per seed in seed order. The first failure cancels
// the runs still going.
func (e *Ensemble) Run(ctx context.Context) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.parallel > 0 {
		g.SetLimit(e.parallel)
	}
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			cfg := e.cfg.Clone()
			cfg.Seed = e.seedStart + int64(i)
			// runs already execute side by side
			cfg.Workers = 1

			exp := New(cfg)
			if err := exp.Setup(e.registry, true); err != nil {
				return fmt.Errorf("seed %d: %w", cfg.Seed, err)
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("seed %d: %w", cfg.Seed, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
