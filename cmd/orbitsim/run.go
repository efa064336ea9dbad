package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/telemetry"
	"github.com/san-kum/orbitsim/internal/viz"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

func newRunCmd() *cobra.Command {
	var (
		metricsAddr string
		quiet       bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its trajectory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			return runSimulation(cmd.Context(), cfg, metricsAddr, quiet)
		},
	}
	addSimFlags(cmd, &opts)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")
	return cmd
}

// progress draws a bar on stderr every few percent.
type progress struct {
	total, last int
}

func (p *progress) OnStats(s dynamo.StepStats) {
	if p.total == 0 {
		return
	}
	pct := s.Step * 100 / p.total
	if pct == p.last && s.Step != p.total {
		return
	}
	p.last = pct
	fmt.Fprintf(os.Stderr, "\r%s %3d%%", viz.ProgressBar(float64(s.Step)/float64(p.total), 30), pct)
	if s.Step == p.total {
		fmt.Fprintln(os.Stderr)
	}
}

func runSimulation(ctx context.Context, cfg *config.Config, metricsAddr string, quiet bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	recorder := storage.NewRecorder(max(1, cfg.SampleEvery))
	simOpts := []sim.Option{sim.WithObserver(recorder)}
	if !quiet {
		simOpts = append(simOpts, sim.WithStatsObserver(&progress{total: cfg.Steps, last: -1}))
	}

	var reg *prometheus.Registry
	if metricsAddr != "" {
		reg = prometheus.NewRegistry()
		collector, err := telemetry.NewCollector(reg)
		if err != nil {
			return err
		}
		simOpts = append(simOpts, sim.WithStatsObserver(collector))
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), true, simOpts...); err != nil {
		return err
	}
	fmt.Printf("running %s: %d bodies, %d steps, %s\n", cfg.Scenario, len(exp.InitialBodies()), cfg.Steps, cfg.Mode)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelServer := context.WithCancel(gctx)
	if reg != nil {
		g.Go(func() error { return telemetry.Serve(runCtx, metricsAddr, reg) })
	}

	var result *dynamo.Result
	start := time.Now()
	g.Go(func() error {
		defer cancelServer()
		var err error
		result, err = exp.Run(gctx)
		return err
	})
	runErr := g.Wait()
	elapsed := time.Since(start)

	// keep what was simulated even when the run stopped early
	if result == nil || result.Steps == 0 {
		if runErr == nil {
			fmt.Println("nothing simulated")
		}
		return runErr
	}

	meta := storage.RunMetadata{
		Scenario:   cfg.Scenario,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Steps:      result.Steps,
		Integrator: cfg.Integrator,
		Mode:       cfg.Mode,
		Theta:      cfg.Theta,
		Metrics:    result.Metrics,
	}
	meta.Describe(exp.InitialBodies())
	runID, err := st.Save(meta, recorder.Frames())
	if err != nil {
		return err
	}
	klog.V(1).InfoS("Saved run", "id", runID, "frames", len(recorder.Frames()))

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%.1f days simulated)\n", result.Steps, result.Time/86400)
	if n := len(result.Stats); n > 0 {
		var total time.Duration
		excluded := 0
		for _, s := range result.Stats {
			total += s.Duration
			excluded = max(excluded, s.Excluded)
		}
		fmt.Printf("mean step: %v\n", (total / time.Duration(n)).Round(time.Microsecond))
		if excluded > 0 {
			fmt.Printf("max excluded bodies: %d\n", excluded)
		}
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
	return runErr
}
