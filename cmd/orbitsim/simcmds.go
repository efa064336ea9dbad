package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/gravity"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/quadtree"
	"github.com/san-kum/orbitsim/internal/scenario"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/viz"
	"github.com/spf13/cobra"
)

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation in the terminal viewer",
		Long:  "Without flags a preset picker opens; any simulation flag starts that configuration directly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			if !anySimFlag(cmd.Flags()) {
				return viz.RunMenu(registry)
			}
			cfg, err := buildConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			m, err := viz.Launch(registry, cfg, cfg.Scenario)
			if err != nil {
				return err
			}
			return viz.Run(m)
		},
	}
	addSimFlags(cmd, &opts)
	return cmd
}

// setupBodies generates the configured initial bodies and engine config.
func setupBodies(cfg *config.Config) ([]dynamo.Body, dynamo.Config, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), false); err != nil {
		return nil, dynamo.Config{}, err
	}
	return exp.InitialBodies(), exp.GetSimulator().Config(), nil
}

func newCompareCmd() *cobra.Command {
	var (
		thetas      []float64
		integrators []string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "compare barnes-hut accuracy per theta and energy drift per integrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			bodies, simCfg, err := setupBodies(cfg)
			if err != nil {
				return err
			}
			if err := compareThetas(bodies, simCfg, thetas); err != nil {
				return err
			}
			if len(integrators) == 0 {
				return nil
			}
			fmt.Println()
			return compareIntegrators(cmd.Context(), cfg, integrators)
		},
	}
	addSimFlags(cmd, &opts)
	cmd.Flags().Float64SliceVar(&thetas, "thetas", []float64{0.2, 0.5, 0.8, 1.2}, "opening angles to compare")
	cmd.Flags().StringSliceVar(&integrators, "integrators", []string{"symplectic-euler", "euler"}, "integrators to compare, empty to skip")
	return cmd
}

func compareThetas(bodies []dynamo.Body, simCfg dynamo.Config, thetas []float64) error {
	direct := gravity.NewDirectField(bodies, simCfg.G)
	start := time.Now()
	for i := range bodies {
		if _, err := direct.ForceOn(i); err != nil {
			return err
		}
	}
	directTime := time.Since(start)

	fmt.Printf("force accuracy against direct summation (%d bodies, direct %v)\n\n", len(bodies), directTime.Round(time.Microsecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THETA\tMAX\tMEAN\tRMS\tWORST\tTIME\tSPEEDUP")

	bounds := sim.Bounds(bodies, simCfg)
	for _, theta := range thetas {
		start := time.Now()
		tree := quadtree.Build(bodies, bounds, quadtree.WithMaxDepth(simCfg.MaxDepth))
		field := gravity.NewTreeField(tree, theta, simCfg.G)
		for i := range bodies {
			if _, err := field.ForceOn(i); err != nil {
				return err
			}
		}
		treeTime := time.Since(start)

		acc, err := gravity.Compare(field, direct, len(bodies))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%.2f\t%.2e\t%.2e\t%.2e\t%d\t%v\t%.1fx\n",
			theta, acc.Max, acc.Mean, acc.RMS, acc.Worst, treeTime.Round(time.Microsecond),
			float64(directTime)/float64(max(treeTime, 1)))
	}
	return w.Flush()
}

func compareIntegrators(ctx context.Context, cfg *config.Config, names []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Printf("integrators over %d steps of %gs\n\n", cfg.Steps, cfg.Dt)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tENERGY_DRIFT\tMOMENTUM_DRIFT\tTIME")

	for _, name := range names {
		c := cfg.Clone()
		c.Integrator = name
		exp := experiment.New(c)
		drift := metrics.NewEnergyDrift(dynamo.G)
		momentum := metrics.NewMomentumDrift()
		if err := exp.Setup(experiment.NewRegistry(), false, sim.WithMetric(drift), sim.WithMetric(momentum)); err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\n", name, err)
			continue
		}
		start := time.Now()
		if _, err := exp.Run(ctx); err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.3e\t%.3e\t%v\n", name, drift.Value(), momentum.Value(), time.Since(start).Round(time.Millisecond))
	}
	return w.Flush()
}

func newBenchCmd() *cobra.Command {
	var (
		sizes    []int
		steps    int
		workers  int
		theta    float64
		maxBrute int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "time steps of a random disk for growing body counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Printf("benchmarking %d steps per run, theta %.2f, workers %d\n\n", steps, theta, workers)
			fmt.Fprintln(w, "BODIES\tMODE\tMS/STEP\tBUILD\tFORCE\tNODES")

			for _, n := range sizes {
				bodies := scenario.Disk(rand.New(rand.NewSource(1)), n, scenario.SunMass, 0.5, 7)
				for _, mode := range []dynamo.Mode{dynamo.ModeBarnesHut, dynamo.ModeBruteForce} {
					if mode == dynamo.ModeBruteForce && n > maxBrute {
						continue
					}
					cfg := dynamo.DefaultConfig()
					cfg.Mode, cfg.Theta, cfg.Workers = mode, theta, workers

					s, err := sim.New(bodies, cfg)
					if err != nil {
						return err
					}
					res, err := s.Run(cmd.Context(), 3600, steps)
					if err != nil {
						return err
					}
					var total, build, force time.Duration
					nodes := 0
					for _, st := range res.Stats {
						total += st.Duration
						build += st.BuildTime
						force += st.ForceTime
						nodes = st.Nodes
					}
					k := time.Duration(max(1, len(res.Stats)))
					fmt.Fprintf(w, "%d\t%s\t%.3f\t%v\t%v\t%d\n", len(bodies), mode,
						float64((total/k).Microseconds())/1000, (build / k).Round(time.Microsecond), (force / k).Round(time.Microsecond), nodes)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntSliceVar(&sizes, "sizes", []int{100, 1000, 5000}, "body counts")
	cmd.Flags().IntVar(&steps, "steps", 5, "steps per run")
	cmd.Flags().IntVar(&workers, "workers", 0, "force workers, 0 for one per CPU")
	cmd.Flags().Float64Var(&theta, "theta", 0.5, "barnes-hut opening angle")
	cmd.Flags().IntVar(&maxBrute, "max-brute", 5000, "largest body count to run brute force on")
	return cmd
}

func newDivergenceCmd() *cobra.Command {
	var (
		body         int
		perturbation float64
	)
	cmd := &cobra.Command{
		Use:   "divergence",
		Short: "estimate how fast a nudged body's run drifts from the original",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			exp := experiment.New(cfg)
			if err := exp.Setup(experiment.NewRegistry(), false); err != nil {
				return err
			}
			bodies, s := exp.InitialBodies(), exp.GetSimulator()
			lambda, err := analysis.Divergence(bodies, s.Config(), cfg.Dt, cfg.Steps, body, perturbation, sim.WithIntegrator(s.Integrator()))
			if err != nil {
				return err
			}
			name := bodies[body].Name
			if strings.TrimSpace(name) == "" {
				name = fmt.Sprintf("#%d", body)
			}
			fmt.Printf("nudged body: %s by %gm\n", name, perturbation)
			fmt.Printf("finite-time lyapunov exponent: %.4e 1/s\n", lambda)
			if lambda > 0 {
				fmt.Printf("e-folding time: %.2f days\n", 1/lambda/86400)
			}
			return nil
		},
	}
	addSimFlags(cmd, &opts)
	cmd.Flags().IntVar(&body, "body", 1, "index of the body to nudge")
	cmd.Flags().Float64Var(&perturbation, "perturbation", 1e3, "initial nudge in meters")
	return cmd
}

func newEnsembleCmd() *cobra.Command {
	var runs, parallel int
	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run a config under several seeds and summarise its metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			if runs < 1 {
				return fmt.Errorf("%w: runs must be >= 1", dynamo.ErrInvalidConfig)
			}
			start := time.Now()
			results, err := experiment.NewEnsemble(experiment.NewRegistry(), cfg, runs, cfg.Seed, parallel).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%d runs of %s in %v\n\n", runs, cfg.Scenario, time.Since(start).Round(time.Millisecond))

			var names []string
			for name := range results[0].Metrics {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SEED\t"+strings.ToUpper(strings.Join(names, "\t")))
			mean := make([]float64, len(names))
			for i, r := range results {
				row := []string{fmt.Sprintf("%d", cfg.Seed+int64(i))}
				for j, name := range names {
					row = append(row, fmt.Sprintf("%.4g", r.Metrics[name]))
					mean[j] += r.Metrics[name] / float64(len(results))
				}
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			row := []string{"mean"}
			for _, v := range mean {
				row = append(row, fmt.Sprintf("%.4g", v))
			}
			fmt.Fprintln(w, strings.Join(row, "\t"))
			return w.Flush()
		},
	}
	addSimFlags(cmd, &opts)
	cmd.Flags().IntVar(&runs, "runs", 4, "number of seeds")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "runs at once, 0 for no limit")
	return cmd
}
