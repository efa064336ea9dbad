package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

// settings are the flags shared by every command that builds a simulation.
// Each one mirrors a config file field.
type settings struct {
	configFile  string
	preset      string
	scenario    string
	integrator  string
	mode        string
	theta       float64
	dt          float64
	steps       int
	seed        int64
	workers     int
	maxDepth    int
	sampleEvery int
	bounds      string
	asteroids   int
}

var (
	dataDir string
	opts    settings
)

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	rootCmd := &cobra.Command{
		Use:          "orbitsim",
		Short:        "barnes-hut gravity simulator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbitsim", "data directory")
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newCompareCmd(),
		newBenchCmd(),
		newDivergenceCmd(),
		newEnsembleCmd(),
		newListCmd(),
		newPlotCmd(),
		newAnalyzeCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newExportSVGCmd(),
		newPresetsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		klog.Flush()
		os.Exit(1)
	}
}

// addSimFlags registers the config-mirroring flags on cmd.
func addSimFlags(cmd *cobra.Command, s *settings) {
	d := config.DefaultConfig()
	r := experiment.NewRegistry()
	f := cmd.Flags()
	f.StringVar(&s.configFile, "config", "", "config file path (yaml)")
	f.StringVar(&s.preset, "preset", "", "preset as scenario/name, or a name for --scenario")
	f.StringVar(&s.scenario, "scenario", d.Scenario, "scenario: "+strings.Join(r.ListScenarios(), ", "))
	f.StringVar(&s.integrator, "integrator", d.Integrator, "integrator: "+strings.Join(r.ListIntegrators(), ", "))
	f.StringVar(&s.mode, "mode", d.Mode, "force evaluation: barnes-hut or brute-force")
	f.Float64Var(&s.theta, "theta", d.Theta, "barnes-hut opening angle")
	f.Float64Var(&s.dt, "dt", d.Dt, "timestep in seconds")
	f.IntVar(&s.steps, "steps", d.Steps, "number of steps")
	f.Int64Var(&s.seed, "seed", d.Seed, "random seed")
	f.IntVar(&s.workers, "workers", d.Workers, "force workers, 0 for one per CPU")
	f.IntVar(&s.maxDepth, "max-depth", d.MaxDepth, "quadtree depth at which coincident bodies merge")
	f.IntVar(&s.sampleEvery, "sample-every", d.SampleEvery, "record every n-th step")
	f.StringVar(&s.bounds, "bounds", d.Bounds.Policy, "root square policy: auto or fixed")
	f.IntVar(&s.asteroids, "asteroids", d.Init.Asteroids, "generated asteroid count")
}

// buildConfig layers the sources: defaults, then the preset, then the config
// file, then every flag the user set explicitly.
func buildConfig(flags *pflag.FlagSet, s settings) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if s.preset != "" {
		scenario, name := s.scenario, s.preset
		if before, after, ok := strings.Cut(s.preset, "/"); ok {
			scenario, name = before, after
		}
		p := config.GetPreset(scenario, name)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %s/%s (available: %v)", dynamo.ErrInvalidConfig, scenario, name, config.ListPresets(scenario))
		}
		cfg = p
	}

	if s.configFile != "" {
		fileCfg, err := config.Load(s.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	if flags.Changed("scenario") {
		cfg.Scenario = s.scenario
	}
	if flags.Changed("integrator") {
		cfg.Integrator = s.integrator
	}
	if flags.Changed("mode") {
		cfg.Mode = s.mode
	}
	if flags.Changed("theta") {
		cfg.Theta = s.theta
	}
	if flags.Changed("dt") {
		cfg.Dt = s.dt
	}
	if flags.Changed("steps") {
		cfg.Steps = s.steps
	}
	if flags.Changed("seed") {
		cfg.Seed = s.seed
	}
	if flags.Changed("workers") {
		cfg.Workers = s.workers
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = s.maxDepth
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = s.sampleEvery
	}
	if flags.Changed("bounds") {
		cfg.Bounds.Policy = s.bounds
	}
	if flags.Changed("asteroids") {
		cfg.Init.Asteroids = s.asteroids
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	klog.V(1).InfoS("Resolved config", "scenario", cfg.Scenario, "mode", cfg.Mode, "theta", cfg.Theta, "dt", cfg.Dt, "steps", cfg.Steps)
	return cfg, nil
}

var simFlagNames = []string{
	"config", "preset", "scenario", "integrator", "mode", "theta", "dt", "steps",
	"seed", "workers", "max-depth", "sample-every", "bounds", "asteroids",
}

// anySimFlag reports whether the user set any simulation flag. Global flags
// such as --data and the klog flags do not count.
func anySimFlag(flags *pflag.FlagSet) bool {
	for _, name := range simFlagNames {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}
