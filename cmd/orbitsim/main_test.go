package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/storage"
)

// parse builds a fresh command with the simulation flags and parses args.
func parse(t *testing.T, args ...string) (*cobra.Command, settings) {
	t.Helper()
	var s settings
	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd, &s)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd, s
}

func TestBuildConfig_Defaults(t *testing.T) {
	cmd, s := parse(t)
	cfg, err := buildConfig(cmd.Flags(), s)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
	assert.False(t, anySimFlag(cmd.Flags()))
}

func TestBuildConfig_PresetThenFlags(t *testing.T) {
	cmd, s := parse(t, "--preset", "binary/unequal", "--steps", "7")
	cfg, err := buildConfig(cmd.Flags(), s)
	require.NoError(t, err)

	want := config.GetPreset("binary", "unequal")
	assert.Equal(t, "binary", cfg.Scenario)
	assert.Equal(t, want.Init.MassB, cfg.Init.MassB)
	assert.Equal(t, want.Dt, cfg.Dt)
	assert.Equal(t, 7, cfg.Steps)
	assert.True(t, anySimFlag(cmd.Flags()))
}

func TestBuildConfig_PresetWithScenarioFlag(t *testing.T) {
	cmd, s := parse(t, "--scenario", "disk", "--preset", "small")
	cfg, err := buildConfig(cmd.Flags(), s)
	require.NoError(t, err)
	assert.Equal(t, "disk", cfg.Scenario)
	assert.Equal(t, 1000, cfg.Init.Asteroids)
}

func TestBuildConfig_FileOverridesPresetFlagsOverrideFile(t *testing.T) {
	file := config.DefaultConfig()
	file.Theta = 0.9
	file.Dt = 60
	file.Mode = string(dynamo.ModeBruteForce)
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, config.Save(path, file))

	cmd, s := parse(t, "--preset", "solar/planets", "--config", path, "--dt", "120")
	cfg, err := buildConfig(cmd.Flags(), s)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Theta)
	assert.Equal(t, string(dynamo.ModeBruteForce), cfg.Mode)
	assert.Equal(t, 120.0, cfg.Dt)
	// the file replaces the preset wholesale
	assert.Equal(t, config.DefaultAsteroids, cfg.Init.Asteroids)
}

func TestBuildConfig_Errors(t *testing.T) {
	cmd, s := parse(t, "--preset", "solar/nope")
	_, err := buildConfig(cmd.Flags(), s)
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)

	cmd, s = parse(t, "--theta", "-1")
	_, err = buildConfig(cmd.Flags(), s)
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)

	cmd, s = parse(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = buildConfig(cmd.Flags(), s)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunSimulation_StoresRun(t *testing.T) {
	dataDir = t.TempDir()
	cfg := config.GetPreset("binary", "equal")
	cfg.Steps = 20
	cfg.SampleEvery = 5

	require.NoError(t, runSimulation(t.Context(), cfg, "", true))

	runs, err := storage.New(dataDir).List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "binary", runs[0].Scenario)
	assert.Equal(t, 20, runs[0].Steps)
	assert.Len(t, runs[0].Bodies, 2)

	_, frames, err := loadRun(runs[0].ID)
	require.NoError(t, err)
	// step 0 plus every fifth step
	assert.Len(t, frames, 5)
	assert.NoError(t, checkBody(frames, 1))
	assert.Error(t, checkBody(frames, 2))
}

func TestSimFlags_ListRegistryNames(t *testing.T) {
	cmd, _ := parse(t)
	assert.Contains(t, cmd.Flags().Lookup("scenario").Usage, "binary, custom, disk, solar")
	assert.Contains(t, cmd.Flags().Lookup("integrator").Usage, "euler, semi-implicit, symplectic-euler")
}
