package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

func TestEnsemble_Seeds(t *testing.T) {
	cfg := config.GetPreset("solar", "default")
	cfg.Init.Asteroids = 20
	cfg.Steps = 5

	results, err := NewEnsemble(NewRegistry(), cfg, 3, 10, 2).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r == nil || r.Steps != 5 {
			t.Fatalf("result %d = %+v", i, r)
		}
	}
	if results[0].Bodies[10].Pos == results[1].Bodies[10].Pos {
		t.Error("expected different asteroid positions for different seeds")
	}
	if cfg.Seed != config.DefaultSeed {
		t.Error("ensemble modified the shared config")
	}
}

func TestEnsemble_Error(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scenario = "galaxy"

	_, err := NewEnsemble(NewRegistry(), cfg, 2, 1, 0).Run(context.Background())
	if err == nil {
		t.Fatal("expected error for unknown scenario")
	}

	cfg = config.GetPreset("binary", "equal")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewEnsemble(NewRegistry(), cfg, 2, 1, 0).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	var stepErr *dynamo.StepError
	if errors.As(err, &stepErr) {
		t.Error("cancellation should not be reported as a step error")
	}
}
