package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/scenario"
)

func testBodies() []dynamo.Body {
	return []dynamo.Body{
		{Name: "Sun", Mass: 1.989e30, Radius: 20, Color: scenario.Yellow},
		{Name: "Earth", Pos: mgl64.Vec2{1.5e11, 0}, Vel: mgl64.Vec2{0, 29749.1}, Mass: 5.972e24, Radius: 5, Color: scenario.Green},
	}
}

func recordSome(every, steps int) *Recorder {
	rec := NewRecorder(every)
	bodies := testBodies()
	for i := 0; i <= steps; i++ {
		rec.OnStep(bodies, float64(i)*3600)
		bodies[1].Pos = bodies[1].Pos.Add(bodies[1].Vel.Mul(3600))
	}
	return rec
}

func TestRecorder(t *testing.T) {
	rec := recordSome(3, 10)
	frames := rec.Frames()
	// steps 0, 3, 6, 9
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}
	if frames[2].Step != 6 || frames[2].Time != 6*3600 {
		t.Errorf("frame 2 = step %d t %f", frames[2].Step, frames[2].Time)
	}
	track := Track(frames, 1)
	if len(track) != 4 || track[0] != (mgl64.Vec2{1.5e11, 0}) {
		t.Errorf("track = %v", track)
	}

	rec.Reset()
	if len(rec.Frames()) != 0 {
		t.Error("expected no frames after reset")
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Scenario:   "solar",
		Seed:       42,
		Dt:         3600,
		Steps:      10,
		Integrator: "symplectic-euler",
		Mode:       "barnes-hut",
		Theta:      0.5,
		Metrics:    map[string]float64{"energy_drift": 1.5e-6},
	}
	meta.Describe(testBodies())
	frames := recordSome(1, 10).Frames()

	runID, err := st.Save(meta, frames)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Scenario != "solar" || loaded.Seed != 42 || loaded.ID != runID {
		t.Errorf("unexpected metadata %+v", loaded)
	}
	if loaded.Metrics["energy_drift"] != 1.5e-6 {
		t.Errorf("expected drift 1.5e-6, got %g", loaded.Metrics["energy_drift"])
	}
	if len(loaded.Bodies) != 2 || loaded.Bodies[1].Color != "#00ff00" {
		t.Errorf("bodies = %+v", loaded.Bodies)
	}

	states, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != len(frames) {
		t.Fatalf("expected %d frames, got %d", len(frames), len(states))
	}
	for i := range frames {
		if states[i].Step != frames[i].Step || states[i].Time != frames[i].Time {
			t.Errorf("frame %d header mismatch", i)
		}
		for j := range frames[i].Pos {
			if states[i].Pos[j] != frames[i].Pos[j] || states[i].Vel[j] != frames[i].Vel[j] {
				t.Errorf("frame %d body %d mismatch", i, j)
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	ts := time.Unix(1700000000, 0)
	for i := 0; i < 2; i++ {
		if _, err := st.Save(RunMetadata{Scenario: "binary", Timestamp: ts}, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID == runs[1].ID {
		t.Errorf("runs saved in the same second share id %s", runs[0].ID)
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunMetadata{Scenario: "solar"}, recordSome(1, 1).Frames())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}

	data, err := os.ReadFile(filepath.Join(runDir, "states.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// header + 2 frames * 2 bodies
	if len(lines) != 5 {
		t.Errorf("expected 5 lines, got %d", len(lines))
	}
	if lines[0] != "time,step,body,x,y,vx,vy" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestReadCSV_Malformed(t *testing.T) {
	in := "time,step,body,x,y,vx,vy\n0,0,0,1,2,3,oops\n"
	if _, err := ReadCSV(strings.NewReader(in)); err == nil {
		t.Error("expected parse error")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{Scenario: "solar", Steps: 2}
	if err := WriteJSON(&buf, meta, recordSome(1, 2).Frames()); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Frames) != 3 || len(got.Frames[0].Pos) != 2 {
		t.Fatalf("unexpected export %+v", got)
	}
	if got.Frames[0].Pos[1] != [2]float64{1.5e11, 0} {
		t.Errorf("earth start = %v", got.Frames[0].Pos[1])
	}
}
