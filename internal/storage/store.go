package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/scenario"
)

// Store keeps each run in its own directory under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type BodyMeta struct {
	Name   string  `json:"name"`
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	Mode       string             `json:"mode"`
	Theta      float64            `json:"theta"`
	Metrics    map[string]float64 `json:"metrics"`
	Bodies     []BodyMeta         `json:"bodies"`
}

// Describe fills Bodies from the initial body set.
func (m *RunMetadata) Describe(bodies []dynamo.Body) {
	m.Bodies = make([]BodyMeta, len(bodies))
	for i, b := range bodies {
		m.Bodies[i] = BodyMeta{Name: b.Name, Mass: b.Mass, Radius: b.Radius, Color: scenario.FormatColor(b.Color)}
	}
}

var csvHeader = []string{"time", "step", "body", "x", "y", "vx", "vy"}

// Save writes metadata.json and states.csv into a new run directory and
// returns its id.
func (s *Store) Save(meta RunMetadata, frames []Frame) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	base := fmt.Sprintf("%s_%d", meta.Scenario, meta.Timestamp.Unix())
	runID := base
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, runID)); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
	runDir := filepath.Join(s.baseDir, runID)
	meta.ID = runID

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, frames); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteCSV writes one row per body per frame.
func WriteCSV(out io.Writer, frames []Frame) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, f := range frames {
		t := strconv.FormatFloat(f.Time, 'g', -1, 64)
		step := strconv.Itoa(f.Step)
		for i := range f.Pos {
			row := []string{
				t, step, strconv.Itoa(i),
				strconv.FormatFloat(f.Pos[i].X(), 'g', -1, 64),
				strconv.FormatFloat(f.Pos[i].Y(), 'g', -1, 64),
				strconv.FormatFloat(f.Vel[i].X(), 'g', -1, 64),
				strconv.FormatFloat(f.Vel[i].Y(), 'g', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads the frames of a run back in step order.
func (s *Store) LoadStates(runID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

func ReadCSV(in io.Reader) ([]Frame, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Frame{}, nil
	}

	var frames []Frame
	for line, record := range records[1:] {
		var v [7]float64
		for j, field := range record {
			if v[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("states.csv line %d: %w", line+2, err)
			}
		}
		step := int(v[1])
		if len(frames) == 0 || frames[len(frames)-1].Step != step {
			frames = append(frames, Frame{Step: step, Time: v[0]})
		}
		f := &frames[len(frames)-1]
		f.Pos = append(f.Pos, mgl64.Vec2{v[3], v[4]})
		f.Vel = append(f.Vel, mgl64.Vec2{v[5], v[6]})
	}
	return frames, nil
}
