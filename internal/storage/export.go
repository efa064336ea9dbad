package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportFrame struct {
	Step int          `json:"step"`
	Time float64      `json:"time"`
	Pos  [][2]float64 `json:"pos"`
	Vel  [][2]float64 `json:"vel"`
}

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Frames []ExportFrame `json:"frames"`
}

func NewExportData(meta RunMetadata, frames []Frame) ExportData {
	data := ExportData{Run: meta, Frames: make([]ExportFrame, len(frames))}
	for i, f := range frames {
		ef := ExportFrame{
			Step: f.Step,
			Time: f.Time,
			Pos:  make([][2]float64, len(f.Pos)),
			Vel:  make([][2]float64, len(f.Vel)),
		}
		for j := range f.Pos {
			ef.Pos[j] = f.Pos[j]
		}
		for j := range f.Vel {
			ef.Vel[j] = f.Vel[j]
		}
		data.Frames[i] = ef
	}
	return data
}

func WriteJSON(w io.Writer, meta RunMetadata, frames []Frame) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, frames))
}

func ExportJSON(path string, meta RunMetadata, frames []Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, frames)
}

func ExportJSONStdout(meta RunMetadata, frames []Frame) error {
	return WriteJSON(os.Stdout, meta, frames)
}
