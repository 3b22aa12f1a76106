package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	ID        string             `json:"id"`
	Samples   int                `json:"samples"`
	Times     []float64          `json:"times"`
	States    [][]float64        `json:"states"`
	Pressures []float64          `json:"pressures_kpa"`
	Metrics   map[string]float64 `json:"metrics"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, times []float64, states [][]float64, pressures []float64) error {
	data := ExportData{
		ID:        meta.ID,
		Samples:   len(times),
		Times:     times,
		States:    states,
		Pressures: pressures,
		Metrics:   meta.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, meta *RunMetadata, times []float64, states [][]float64, pressures []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, times, states, pressures)
}
