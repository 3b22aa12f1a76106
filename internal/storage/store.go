package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/pistonsim/internal/config"
	"github.com/san-kum/pistonsim/internal/dynamo"
)

var columns = []string{"time", "piston_pos", "piston_vel", "proj_pos", "proj_vel", "pressure_kpa"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Tolerance  float64            `json:"tolerance"`
	Integrator string             `json:"integrator"`
	Gun        config.GunConfig   `json:"gun"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json and trajectory.csv.
// The pressure series is stored alongside the state columns in kPa.
func (s *Store) Save(cfg *config.Config, result *dynamo.Result, pressuresKPa []float64) (string, error) {
	runID := fmt.Sprintf("launch_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  time.Now(),
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Tolerance:  cfg.Tolerance,
		Integrator: cfg.Integrator,
		Gun:        cfg.Gun,
		Metrics:    result.Metrics,
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

	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(columns); err != nil {
		return "", err
	}

	for i := range result.States {
		row := make([]string, 0, len(columns))
		row = append(row, strconv.FormatFloat(result.Times[i], 'f', 9, 64))
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 9, 64))
		}
		pressure := 0.0
		if i < len(pressuresKPa) {
			pressure = pressuresKPa[i]
		}
		row = append(row, strconv.FormatFloat(pressure, 'f', 6, 64))

		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

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

// LoadTrajectory reads back times, state rows, and the pressure column.
func (s *Store) LoadTrajectory(runID string) ([]float64, [][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}

	if len(records) < 2 {
		return []float64{}, [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)
	pressures := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < len(columns) {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make([]float64, 0, 4)
		ok := true
		for _, field := range record[1:5] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			state = append(state, val)
		}
		if !ok {
			continue
		}

		pressure, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			continue
		}

		times = append(times, t)
		states = append(states, state)
		pressures = append(pressures, pressure)
	}

	return times, states, pressures, nil
}
