// Package storage is the persistence collaborator for simulation
// reports: one directory per run holding the report document and the
// history trace as CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/nexpath/thermsim/internal/thermal"
)

// ErrInvalidReport marks Save rejections before any I/O happens, as
// opposed to filesystem failures which are returned wrapped.
var ErrInvalidReport = errors.New("storage: invalid report")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunSummary is the listing view over a stored run.
type RunSummary struct {
	ID             string
	SimulationTime float64
	NumSteps       int
	FinalMax       float64
	Issues         int
}

// Save writes report.json and history.csv under a new run directory and
// returns the run ID. A nil report or empty name is a validation error
// (ErrInvalidReport); anything else is an I/O failure.
func (s *Store) Save(name string, report *thermal.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("%w: nil report", ErrInvalidReport)
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty run name", ErrInvalidReport)
	}

	runID := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}

	reportPath := filepath.Join(runDir, "report.json")
	f, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	if err := writeHistoryCSV(filepath.Join(runDir, "history.csv"), report.History); err != nil {
		return "", err
	}
	return runID, nil
}

func writeHistoryCSV(path string, samples []thermal.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating history: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "max_temp", "min_temp", "avg_temp"}); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	for _, sm := range samples {
		row := []string{
			strconv.FormatFloat(sm.Time, 'f', 6, 64),
			strconv.FormatFloat(sm.MaxTemp, 'f', 6, 64),
			strconv.FormatFloat(sm.MinTemp, 'f', 6, 64),
			strconv.FormatFloat(sm.AvgTemp, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing history: %w", err)
		}
	}
	return nil
}

// List returns summaries of every stored run, oldest run ID first.
// Directories without a readable report are skipped.
func (s *Store) List() ([]RunSummary, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunSummary{}, nil
		}
		return nil, err
	}

	runs := make([]RunSummary, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		report, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, RunSummary{
			ID:             entry.Name(),
			SimulationTime: report.SimulationTime,
			NumSteps:       report.NumSteps,
			FinalMax:       report.TemperatureStats.FinalMax,
			Issues:         len(report.PotentialIssues),
		})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

func (s *Store) Load(runID string) (*thermal.Report, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "report.json"))
	if err != nil {
		return nil, err
	}
	var report thermal.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
