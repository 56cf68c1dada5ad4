package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/coagsim/internal/dynamo"
)

// ErrRunNotFound is returned when no run directory exists for an ID.
var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir holding metadata.json and
// states.csv.
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
	ID             string             `json:"id"`
	Name           string             `json:"name,omitempty"`
	Phase          string             `json:"phase"`
	Timestamp      time.Time          `json:"timestamp"`
	Temperature    float64            `json:"temperature"`
	Pressure       float64            `json:"pressure"`
	Density        float64            `json:"density"`
	Radii          []float64          `json:"radii"`
	Integrator     string             `json:"integrator"`
	Dt             float64            `json:"dt"`
	Duration       float64            `json:"duration"`
	Steps          int                `json:"steps"`
	InvariantDrift float64            `json:"invariant_drift"`
	Metrics        map[string]float64 `json:"metrics"`
	Errors         []string           `json:"errors,omitempty"`
}

// Save writes meta and the state history of result. meta.ID, Timestamp,
// Steps, InvariantDrift, Metrics and Errors are filled from the run.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	prefix := meta.Name
	if prefix == "" {
		prefix = meta.Phase
	}
	meta.ID = fmt.Sprintf("%s_%d", prefix, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.InvariantDrift = result.InvariantDrift
	meta.Metrics = result.Metrics
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeStates(path string, result *dynamo.Result) error {
	if len(result.Times) != len(result.States) {
		return fmt.Errorf("storage: %d states but %d times", len(result.States), len(result.Times))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if len(result.States) > 0 {
		header := []string{"time"}
		for i := range result.States[0] {
			header = append(header, fmt.Sprintf("bin%d", i))
		}
		w.Write(header)

		for i := range result.States {
			row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
			for _, val := range result.States[i] {
				row = append(row, strconv.FormatFloat(val, 'e', 9, 64))
			}
			w.Write(row)
		}
	}
	// csv.Writer buffers; write errors surface on Flush.
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first. Directories without valid
// metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, notFound(runID, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates returns the per-bin concentrations and their times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, notFound(runID, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: run %s line %d: %w", runID, i+1, err)
		}

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: run %s line %d: %w", runID, i+1, err)
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}

func notFound(runID string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return err
}

// ExportData is the single-document JSON form of a stored run.
type ExportData struct {
	Run    RunMetadata `json:"run"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// WriteJSON writes run runID as one indented JSON document.
func (s *Store) WriteJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Times: times, States: states})
}

// ExportJSON writes run runID to path, or to stdout when path is empty or
// "-".
func (s *Store) ExportJSON(runID, path string) error {
	if path == "" || path == "-" {
		return s.WriteJSON(os.Stdout, runID)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.WriteJSON(file, runID); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
