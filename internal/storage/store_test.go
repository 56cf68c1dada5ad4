package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/coagsim/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			{100, 10, 1},
			{90, 12, 1.5},
		},
		Times:          []float64{0, 60},
		Metrics:        map[string]float64{"total_number": 103.5},
		InvariantDrift: 1e-15,
		StepsTaken:     1,
	}
}

func sampleMeta() RunMetadata {
	return RunMetadata{
		Phase:       "ice",
		Temperature: 220,
		Pressure:    25000,
		Density:     917,
		Radii:       []float64{1e-6, 2e-6, 4e-6},
		Integrator:  "semi-implicit",
		Dt:          60,
		Duration:    60,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(sampleMeta(), sampleResult())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "ice", meta.Phase)
	assert.Equal(t, 1, meta.Steps)
	assert.Equal(t, 103.5, meta.Metrics["total_number"])
	assert.Equal(t, []float64{1e-6, 2e-6, 4e-6}, meta.Radii)
	assert.False(t, meta.Timestamp.IsZero())

	states, times, err := st.LoadStates(runID)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 60}, times)
	require.Len(t, states, 2)
	assert.InDeltaSlice(t, []float64{90, 12, 1.5}, states[1], 1e-9)
}

func TestStoreSave_RecordsErrors(t *testing.T) {
	st := New(t.TempDir())
	result := sampleResult()
	result.Errors = []error{&dynamo.SimulationError{Step: 3, Time: 180, Wrapped: dynamo.ErrInvalidState}}

	runID, err := st.Save(sampleMeta(), result)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	require.Len(t, meta.Errors, 1)
	assert.Contains(t, meta.Errors[0], "step 3")
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	meta := sampleMeta()
	meta.Name = "first"
	first, err := st.Save(meta, sampleResult())
	require.NoError(t, err)
	meta.Name = "second"
	second, err := st.Save(meta, sampleResult())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), nil, 0644))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestStoreSave_FailureLeavesNoRun(t *testing.T) {
	tests := []struct {
		name   string
		result func() *dynamo.Result
	}{
		{"unencodable metrics", func() *dynamo.Result {
			r := sampleResult()
			r.Metrics = map[string]float64{"total_number": math.NaN()}
			return r
		}},
		{"times shorter than states", func() *dynamo.Result {
			r := sampleResult()
			r.Times = r.Times[:1]
			return r
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			st := New(dir)
			require.NoError(t, st.Init())

			_, err := st.Save(sampleMeta(), tt.result())
			require.Error(t, err)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "partial run directory left behind")

			runs, err := st.List()
			require.NoError(t, err)
			assert.Empty(t, runs)
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, _, err = st.LoadStates("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	assert.ErrorIs(t, st.ExportJSON("nope", filepath.Join(t.TempDir(), "x.json")), ErrRunNotFound)
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(sampleMeta(), sampleResult())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.WriteJSON(&buf, runID))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, runID, data.Run.ID)
	assert.Len(t, data.States, 2)
	assert.Equal(t, []float64{0, 60}, data.Times)

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, st.ExportJSON(runID, path))
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, buf.String(), string(onDisk))
}
