package aerosol

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhase(t *testing.T) {
	tests := []struct {
		tag  string
		want Phase
	}{
		{"liq", Liquid},
		{"liquid", Liquid},
		{"sulfate", Liquid},
		{"ice", Ice},
		{"ICE", Ice},
		{"soot", Soot},
		{"bc", Soot},
		{" soot ", Soot},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParsePhase(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestParsePhase_Unknown(t *testing.T) {
	p, err := ParsePhase("vapor")
	assert.Equal(t, Unknown, p)
	assert.False(t, p.Valid())
	assert.True(t, errors.Is(err, ErrUnknownPhase))
	assert.Contains(t, err.Error(), "vapor")
}

func TestPhaseText(t *testing.T) {
	var p Phase
	require.NoError(t, p.UnmarshalText([]byte("bc")))
	assert.Equal(t, Soot, p)

	b, err := Ice.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "ice", string(b))

	require.NoError(t, p.UnmarshalText([]byte("plasma")))
	assert.Equal(t, Unknown, p)
	assert.Equal(t, "Phase(42)", Phase(42).String())
}

func TestNewBins(t *testing.T) {
	b, err := NewBins(1e-9, 1e-5, 40)
	require.NoError(t, err)
	require.NoError(t, b.Validate())
	assert.Equal(t, 40, b.Len())
	assert.Len(t, b.Edges, 41)
	assert.InDelta(t, 1e-9, b.Edges[0], 1e-21)
	assert.InDelta(t, 1e-5, b.Edges[40], 1e-17)

	for i := 1; i < b.Len(); i++ {
		assert.Greater(t, b.Centers[i], b.Centers[i-1])
		assert.Greater(t, b.VolCenters[i], b.VolCenters[i-1])
	}
	for i, r := range b.Centers {
		assert.InEpsilon(t, 4.0/3.0*math.Pi*r*r*r, b.VolCenters[i], 1e-12)
		assert.True(t, b.Edges[i] < r && r < b.Edges[i+1])
	}
}

func TestNewBins_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name       string
		rMin, rMax float64
		n          int
	}{
		{"no bins", 1e-9, 1e-6, 0},
		{"negative min", -1, 1e-6, 10},
		{"inverted", 1e-6, 1e-9, 10},
	} {
		_, err := NewBins(tc.rMin, tc.rMax, tc.n)
		assert.ErrorIs(t, err, ErrInvalidArgument, tc.name)
	}
}

func TestBinsValidate(t *testing.T) {
	tests := []struct {
		name string
		bins Bins
	}{
		{"empty", Bins{}},
		{"mismatch", Bins{Centers: []float64{1, 2}, VolCenters: []float64{1}}},
		{"decreasing", Bins{Centers: []float64{1, 2}, VolCenters: []float64{2, 1}}},
		{"zero", Bins{Centers: []float64{0}, VolCenters: []float64{1}}},
		{"infinite radius", Bins{Centers: []float64{1e-6, math.Inf(1)}, VolCenters: []float64{4e-18, 8e-18}}},
		{"infinite volume", Bins{Centers: []float64{1e-6, 2e-6}, VolCenters: []float64{4e-18, math.Inf(1)}}},
		{"bad edges", Bins{Centers: []float64{1}, VolCenters: []float64{1}, Edges: []float64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.bins.Validate(), ErrInvalidArgument)
		})
	}
}

func TestBinsFromCenters(t *testing.T) {
	b, err := BinsFromCenters([]float64{1e-7, 2e-7})
	require.NoError(t, err)
	assert.InEpsilon(t, 8.0, b.VolCenters[1]/b.VolCenters[0], 1e-12)

	_, err = BinsFromCenters(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLognormalMoments(t *testing.T) {
	b, err := NewBins(1e-9, 1e-5, 60)
	require.NoError(t, err)

	d, err := NewLognormal(b, 1e4, 5e-8, 1.6)
	require.NoError(t, err)

	assert.InEpsilon(t, 1e4, d.Number(), 0.02)
	assert.InEpsilon(t, 5e-8*math.Exp(0.5*math.Pow(math.Log(1.6), 2)), d.MeanRadius(), 0.02)
	assert.Greater(t, d.EffectiveRadius(), d.MeanRadius())
	assert.Greater(t, d.Volume(), 0.0)

	peak := 0
	for i, n := range d.DNdLogR() {
		if n > d.DNdLogR()[peak] {
			peak = i
		}
	}
	assert.True(t, b.Edges[peak] <= 5e-8*1.2 && b.Edges[peak+1] >= 5e-8/1.2, "peak bin %d", peak)
}

func TestDistributionClone(t *testing.T) {
	b, _ := NewBins(1e-8, 1e-6, 4)
	d, err := NewDistribution(b, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	c := d.Clone()
	c.PDF[0] = 100
	assert.Equal(t, 1.0, d.PDF[0])

	_, err = NewDistribution(b, []float64{1, 2})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewDistribution(b, []float64{1, -2, 3, 4})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
