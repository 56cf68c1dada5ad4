package metrics

import (
	"math"

	"github.com/san-kum/coagsim/internal/dynamo"
)

// VolumeDrift tracks the largest relative departure of the system's
// conserved quantity from its first observed value.
type VolumeDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
	dyn      dynamo.System
}

func NewVolumeDrift(dyn dynamo.System) *VolumeDrift {
	return &VolumeDrift{
		name: "volume_drift",
		dyn:  dyn,
	}
}

func (v *VolumeDrift) Name() string { return v.name }

func (v *VolumeDrift) Observe(x dynamo.State, t float64) {
	c, ok := v.dyn.(dynamo.Conserved)
	if !ok {
		return
	}

	vol := c.Invariant(x)
	if v.samples == 0 {
		v.initial = vol
	}
	v.samples++

	if v.initial != 0 {
		drift := math.Abs(vol-v.initial) / math.Abs(v.initial)
		v.maxDrift = math.Max(v.maxDrift, drift)
	}
}

func (v *VolumeDrift) Value() float64 {
	return v.maxDrift
}

func (v *VolumeDrift) Reset() {
	v.initial = 0
	v.maxDrift = 0
	v.samples = 0
}
