package coag

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/coagsim/internal/aerosol"
	"github.com/san-kum/coagsim/internal/dynamo"
	"github.com/san-kum/coagsim/internal/physics"
)

// Coagulation holds the kernel, beta and redistribution tensor for one
// (phase, bin population, ambient state) configuration.
type Coagulation struct {
	phase   aerosol.Phase
	ambient Ambient

	kernel   *mat.Dense
	kernel1D []float64
	beta     *mat.Dense
	f        [][][]float64
	receiver [][]int
}

// New builds the 2D kernel between two distinct bin populations A and B,
// plus beta over the (A, B) radius pairs and f over A's volume centers.
func New(phase aerosol.Phase, binsA aerosol.Bins, rhoA float64, binsB aerosol.Bins, rhoB float64, temperature, pressure float64, opts ...Option) (*Coagulation, error) {
	o := applyOptions(opts)
	env := Ambient{Temperature: temperature, Pressure: pressure, Dissipation: o.dissipation}

	if err := validatePopulation("A", binsA, rhoA); err != nil {
		return nil, err
	}
	if err := validatePopulation("B", binsB, rhoB); err != nil {
		return nil, err
	}
	if err := env.validate(); err != nil {
		return nil, err
	}

	c := &Coagulation{phase: phase, ambient: env}
	if !c.checkPhase(o) {
		if o.strictPhase {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPhase, phase)
		}
		return c, nil
	}

	propsA := properties(binsA.Centers, rhoA, env)
	propsB := properties(binsB.Centers, rhoB, env)
	c.kernel = buildKernel2D(Processes(phase), propsA, propsB, env)

	beta, err := buildBeta(c.kernel, binsA.Centers, binsB.Centers, o.maxIter)
	if err != nil {
		return nil, err
	}
	c.beta = beta
	c.f, c.receiver = buildF(binsA.VolCenters)

	o.log.WithFields(logrus.Fields{
		"phase":       phase.String(),
		"binsA":       binsA.Len(),
		"binsB":       binsB.Len(),
		"temperature": temperature,
		"pressure":    pressure,
	}).Debug("built coagulation kernel")

	return c, nil
}

// NewSelf builds the symmetric 2D kernel of a population with itself.
func NewSelf(phase aerosol.Phase, bins aerosol.Bins, rho float64, temperature, pressure float64, opts ...Option) (*Coagulation, error) {
	return New(phase, bins, rho, bins, rho, temperature, pressure, opts...)
}

// NewCross builds the 1D kernel between every bin of population A and a
// single external particle of radius radiusB [m]. Neither beta nor f is
// built for this form.
func NewCross(phase aerosol.Phase, radiiA []float64, rhoA float64, radiusB float64, rhoB float64, temperature, pressure float64, opts ...Option) (*Coagulation, error) {
	o := applyOptions(opts)
	env := Ambient{Temperature: temperature, Pressure: pressure, Dissipation: o.dissipation}

	if len(radiiA) == 0 {
		return nil, fmt.Errorf("%w: empty bin population", ErrInvalidArgument)
	}
	for i, r := range radiiA {
		if !(r > 0) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: radius %g in bin %d", ErrInvalidArgument, r, i)
		}
	}
	if !(radiusB > 0) || math.IsInf(radiusB, 0) {
		return nil, fmt.Errorf("%w: external radius %g", ErrInvalidArgument, radiusB)
	}
	if !(rhoA > 0) || !(rhoB > 0) {
		return nil, fmt.Errorf("%w: densities %g, %g kg/m3", ErrInvalidArgument, rhoA, rhoB)
	}
	if err := env.validate(); err != nil {
		return nil, err
	}

	c := &Coagulation{phase: phase, ambient: env}
	if !c.checkPhase(o) {
		if o.strictPhase {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPhase, phase)
		}
		return c, nil
	}

	propsA := properties(radiiA, rhoA, env)
	b := physics.Properties(radiusB, rhoB, env.Temperature, env.Pressure)
	procs := Processes(phase)

	c.kernel1D = make([]float64, len(propsA))
	for i, a := range propsA {
		c.kernel1D[i] = sumKernels(procs, a, b, env) * kernelUnit
	}

	o.log.WithFields(logrus.Fields{
		"phase":   phase.String(),
		"binsA":   len(radiiA),
		"radiusB": radiusB,
	}).Debug("built 1D coagulation kernel")

	return c, nil
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// checkPhase logs the unknown-phase diagnostic and reports whether the
// phase can be built.
func (c *Coagulation) checkPhase(o options) bool {
	if c.phase.Valid() {
		return true
	}
	o.log.WithFields(logrus.Fields{
		"phase": c.phase.String(),
	}).Warn("coagulation phase is not defined; options are liquid, ice or soot")
	return false
}

func validatePopulation(name string, b aerosol.Bins, rho float64) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%w: population %s: %w", ErrInvalidArgument, name, err)
	}
	if !(rho > 0) {
		return fmt.Errorf("%w: population %s density %g kg/m3", ErrInvalidArgument, name, rho)
	}
	return nil
}

func properties(radii []float64, rho float64, env Ambient) []physics.Particle {
	props := make([]physics.Particle, len(radii))
	for i, r := range radii {
		props[i] = physics.Properties(r, rho, env.Temperature, env.Pressure)
	}
	return props
}

func sumKernels(procs []Process, a, b physics.Particle, env Ambient) float64 {
	var k float64
	for _, p := range procs {
		k += p.Kernel()(a, b, env)
	}
	return k
}

// rowsPerWorker is the smallest block of kernel rows built by one goroutine.
const rowsPerWorker = 8

func buildKernel2D(procs []Process, propsA, propsB []physics.Particle, env Ambient) *mat.Dense {
	k := mat.NewDense(len(propsA), len(propsB), nil)
	dynamo.ParallelFor(len(propsA), rowsPerWorker, func(start, end int) {
		for i := start; i < end; i++ {
			for j, b := range propsB {
				k.Set(i, j, sumKernels(procs, propsA[i], b, env)*kernelUnit)
			}
		}
	})
	return k
}

// Phase returns the phase the kernel was built for.
func (c *Coagulation) Phase() aerosol.Phase { return c.phase }

// Ambient returns the ambient state the kernel was built in.
func (c *Coagulation) Ambient() Ambient { return c.ambient }

// Populated reports whether a kernel (2D or 1D) was built.
func (c *Coagulation) Populated() bool {
	return c.kernel != nil || c.kernel1D != nil
}

// Is1D reports whether this is the bins-versus-scalar form.
func (c *Coagulation) Is1D() bool { return c.kernel1D != nil }

// Dims returns the shape of the 2D kernel, (n, 1) for the 1D form and
// (0, 0) when nothing was built.
func (c *Coagulation) Dims() (int, int) {
	switch {
	case c.kernel != nil:
		return c.kernel.Dims()
	case c.kernel1D != nil:
		return len(c.kernel1D), 1
	}
	return 0, 0
}

// Kernel returns a copy of the 2D kernel [cm³ s⁻¹]; empty if not built.
func (c *Coagulation) Kernel() *mat.Dense {
	return copyDense(c.kernel)
}

// KernelAt returns K[i][j] [cm³ s⁻¹], or 0 when no 2D kernel was built. It
// panics on out-of-range indices like any matrix access.
func (c *Coagulation) KernelAt(i, j int) float64 {
	if c.kernel == nil {
		return 0
	}
	return c.kernel.At(i, j)
}

// Kernel1D returns a copy of the 1D kernel [cm³ s⁻¹]; nil if not built.
func (c *Coagulation) Kernel1D() []float64 {
	if c.kernel1D == nil {
		return nil
	}
	return append([]float64(nil), c.kernel1D...)
}

// Beta returns a copy of the efficiency-weighted kernel [cm³ s⁻¹].
func (c *Coagulation) Beta() *mat.Dense {
	return copyDense(c.beta)
}

// BetaAt returns beta[i][j] [cm³ s⁻¹], or 0 when beta was not built.
func (c *Coagulation) BetaAt(i, j int) float64 {
	if c.beta == nil {
		return 0
	}
	return c.beta.At(i, j)
}

// F returns a copy of the redistribution tensor exactly as stored, with the
// lower-bin complement left implicit.
func (c *Coagulation) F() [][][]float64 {
	if c.f == nil {
		return nil
	}
	out := make([][][]float64, len(c.f))
	for i := range c.f {
		out[i] = make([][]float64, len(c.f[i]))
		for j := range c.f[i] {
			out[i][j] = append([]float64(nil), c.f[i][j]...)
		}
	}
	return out
}

// Receiver returns the lower bracketing bin of the merged (i, j) volume, or
// N-1 when it exceeds the largest bin. It returns -1 when f was not built.
func (c *Coagulation) Receiver(i, j int) int {
	if c.receiver == nil {
		return -1
	}
	return c.receiver[i][j]
}

// Fraction returns the share of the merged (i, j) volume assigned to bin k,
// with the implicit complement resolved, or 0 when f was not built.
func (c *Coagulation) Fraction(i, j, k int) float64 {
	if c.f == nil {
		return 0
	}
	return resolveFraction(c.f, c.receiver, i, j, k)
}

func copyDense(m *mat.Dense) *mat.Dense {
	if m == nil || m.IsEmpty() {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(m)
}
