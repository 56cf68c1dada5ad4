package coag

import "github.com/sirupsen/logrus"

// DefaultMaxIterations caps the coalescence-efficiency Newton solve.
const DefaultMaxIterations = 100

type options struct {
	log         logrus.FieldLogger
	strictPhase bool
	maxIter     int
	dissipation float64
}

// Option configures a Coagulation constructor.
type Option func(*options)

func defaultOptions() options {
	return options{
		log:         logrus.StandardLogger(),
		maxIter:     DefaultMaxIterations,
		dissipation: DefaultDissipation,
	}
}

// WithLogger routes diagnostics to l instead of the standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithStrictPhase makes an unknown phase an ErrUnknownPhase error instead of
// a logged diagnostic with an empty kernel.
func WithStrictPhase() Option {
	return func(o *options) { o.strictPhase = true }
}

// WithMaxIterations sets the Newton iteration cap for the coalescence
// efficiency. Values below 1 keep the default.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIter = n
		}
	}
}

// WithDissipationRate sets the turbulent dissipation rate [m² s⁻³] used by
// the turbulent inertial and shear kernels.
func WithDissipationRate(eps float64) Option {
	return func(o *options) { o.dissipation = eps }
}
