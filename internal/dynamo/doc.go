// Package dynamo provides the time-stepping primitives used to evolve binned
// aerosol populations.
//
// The package defines the fundamental interfaces and types shared by the
// integrators and the simulator:
//
//   - [State]: per-bin number concentrations [# cm⁻³]
//   - [System]: interface for rate equations (dX/dt = f(X, t))
//   - [Conserved]: systems exposing a conserved quantity (total volume)
//   - [SemiImplicitSystem]: systems that can take their own unconditionally
//     positive step
//   - [Integrator]: numerical integrator interface
//
// # Example
//
//	sys, _ := coag.NewSystem(k, bins)
//	integ := integrators.NewSemiImplicit()
//	s := sim.New(sys, integ)
//	result, _ := s.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// States are plain slices and are NOT safe for concurrent mutation. Systems
// built from an immutable coagulation kernel may be shared between goroutines;
// integrators carrying scratch buffers may not.
package dynamo
