// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [AdaptiveIntegrator]: error-controlled integrator interface
//   - [Simulator]: drives a system over a fixed output grid
//
// # Example
//
//	dyn, _ := launcher.New(launcher.DefaultSpec())
//	integ := integrators.NewRK45()
//	sim := dynamo.New(dyn, integ)
//	result, _ := sim.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Systems must be pure functions
// of their inputs: adaptive integrators re-evaluate rejected time points.
package dynamo
