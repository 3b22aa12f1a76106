// Package launcher models a spring-driven pneumatic piston launching a
// projectile through a barrel.
//
// A compressed spring drives a piston down a cylinder, squeezing a sealed
// gas cavity; the rising gauge pressure accelerates the projectile up the
// bore. The gas is treated as ideal and isothermal, and both bodies stop
// dead at their travel limits (no rebound is modeled):
//
//   - [Spec]: raw configuration record in engineering units
//   - [Params]: SI parameter set derived from a Spec at construction
//   - [Launcher]: the dynamo.System evaluating forces and pressure
//
// State layout is [piston position, piston velocity, projectile position,
// projectile velocity], all SI.
package launcher
