// Package analysis post-processes sampled launch trajectories: it rebuilds
// the gauge-pressure series from recorded positions and derives the summary
// figures (muzzle velocity, bore-exit time, peak pressure, piston slam).
package analysis
