// Package optim searches gun configurations for a target launch outcome.
package optim

import (
	"context"
	"math"

	"github.com/san-kum/pistonsim/internal/experiment"
)

// Objective scores a completed launch; lower is better. A typical objective
// is the distance of the muzzle velocity from a target value.
type Objective func(*experiment.Outcome) float64

// TargetVelocity scores by distance from the wanted muzzle velocity. A shot
// that never clears the bore scores +Inf.
func TargetVelocity(want float64) Objective {
	return func(o *experiment.Outcome) float64 {
		if !o.Summary.Exited {
			return math.Inf(1)
		}
		return math.Abs(o.Summary.MuzzleVelocity - want)
	}
}

// GridSearch exhaustively scores the cross product of the parameter ranges.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Range builds n evenly spaced values across [min, max] inclusive.
func Range(min, max float64, n int) []float64 {
	if n < 2 {
		return []float64{min}
	}
	vals := make([]float64, n)
	stride := (max - min) / float64(n-1)
	for i := range vals {
		vals[i] = min + float64(i)*stride
	}
	return vals
}

// Search runs every grid point through build and the objective, returning
// the best-scoring parameter assignment. Points whose experiment fails to
// build or run are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*experiment.Experiment, error),
	objective Objective,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), build, objective, &best, &bestParams)
	return bestParams, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build func(map[string]float64) (*experiment.Experiment, error),
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := build(current)
		if err != nil {
			return nil
		}

		outcome, err := exp.Run(ctx)
		if err != nil {
			return nil
		}

		if score := objective(outcome); score < *best {
			*best = score
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val

		if err := g.searchRecursive(ctx, depth+1, next, build, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
