package opt

import (
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer
// interface. Mayfly is a population-based global search, so unlike gradient
// descent it does not need a derivative and can escape local minima.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter.
// popSize must be >= 20 for mayfly v0.1.0.
func NewMayfly(maxIters, popSize int, seed int64) Optimizer {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes the Mayfly optimization on the scalar problem, mapped onto a
// one-dimensional search space.
func (m *MayflyAdapter) Run(eval func(float64) float64, lower, upper float64) (float64, float64) {
	config := mayfly.NewDefaultConfig()

	config.ObjectiveFunc = func(v []float64) float64 { return eval(v[0]) }
	config.ProblemSize = 1
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = lower
	config.UpperBound = upper

	// Seeded for reproducibility
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		// Fall back to the interval midpoint if optimization fails
		mid := lower + (upper-lower)/2
		return mid, eval(mid)
	}

	return result.GlobalBest.Position[0], result.GlobalBest.Cost
}
