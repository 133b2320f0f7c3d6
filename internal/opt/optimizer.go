package opt

// Optimizer defines a univariate optimization algorithm interface.
// It exists so gradient descent can be cross-checked against unrelated
// algorithms (e.g. a population-based global search) on the same problem.
type Optimizer interface {
	// Run minimizes eval over [lower, upper].
	// Returns: best location and best value.
	Run(eval func(float64) float64, lower, upper float64) (x, fx float64)
}
