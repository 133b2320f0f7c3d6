package opt

import (
	"github.com/cwbudde/gradmin/internal/descent"
	"github.com/cwbudde/gradmin/internal/objective"
)

// fdStep is the half-width used for the central-difference derivative.
const fdStep = 1e-6

// numeric adapts a plain eval function to objective.Differentiable by
// approximating the derivative with a central difference.
type numeric struct {
	eval func(float64) float64
}

func (n numeric) Value(x float64) float64 { return n.eval(x) }

func (n numeric) Derivative(x float64) float64 {
	return (n.eval(x+fdStep) - n.eval(x-fdStep)) / (2 * fdStep)
}

// DescentAdapter runs gradient descent through the Optimizer seam, deriving
// gradients numerically so it accepts the same derivative-free eval functions
// as the other adapters.
type DescentAdapter struct {
	opts descent.Options
}

// NewDescent creates a descent-backed optimizer with the given step size and
// iteration budget.
func NewDescent(maxIters int, learnRate float64) Optimizer {
	opts := descent.DefaultOptions()
	opts.MaxIters = maxIters
	opts.LearnRate = learnRate
	return &DescentAdapter{opts: opts}
}

func (d *DescentAdapter) Run(eval func(float64) float64, lower, upper float64) (float64, float64) {
	var f objective.Differentiable = numeric{eval: eval}

	res, err := descent.MinimizeDynamic(f, descent.Interval{Low: lower, High: upper}, d.opts)
	if err != nil {
		mid := lower + (upper-lower)/2
		return mid, eval(mid)
	}
	return res.X, res.Value
}
