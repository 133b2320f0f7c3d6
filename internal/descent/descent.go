package descent

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/cwbudde/gradmin/internal/objective"
)

// ErrStopped is returned by a per-iteration callback to stop the descent
// early. The loop reports Status Stopped without an error in that case.
var ErrStopped = errors.New("descent: stopped by callback")

// Interval bounds the search domain. Low must not exceed High.
type Interval struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Validate checks that the interval is ordered and finite.
func (iv Interval) Validate() error {
	if math.IsNaN(iv.Low) || math.IsInf(iv.Low, 0) {
		return fmt.Errorf("interval low bound %v is not finite", iv.Low)
	}
	if math.IsNaN(iv.High) || math.IsInf(iv.High, 0) {
		return fmt.Errorf("interval high bound %v is not finite", iv.High)
	}
	if iv.Low > iv.High {
		return fmt.Errorf("interval low bound %v exceeds high bound %v", iv.Low, iv.High)
	}
	return nil
}

// Mid returns the interval midpoint, the default starting point.
func (iv Interval) Mid() float64 {
	return iv.Low + (iv.High-iv.Low)/2
}

// Iteration describes one completed update of the descent loop.
// It is passed to the OnIteration callback.
type Iteration struct {
	N        int     `json:"n"`
	X        float64 `json:"x"`
	Gradient float64 `json:"gradient"`
	Step     float64 `json:"step"`
}

// Options configures a descent run
type Options struct {
	// LearnRate is the step size eta in x <- x - eta * f'(x).
	LearnRate float64

	// MaxIters bounds the number of updates. The loop always terminates
	// within this budget, convergent or not.
	MaxIters int

	// Tolerance stops the loop once |eta * f'(x)| falls below it.
	// Zero disables the early stop and the full budget is used.
	Tolerance float64

	// RandomStart draws the starting point uniformly from the interval
	// instead of using the midpoint. Seed makes the draw reproducible.
	RandomStart bool
	Seed        int64

	// OnIteration, if set, is called after every update. Returning
	// ErrStopped ends the run with Status Stopped; any other error aborts
	// the run and is returned to the caller.
	OnIteration func(Iteration) error
}

// DefaultOptions returns the step size and budget used throughout the
// examples: eta 0.01 for 10000 iterations, no early stop.
func DefaultOptions() Options {
	return Options{
		LearnRate: 0.01,
		MaxIters:  10000,
	}
}

func (o Options) validate() error {
	if o.LearnRate <= 0 || math.IsNaN(o.LearnRate) || math.IsInf(o.LearnRate, 0) {
		return fmt.Errorf("learn rate must be positive and finite, got %v", o.LearnRate)
	}
	if o.MaxIters <= 0 {
		return fmt.Errorf("iteration budget must be positive, got %d", o.MaxIters)
	}
	if o.Tolerance < 0 || math.IsNaN(o.Tolerance) {
		return fmt.Errorf("tolerance must be non-negative, got %v", o.Tolerance)
	}
	return nil
}

// start picks the initial point for a run.
func (o Options) start(iv Interval) float64 {
	if !o.RandomStart {
		return iv.Mid()
	}
	rng := rand.New(rand.NewSource(o.Seed))
	return iv.Low + rng.Float64()*(iv.High-iv.Low)
}

// Result holds the outcome of a descent run
type Result struct {
	// X is the final iterate, the best estimate of the minimizer location.
	X float64 `json:"x"`

	// Value and Gradient are f(X) and f'(X).
	Value    float64 `json:"value"`
	Gradient float64 `json:"gradient"`

	// Iterations is the number of updates performed.
	Iterations int `json:"iterations"`

	// Status reports why the loop stopped.
	Status Status `json:"status"`
}

// Minimize locates a local minimum of f on iv by gradient descent, with the
// concrete function type fixed at compile time. The compiler may devirtualize
// and inline the Value/Derivative calls for each instantiation.
//
// Minimize and MinimizeDynamic share one loop and produce bit-identical
// results for the same function, interval, and options.
func Minimize[F objective.Differentiable](f F, iv Interval, opts Options) (Result, error) {
	if err := iv.Validate(); err != nil {
		return Result{}, err
	}
	if err := opts.validate(); err != nil {
		return Result{}, err
	}
	return descend(f, opts.start(iv), opts)
}

// MinimizeDynamic behaves exactly like Minimize but binds f at run time
// through the interface value, so callers can descend over heterogeneous
// collections of functions from a single call site.
func MinimizeDynamic(f objective.Differentiable, iv Interval, opts Options) (Result, error) {
	return Minimize[objective.Differentiable](f, iv, opts)
}

// descend is the shared update loop. Both entry points funnel through it so
// the dispatch strategy cannot affect the numerics.
func descend[F objective.Differentiable](f F, x0 float64, opts Options) (Result, error) {
	x := x0
	g := f.Derivative(x)

	// Degenerate convergence: already at a stationary point.
	if g == 0 {
		return Result{X: x, Value: f.Value(x), Status: GradTol}, nil
	}

	for n := 1; n <= opts.MaxIters; n++ {
		step := opts.LearnRate * g
		next := x - step
		nextGrad := f.Derivative(next)

		if !isFinite(next) || !isFinite(nextGrad) {
			slog.Debug("descent diverged", "iteration", n, "last_finite_x", x)
			return result(f, x, g, n, Diverged), nil
		}
		x, g = next, nextGrad

		if opts.OnIteration != nil {
			err := opts.OnIteration(Iteration{N: n, X: x, Gradient: g, Step: step})
			if errors.Is(err, ErrStopped) {
				return result(f, x, g, n, Stopped), nil
			}
			if err != nil {
				return result(f, x, g, n, Stopped), fmt.Errorf("iteration callback: %w", err)
			}
		}

		if g == 0 {
			return result(f, x, g, n, GradTol), nil
		}
		if opts.Tolerance > 0 && math.Abs(step) < opts.Tolerance {
			return result(f, x, g, n, StepTol), nil
		}
	}

	return result(f, x, g, opts.MaxIters, MaxIterations), nil
}

func result[F objective.Differentiable](f F, x, g float64, iters int, status Status) Result {
	return Result{
		X:          x,
		Value:      f.Value(x),
		Gradient:   g,
		Iterations: iters,
		Status:     status,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
