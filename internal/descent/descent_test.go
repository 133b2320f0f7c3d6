package descent

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/gradmin/internal/objective"
)

func TestMinimizeQuadratic(t *testing.T) {
	// min { 2x^2 - x } = -1/8 at x = 1/4
	f := objective.Quadratic{A: 2, B: 1, C: 0}

	res, err := Minimize(f, Interval{Low: -0.5, High: 0.5}, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 0.25, res.X, 1e-5)
	assert.InDelta(t, -0.125, res.Value, 1e-5)
}

func TestMinimizeParabolaFindsCenter(t *testing.T) {
	for _, center := range []float64{-3, 0, 1.5, 4} {
		f := objective.Parabola(center)

		res, err := Minimize(f, Interval{Low: -5, High: 5}, DefaultOptions())
		require.NoError(t, err)
		assert.InDelta(t, center, res.X, 1e-3, "center %v", center)

		dyn, err := MinimizeDynamic(f, Interval{Low: -5, High: 5}, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, res, dyn, "dispatch variants must agree for center %v", center)
	}
}

func TestMinimizeSine(t *testing.T) {
	// sin has a minimum at -pi/2 within [-5, 3.5]
	res, err := Minimize(objective.Sine{}, Interval{Low: -5, High: 3.5}, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, -math.Pi/2, res.X, 1e-3)
}

func TestMinimizeExampleBudget(t *testing.T) {
	// f(x) = x^2 over [-5, 5], eta 0.1, 100 iterations. A random start keeps
	// the run from beginning at the minimum itself (the interval midpoint).
	opts := Options{LearnRate: 0.1, MaxIters: 100, RandomStart: true, Seed: 42}

	res, err := Minimize(objective.Parabola(0), Interval{Low: -5, High: 5}, opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.X, 1e-2)
}

func TestMinimizeConstantNoMovement(t *testing.T) {
	iv := Interval{Low: -2, High: 4}

	res, err := Minimize(objective.Constant{C: 7}, iv, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, iv.Mid(), res.X, "zero derivative must not move the start point")
	assert.Equal(t, GradTol, res.Status)
	assert.Zero(t, res.Iterations)
	assert.True(t, res.Status.Converged())
}

func TestMinimizeTinyBudgetTerminates(t *testing.T) {
	opts := Options{LearnRate: 0.01, MaxIters: 3}

	res, err := Minimize(objective.Parabola(4), Interval{Low: -5, High: 5}, opts)
	require.NoError(t, err)

	assert.Equal(t, MaxIterations, res.Status)
	assert.Equal(t, 3, res.Iterations)
	assert.False(t, math.IsNaN(res.X))
	assert.False(t, res.Status.Converged())
}

func TestMinimizeDispatchParity(t *testing.T) {
	fns := []objective.Differentiable{
		objective.Quadratic{A: 2, B: 1, C: 0},
		objective.Sine{},
		objective.Cosine{},
		objective.Parabola(-1.25),
	}
	iv := Interval{Low: -4, High: 4}
	opts := DefaultOptions()
	opts.Tolerance = 1e-12

	for _, f := range fns {
		dyn, err := MinimizeDynamic(f, iv, opts)
		require.NoError(t, err)

		var static Result
		switch f := f.(type) {
		case objective.Quadratic:
			static, err = Minimize(f, iv, opts)
		case objective.Sine:
			static, err = Minimize(f, iv, opts)
		case objective.Cosine:
			static, err = Minimize(f, iv, opts)
		default:
			t.Fatalf("unhandled function type %T", f)
		}
		require.NoError(t, err)

		// Bit-identical, not merely close.
		assert.Equal(t, static, dyn, "%T", f)
	}
}

func TestMinimizeToleranceStopsEarly(t *testing.T) {
	opts := DefaultOptions()
	opts.Tolerance = 1e-6

	res, err := Minimize(objective.Parabola(1), Interval{Low: -5, High: 5}, opts)
	require.NoError(t, err)

	assert.Equal(t, StepTol, res.Status)
	assert.Less(t, res.Iterations, opts.MaxIters)
	assert.InDelta(t, 1.0, res.X, 1e-3)
}

func TestMinimizeDivergence(t *testing.T) {
	// A step size far above 1/A makes the quadratic updates explode.
	opts := Options{LearnRate: 1e6, MaxIters: 10000}

	res, err := Minimize(objective.Quadratic{A: 2, B: 0, C: 0}, Interval{Low: 1, High: 3}, opts)
	require.NoError(t, err)

	assert.Equal(t, Diverged, res.Status)
	assert.False(t, math.IsNaN(res.X), "diverged result must carry the last finite iterate")
	assert.False(t, math.IsInf(res.X, 0))
}

func TestMinimizeInvalidInterval(t *testing.T) {
	_, err := Minimize(objective.Sine{}, Interval{Low: 2, High: 1}, DefaultOptions())
	assert.Error(t, err)

	_, err = Minimize(objective.Sine{}, Interval{Low: math.NaN(), High: 1}, DefaultOptions())
	assert.Error(t, err)

	_, err = Minimize(objective.Sine{}, Interval{Low: 0, High: math.Inf(1)}, DefaultOptions())
	assert.Error(t, err)
}

func TestMinimizeInvalidOptions(t *testing.T) {
	iv := Interval{Low: -1, High: 1}

	_, err := Minimize(objective.Sine{}, iv, Options{LearnRate: 0, MaxIters: 10})
	assert.Error(t, err)

	_, err = Minimize(objective.Sine{}, iv, Options{LearnRate: 0.1, MaxIters: 0})
	assert.Error(t, err)

	_, err = Minimize(objective.Sine{}, iv, Options{LearnRate: 0.1, MaxIters: 10, Tolerance: -1})
	assert.Error(t, err)
}

func TestMinimizeRandomStartDeterministic(t *testing.T) {
	opts := DefaultOptions()
	opts.RandomStart = true
	opts.Seed = 42
	opts.MaxIters = 50 // keep the runs apart from the converged fixed point

	iv := Interval{Low: -5, High: 5}

	first, err := Minimize(objective.Parabola(2), iv, opts)
	require.NoError(t, err)
	second, err := Minimize(objective.Parabola(2), iv, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	opts.Seed = 43
	other, err := Minimize(objective.Parabola(2), iv, opts)
	require.NoError(t, err)
	assert.NotEqual(t, first.X, other.X, "different seeds should start differently")
}

func TestMinimizeCallback(t *testing.T) {
	var seen []Iteration
	opts := Options{
		LearnRate: 0.1,
		MaxIters:  5,
		OnIteration: func(it Iteration) error {
			seen = append(seen, it)
			return nil
		},
	}

	res, err := Minimize(objective.Parabola(3), Interval{Low: -5, High: 5}, opts)
	require.NoError(t, err)

	require.Len(t, seen, 5)
	assert.Equal(t, 1, seen[0].N)
	assert.Equal(t, res.X, seen[4].X)
	assert.Equal(t, res.Gradient, seen[4].Gradient)
}

func TestMinimizeCallbackStop(t *testing.T) {
	opts := DefaultOptions()
	opts.OnIteration = func(it Iteration) error {
		if it.N == 7 {
			return ErrStopped
		}
		return nil
	}

	res, err := Minimize(objective.Parabola(0), Interval{Low: 1, High: 3}, opts)
	require.NoError(t, err)
	assert.Equal(t, Stopped, res.Status)
	assert.Equal(t, 7, res.Iterations)
}

func TestMinimizeCallbackError(t *testing.T) {
	boom := errors.New("boom")
	opts := DefaultOptions()
	opts.OnIteration = func(Iteration) error { return boom }

	_, err := Minimize(objective.Parabola(0), Interval{Low: 1, High: 3}, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestHeterogeneousCollection(t *testing.T) {
	// Only the interface-typed entry point can serve a mixed slice; the
	// generic entry point fixes one concrete type per call site.
	fns := []objective.Differentiable{
		objective.Quadratic{A: 1, B: 2, C: 1},
		objective.Sine{},
		objective.Constant{C: 0},
	}

	for _, f := range fns {
		res, err := MinimizeDynamic(f, Interval{Low: -3, High: 3}, DefaultOptions())
		require.NoError(t, err)
		assert.False(t, math.IsNaN(res.X))
	}
}

func BenchmarkMinimizeStatic(b *testing.B) {
	f := objective.Quadratic{A: 2, B: 1, C: 0}
	iv := Interval{Low: -0.5, High: 0.5}
	opts := DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Minimize(f, iv, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMinimizeDynamic(b *testing.B) {
	var f objective.Differentiable = objective.Quadratic{A: 2, B: 1, C: 0}
	iv := Interval{Low: -0.5, High: 0.5}
	opts := DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := MinimizeDynamic(f, iv, opts); err != nil {
			b.Fatal(err)
		}
	}
}
