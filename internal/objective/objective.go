package objective

import (
	"fmt"
	"math"
	"sort"
)

// Differentiable is a scalar function paired with its first derivative.
type Differentiable interface {
	Value(x float64) float64
	Derivative(x float64) float64
}

// Quadratic represents f(x) = A*x^2 - B*x + C
type Quadratic struct {
	A, B, C float64
}

func (q Quadratic) Value(x float64) float64 {
	return q.A*x*x - q.B*x + q.C
}

func (q Quadratic) Derivative(x float64) float64 {
	return 2*q.A*x - q.B
}

// Parabola returns a quadratic with its minimum at center, f(x) = (x - center)^2.
func Parabola(center float64) Quadratic {
	return Quadratic{A: 1, B: 2 * center, C: center * center}
}

// Sine is f(x) = sin(x)
type Sine struct{}

func (Sine) Value(x float64) float64 { return math.Sin(x) }

func (Sine) Derivative(x float64) float64 { return math.Cos(x) }

// Cosine is f(x) = cos(x)
type Cosine struct{}

func (Cosine) Value(x float64) float64 { return math.Cos(x) }

func (Cosine) Derivative(x float64) float64 { return -math.Sin(x) }

// Constant is f(x) = C, with a derivative of zero everywhere
type Constant struct {
	C float64
}

func (c Constant) Value(x float64) float64 { return c.C }

func (Constant) Derivative(x float64) float64 { return 0 }

// builtins maps CLI-selectable function names to their default instances.
// Quadratic defaults to f(x) = 2x^2 - x (minimum at x = 1/4).
var builtins = map[string]Differentiable{
	"quadratic": Quadratic{A: 2, B: 1, C: 0},
	"parabola":  Parabola(0),
	"sine":      Sine{},
	"cosine":    Cosine{},
	"constant":  Constant{C: 1},
}

// ByName resolves a function by its registry name.
func ByName(name string) (Differentiable, error) {
	f, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown function %q (available: %v)", name, Names())
	}
	return f, nil
}

// Names returns the registry names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
