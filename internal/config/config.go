// Package config provides run configuration loading for gradmin
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/gradmin/internal/descent"
)

// Configuration validation errors
var (
	ErrInvalidFunction  = errors.New("invalid function name")
	ErrInvalidInterval  = errors.New("invalid interval")
	ErrInvalidLearnRate = errors.New("invalid learn rate")
	ErrInvalidMaxIters  = errors.New("invalid iteration budget")
	ErrInvalidTolerance = errors.New("invalid tolerance")
	ErrInvalidDispatch  = errors.New("invalid dispatch mode")
)

// Dispatch selects which entry point of the minimizer a run uses.
type Dispatch string

const (
	// DispatchStatic binds the function type at compile time (generic call).
	DispatchStatic Dispatch = "static"
	// DispatchDynamic binds the function at run time (interface call).
	DispatchDynamic Dispatch = "dynamic"
	// DispatchBoth runs both and verifies they agree.
	DispatchBoth Dispatch = "both"
)

// String returns the string representation of Dispatch
func (d Dispatch) String() string {
	return string(d)
}

// IsValid checks if the dispatch mode is valid
func (d Dispatch) IsValid() bool {
	switch d {
	case DispatchStatic, DispatchDynamic, DispatchBoth:
		return true
	default:
		return false
	}
}

// Run holds the full configuration of a minimization run
type Run struct {
	// Function is the registry name of the objective (quadratic, sine, ...)
	Function string `yaml:"function" json:"function"`

	// Interval bounds the search domain
	Interval descent.Interval `yaml:"interval" json:"interval"`

	// LearnRate is the descent step size eta
	LearnRate float64 `yaml:"learnRate" json:"learnRate"`

	// MaxIters bounds the number of descent updates
	MaxIters int `yaml:"maxIters" json:"maxIters"`

	// Tolerance stops the run early once the update magnitude falls below it
	// (0 disables the early stop)
	Tolerance float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`

	// RandomStart draws the starting point from the interval using Seed
	RandomStart bool  `yaml:"randomStart,omitempty" json:"randomStart,omitempty"`
	Seed        int64 `yaml:"seed" json:"seed"`

	// Dispatch selects the static, dynamic, or both entry points
	Dispatch Dispatch `yaml:"dispatch" json:"dispatch"`

	// DataDir is where run records and traces are persisted
	DataDir string `yaml:"dataDir" json:"dataDir"`

	// Trace enables the per-iteration JSONL trace
	Trace bool `yaml:"trace,omitempty" json:"trace,omitempty"`
}

// Default returns the configuration used when no file or flags are given:
// the quadratic from the dispatch examples, eta 0.01, 10000 iterations.
func Default() *Run {
	return &Run{
		Function:  "quadratic",
		Interval:  descent.Interval{Low: -0.5, High: 0.5},
		LearnRate: 0.01,
		MaxIters:  10000,
		Seed:      42,
		Dispatch:  DispatchBoth,
		DataDir:   "./data",
	}
}

// Load reads a YAML run configuration from path, layered over Default().
// Fields absent from the file keep their default values.
func Load(path string) (*Run, error) {
	run := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, run); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return run, nil
}

// Validate checks the configuration for internal consistency. It does not
// resolve the function name; the objective registry owns that check.
func (r *Run) Validate() error {
	if r.Function == "" {
		return fmt.Errorf("%w: function name cannot be empty", ErrInvalidFunction)
	}
	if err := r.Interval.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}
	if r.LearnRate <= 0 || math.IsNaN(r.LearnRate) || math.IsInf(r.LearnRate, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidLearnRate, r.LearnRate)
	}
	if r.MaxIters <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxIters, r.MaxIters)
	}
	if r.Tolerance < 0 || math.IsNaN(r.Tolerance) {
		return fmt.Errorf("%w: got %v", ErrInvalidTolerance, r.Tolerance)
	}
	if !r.Dispatch.IsValid() {
		return fmt.Errorf("%w: got %q", ErrInvalidDispatch, r.Dispatch)
	}
	return nil
}

// Options converts the configuration into descent options.
func (r *Run) Options() descent.Options {
	return descent.Options{
		LearnRate:   r.LearnRate,
		MaxIters:    r.MaxIters,
		Tolerance:   r.Tolerance,
		RandomStart: r.RandomStart,
		Seed:        r.Seed,
	}
}
