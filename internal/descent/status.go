package descent

// Status reports why the descent loop stopped.
// Positive values indicate convergence, negative values indicate the loop
// gave up; zero means the loop would have continued (never returned).
type Status int

const (
	// Continue is the zero value and never appears in a Result.
	Continue Status = iota

	// GradTol means the derivative reached zero exactly.
	GradTol

	// StepTol means the last update fell below the tolerance.
	StepTol
)

const (
	_ = iota

	// MaxIterations means the iteration budget ran out before convergence.
	// The result is the best-effort iterate at that point.
	MaxIterations Status = -1 * iota

	// Diverged means an iterate or derivative became non-finite. The result
	// carries the last finite iterate.
	Diverged

	// Stopped means the per-iteration callback requested a stop.
	Stopped
)

var statusStrings = map[Status]string{
	Continue:      "Continue",
	GradTol:       "GradTol",
	StepTol:       "StepTol",
	MaxIterations: "MaxIterations",
	Diverged:      "Diverged",
	Stopped:       "Stopped",
}

func (s Status) String() string {
	str, ok := statusStrings[s]
	if !ok {
		return "UnknownStatus"
	}
	return str
}

// Converged reports whether the loop stopped at a (local) stationary point.
func (s Status) Converged() bool {
	return s > 0
}
