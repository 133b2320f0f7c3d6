package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/gradmin/internal/config"
	"github.com/cwbudde/gradmin/internal/descent"
)

// VariantResult pairs a dispatch variant name ("static" or "dynamic") with
// the result it produced. Runs in "both" mode carry two entries that must
// agree; the other modes carry one.
type VariantResult struct {
	Variant string         `json:"variant"`
	Result  descent.Result `json:"result"`
}

// RunRecord is a persisted minimization run: the configuration it was
// started with and the result(s) it produced. Serialized as record.json
// under <dataDir>/runs/<runID>/.
type RunRecord struct {
	// RunID is the unique identifier for this run
	RunID string `json:"runId"`

	// Config is a snapshot of the run configuration, kept so a listed run
	// can be reproduced exactly
	Config config.Run `json:"config"`

	// Results holds one entry per dispatch variant executed
	Results []VariantResult `json:"results"`

	// Elapsed is the wall-clock duration of the run
	Elapsed time.Duration `json:"elapsed"`

	// Timestamp records when the run finished
	Timestamp time.Time `json:"timestamp"`
}

// RunInfo contains run metadata without the full configuration, used for
// listing runs efficiently.
type RunInfo struct {
	RunID      string    `json:"runId"`
	Function   string    `json:"function"`
	Dispatch   string    `json:"dispatch"`
	X          float64   `json:"x"`
	Status     string    `json:"status"`
	Iterations int       `json:"iterations"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRunRecord creates a record from a finished run.
func NewRunRecord(runID string, cfg config.Run, results []VariantResult, elapsed time.Duration) *RunRecord {
	return &RunRecord{
		RunID:     runID,
		Config:    cfg,
		Results:   results,
		Elapsed:   elapsed,
		Timestamp: time.Now(),
	}
}

// ToInfo converts a full RunRecord to RunInfo (metadata only).
// The listed result is the first variant's.
func (r *RunRecord) ToInfo() RunInfo {
	info := RunInfo{
		RunID:     r.RunID,
		Function:  r.Config.Function,
		Dispatch:  r.Config.Dispatch.String(),
		Timestamp: r.Timestamp,
	}
	if len(r.Results) > 0 {
		info.X = r.Results[0].Result.X
		info.Status = r.Results[0].Result.Status.String()
		info.Iterations = r.Results[0].Result.Iterations
	}
	return info
}

// Validate checks if the record has valid data.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if len(r.Results) == 0 {
		return &ValidationError{Field: "Results", Reason: "cannot be empty"}
	}
	for i, vr := range r.Results {
		if vr.Variant == "" {
			return &ValidationError{Field: fmt.Sprintf("Results[%d].Variant", i), Reason: "cannot be empty"}
		}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if err := r.Config.Validate(); err != nil {
		return &ValidationError{Field: "Config", Reason: err.Error()}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid run record: %s %s", e.Field, e.Reason)
}
