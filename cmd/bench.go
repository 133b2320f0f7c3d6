package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/gradmin/internal/descent"
	"github.com/cwbudde/gradmin/internal/objective"
)

var (
	benchFn    string
	benchLow   float64
	benchHigh  float64
	benchEta   float64
	benchIters int
	benchReps  int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark static vs dynamic dispatch",
	Long: `Times the same gradient descent through the compile-time generic entry
point and the run-time interface entry point, and verifies that both produce
identical results. Dispatch is an implementation-strategy choice; only the
cost per call may differ.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVar(&benchFn, "fn", "quadratic", "Objective function name")
	benchCmd.Flags().Float64Var(&benchLow, "low", -0.5, "Interval lower bound")
	benchCmd.Flags().Float64Var(&benchHigh, "high", 0.5, "Interval upper bound")
	benchCmd.Flags().Float64Var(&benchEta, "eta", 0.01, "Learn rate (step size)")
	benchCmd.Flags().IntVar(&benchIters, "iters", 10000, "Descent iterations per run")
	benchCmd.Flags().IntVar(&benchReps, "reps", 100, "Timed repetitions per variant")

	rootCmd.AddCommand(benchCmd)
}

// timing holds the measured outcome of one dispatch variant.
type timing struct {
	variant string
	reps    int
	total   time.Duration
	result  descent.Result
}

func (t timing) perRun() time.Duration {
	if t.reps == 0 {
		return 0
	}
	return t.total / time.Duration(t.reps)
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchReps <= 0 {
		return fmt.Errorf("reps must be positive, got %d", benchReps)
	}

	f, err := objective.ByName(benchFn)
	if err != nil {
		return err
	}

	iv := descent.Interval{Low: benchLow, High: benchHigh}
	opts := descent.Options{LearnRate: benchEta, MaxIters: benchIters}

	slog.Info("Benchmarking dispatch variants", "function", benchFn,
		"iters", benchIters, "reps", benchReps)

	static, err := measure("static", benchReps, func() (descent.Result, error) {
		return minimizeStatic(f, iv, opts)
	})
	if err != nil {
		return err
	}

	dynamic, err := measure("dynamic", benchReps, func() (descent.Result, error) {
		return descent.MinimizeDynamic(f, iv, opts)
	})
	if err != nil {
		return err
	}

	if static.result != dynamic.result {
		return fmt.Errorf("dispatch variants disagree: static %+v vs dynamic %+v",
			static.result, dynamic.result)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tRUNS\tTOTAL\tNS/RUN\tX")
	fmt.Fprintln(w, "-------\t----\t-----\t------\t-")
	for _, tm := range []timing{static, dynamic} {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%.9g\n",
			tm.variant, tm.reps, tm.total.Round(time.Microsecond),
			tm.perRun().Nanoseconds(), tm.result.X)
	}
	w.Flush()

	fmt.Printf("\nVariants agree: x=%.9g after %d iterations (%s)\n",
		static.result.X, static.result.Iterations, static.result.Status)
	return nil
}

// measure runs fn once untimed to warm up, then reps timed repetitions.
func measure(variant string, reps int, fn func() (descent.Result, error)) (timing, error) {
	res, err := fn()
	if err != nil {
		return timing{}, fmt.Errorf("%s variant failed: %w", variant, err)
	}

	start := time.Now()
	for i := 0; i < reps; i++ {
		if res, err = fn(); err != nil {
			return timing{}, fmt.Errorf("%s variant failed: %w", variant, err)
		}
	}

	return timing{
		variant: variant,
		reps:    reps,
		total:   time.Since(start),
		result:  res,
	}, nil
}
