package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/gradmin/internal/config"
	"github.com/cwbudde/gradmin/internal/descent"
	"github.com/cwbudde/gradmin/internal/objective"
	"github.com/cwbudde/gradmin/internal/opt"
	"github.com/cwbudde/gradmin/internal/store"
)

var (
	configPath  string
	fnName      string
	intervalLow float64
	intervalHi  float64
	learnRate   float64
	maxIters    int
	tolerance   float64
	seed        int64
	randomStart bool
	dispatchStr string
	dataDir     string
	traceRun    bool
	crossCheck  bool
	checkIters  int
	checkPop    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single minimization",
	Long: `Runs gradient descent on the selected function over the given interval,
records the result, and optionally cross-checks it against a gradient-free
global search.`,
	RunE: runMinimize,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration file")
	runCmd.Flags().StringVar(&fnName, "fn", "quadratic", "Objective function name")
	runCmd.Flags().Float64Var(&intervalLow, "low", -0.5, "Interval lower bound")
	runCmd.Flags().Float64Var(&intervalHi, "high", 0.5, "Interval upper bound")
	runCmd.Flags().Float64Var(&learnRate, "eta", 0.01, "Learn rate (step size)")
	runCmd.Flags().IntVar(&maxIters, "iters", 10000, "Max iterations")
	runCmd.Flags().Float64Var(&tolerance, "tol", 0, "Step tolerance for early stop (0 = run full budget)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for --random-start")
	runCmd.Flags().BoolVar(&randomStart, "random-start", false, "Start from a seeded random point instead of the midpoint")
	runCmd.Flags().StringVar(&dispatchStr, "dispatch", "both", "Dispatch mode: static, dynamic, both")
	runCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for run records")
	runCmd.Flags().BoolVar(&traceRun, "trace", false, "Write a per-iteration JSONL trace")
	runCmd.Flags().BoolVar(&crossCheck, "check", false, "Cross-check the result against the mayfly global search")
	runCmd.Flags().IntVar(&checkIters, "check-iters", 200, "Mayfly iterations for --check")
	runCmd.Flags().IntVar(&checkPop, "check-pop", 20, "Mayfly population size for --check (>= 20)")

	rootCmd.AddCommand(runCmd)
}

// buildRunConfig layers explicitly set flags over the config file (or the
// defaults when no file is given).
func buildRunConfig(cmd *cobra.Command) (*config.Run, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("fn") {
		cfg.Function = fnName
	}
	if flags.Changed("low") {
		cfg.Interval.Low = intervalLow
	}
	if flags.Changed("high") {
		cfg.Interval.High = intervalHi
	}
	if flags.Changed("eta") {
		cfg.LearnRate = learnRate
	}
	if flags.Changed("iters") {
		cfg.MaxIters = maxIters
	}
	if flags.Changed("tol") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("random-start") {
		cfg.RandomStart = randomStart
	}
	if flags.Changed("dispatch") {
		cfg.Dispatch = config.Dispatch(dispatchStr)
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("trace") {
		cfg.Trace = traceRun
	}

	return cfg, nil
}

func runMinimize(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	f, err := objective.ByName(cfg.Function)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	slog.Info("Starting run", "runID", runID, "function", cfg.Function,
		"dispatch", cfg.Dispatch.String(), "eta", cfg.LearnRate, "iters", cfg.MaxIters)

	opts := cfg.Options()

	// The trace callback is attached to the first variant only; in "both"
	// mode the second variant repeats the identical trajectory.
	var tw *store.TraceWriter
	tracedOpts := opts
	if cfg.Trace {
		tw, err = store.NewTraceWriter(cfg.DataDir, runID)
		if err != nil {
			return err
		}
		defer tw.Close()
		tracedOpts.OnIteration = func(it descent.Iteration) error {
			return tw.Write(store.TraceEntry{
				Iteration: it.N,
				X:         it.X,
				Gradient:  it.Gradient,
				Timestamp: time.Now(),
			})
		}
	}

	start := time.Now()

	var results []store.VariantResult
	switch cfg.Dispatch {
	case config.DispatchStatic:
		res, err := minimizeStatic(f, cfg.Interval, tracedOpts)
		if err != nil {
			return err
		}
		results = append(results, store.VariantResult{Variant: "static", Result: res})
	case config.DispatchDynamic:
		res, err := descent.MinimizeDynamic(f, cfg.Interval, tracedOpts)
		if err != nil {
			return err
		}
		results = append(results, store.VariantResult{Variant: "dynamic", Result: res})
	case config.DispatchBoth:
		static, err := minimizeStatic(f, cfg.Interval, tracedOpts)
		if err != nil {
			return err
		}
		dynamic, err := descent.MinimizeDynamic(f, cfg.Interval, opts)
		if err != nil {
			return err
		}
		if static != dynamic {
			return fmt.Errorf("dispatch variants disagree: static %+v vs dynamic %+v", static, dynamic)
		}
		results = append(results,
			store.VariantResult{Variant: "static", Result: static},
			store.VariantResult{Variant: "dynamic", Result: dynamic},
		)
	}

	elapsed := time.Since(start)

	if tw != nil {
		if err := tw.Flush(); err != nil {
			return err
		}
		slog.Info("Trace written", "path", tw.Path())
	}

	runStore, err := store.NewFSStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}
	record := store.NewRunRecord(runID, *cfg, results, elapsed)
	if err := runStore.SaveRun(runID, record); err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	fmt.Printf("Run %s (%s on [%g, %g], %s)\n",
		runID, cfg.Function, cfg.Interval.Low, cfg.Interval.High, elapsed.Round(time.Microsecond))
	for _, vr := range results {
		fmt.Printf("  %-8s x=%.9g f(x)=%.9g f'(x)=%.3g iters=%d status=%s\n",
			vr.Variant, vr.Result.X, vr.Result.Value, vr.Result.Gradient,
			vr.Result.Iterations, vr.Result.Status)
	}

	if crossCheck {
		checker := opt.NewMayfly(checkIters, checkPop, cfg.Seed)
		x, fx := checker.Run(f.Value, cfg.Interval.Low, cfg.Interval.High)
		fmt.Printf("  %-8s x=%.9g f(x)=%.9g (gradient-free global search)\n", "mayfly", x, fx)

		got := results[0].Result
		slog.Info("Cross-check complete",
			"descent_x", got.X, "descent_value", got.Value,
			"mayfly_x", x, "mayfly_value", fx,
			"value_gap", got.Value-fx)
	}

	return nil
}

// minimizeStatic dispatches to the generic entry point with the concrete
// function type fixed at the call site. The type switch is the price of
// compile-time binding: a call site must name each concrete type, so it
// cannot serve arbitrary registry additions the way MinimizeDynamic can.
func minimizeStatic(f objective.Differentiable, iv descent.Interval, opts descent.Options) (descent.Result, error) {
	switch f := f.(type) {
	case objective.Quadratic:
		return descent.Minimize(f, iv, opts)
	case objective.Sine:
		return descent.Minimize(f, iv, opts)
	case objective.Cosine:
		return descent.Minimize(f, iv, opts)
	case objective.Constant:
		return descent.Minimize(f, iv, opts)
	default:
		return descent.MinimizeDynamic(f, iv, opts)
	}
}
