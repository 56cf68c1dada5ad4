package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/coagsim/internal/coag"
	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/dynamo"
	"github.com/san-kum/coagsim/internal/experiment"
	"github.com/san-kum/coagsim/internal/storage"
	"github.com/san-kum/coagsim/internal/tui"
)

func openStore() *storage.Store {
	return storage.New(dataDir)
}

func radiusLabels(radii []float64) []string {
	labels := make([]string, len(radii))
	for i, r := range radii {
		labels[i] = fmt.Sprintf("%.3gum", r*1e6)
	}
	return labels
}

func buildKernel(cmd *cobra.Command) (*experiment.Experiment, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg, logrus.StandardLogger())
	if err := exp.BuildKernel(); err != nil {
		return nil, err
	}
	if !exp.Kernel().Populated() {
		return nil, fmt.Errorf("phase %s: %w", cfg.Phase, coag.ErrNotPopulated)
	}
	return exp, nil
}

func showKernel(cmd *cobra.Command, args []string) error {
	start := time.Now()
	exp, err := buildKernel(cmd)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	cfg := exp.Config()
	c := exp.Kernel()
	kLo, kHi, kMean := experiment.KernelStats(c.Kernel())
	bLo, bHi, bMean := experiment.KernelStats(c.Beta())

	fmt.Printf("phase: %s  processes: %v\n", cfg.Phase, coag.Processes(cfg.Phase))
	fmt.Printf("ambient: %.1f K, %.0f Pa\n", cfg.Ambient.Temperature, cfg.Ambient.Pressure)
	fmt.Printf("bins: %d from %.3g to %.3g m\n", exp.Bins().Len(), cfg.Bins.RMin, cfg.Bins.RMax)
	fmt.Printf("built in %v\n\n", elapsed)
	fmt.Println(tui.KernelTable(
		tui.KernelRow{Label: "kernel", Min: kLo, Max: kHi, Mean: kMean},
		tui.KernelRow{Label: "beta", Min: bLo, Max: bHi, Mean: bMean},
	))

	if showMatrix > 0 {
		labels := radiusLabels(exp.Bins().Centers)
		fmt.Println("\nkernel [cm3/s]:")
		fmt.Println(tui.MatrixTable(c.Kernel(), labels, showMatrix))
		fmt.Println("\nbeta [cm3/s]:")
		fmt.Println(tui.MatrixTable(c.Beta(), labels, showMatrix))
	}

	if dumpPath != "" {
		if err := c.PrintKernel(dumpPath); err != nil {
			return err
		}
		fmt.Printf("\nkernel written to %s\n", dumpPath)
	}
	return nil
}

func showEfficiency(cmd *cobra.Command, args []string) error {
	r1, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("r1: %w", err)
	}
	r2, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("r2: %w", err)
	}
	if !(r1 > 0) || !(r2 > 0) {
		return fmt.Errorf("%w: radii must be positive", coag.ErrInvalidArgument)
	}

	res := coag.SolveEfficiency(r1, r2, coag.DefaultMaxIterations)
	fmt.Printf("E: %.6f\n", res.E)
	fmt.Printf("iterations: %d\n", res.Iterations)
	fmt.Printf("residual: %.3e\n", res.Residual)
	if !res.Converged {
		return &coag.ConvergenceError{I: -1, J: -1, Iterations: res.Iterations, E: res.E, Residual: res.Residual}
	}
	return nil
}

func showFractions(cmd *cobra.Command, args []string) error {
	exp, err := buildKernel(cmd)
	if err != nil {
		return err
	}
	c := exp.Kernel()
	n, _ := c.Dims()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "I\tJ\tRECEIVER\tLOWER\tUPPER")
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k := c.Receiver(i, j)
			upper := 0.0
			if k+1 < n {
				upper = c.Fraction(i, j, k+1)
			}
			fmt.Fprintf(w, "%d\t%d\t%d\t%.4f\t%.4f\n", i, j, k, c.Fraction(i, j, k), upper)
		}
	}
	return w.Flush()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func setupExperiment(cmd *cobra.Command) (*experiment.Experiment, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg, logrus.StandardLogger())
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return nil, err
	}
	return exp, nil
}

func metadata(exp *experiment.Experiment) storage.RunMetadata {
	cfg := exp.Config()
	return storage.RunMetadata{
		Name:        cfg.Name,
		Phase:       cfg.Phase.String(),
		Temperature: cfg.Ambient.Temperature,
		Pressure:    cfg.Ambient.Pressure,
		Density:     cfg.Density,
		Radii:       exp.Bins().Centers,
		Integrator:  cfg.Run.Integrator,
		Dt:          cfg.Run.Dt,
		Duration:    cfg.Run.Duration,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, err := setupExperiment(cmd)
	if err != nil {
		return err
	}

	st := openStore()
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s coagulation...\n", exp.Config().Phase)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(metadata(exp), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("volume drift: %.3e\n", result.InvariantDrift)
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}
	printMetrics(result)
	return nil
}

func printMetrics(result *dynamo.Result) {
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Fprintf(w, "  %s\t%.6g\n", name, result.Metrics[name])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, err := setupExperiment(cmd)
	if err != nil {
		return err
	}
	cfg := exp.Config()
	integ, err := experiment.NewRegistry().GetIntegrator(cfg.Run.Integrator)
	if err != nil {
		return err
	}

	title := cfg.Name
	if title == "" {
		title = cfg.Phase.String() + " coagulation"
	}
	m := tui.NewLive(title, exp.System(), integ, exp.Bins(), exp.InitialState(), cfg.Run.Dt, cfg.Run.Duration)
	final, err := tui.Run(m)
	if err != nil {
		return err
	}
	fmt.Printf("stopped at t = %.0f s, N = %.4g cm-3\n", final.Time(), final.State().Sum())
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := openStore().List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPHASE\tTIME\tT\tBINS\tDURATION\tDT\tINTEG\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fK\t%d\t%.0fs\t%.3gs\t%s\t%.2e\n",
			run.ID,
			run.Phase,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Temperature,
			len(run.Radii),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.InvariantDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := openStore()
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	first, last := states[0], states[len(states)-1]
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("phase: %s\n", meta.Phase)
	fmt.Printf("samples: %d over %.0f s\n\n", len(states), times[len(times)-1])

	plot := tui.CompareDistributions(meta.Radii,
		"log10 dN/dln r vs bin: initial (blue), final (red)", first, last)
	if plot == "" {
		return fmt.Errorf("run %s: states do not match its %d bins", meta.ID, len(meta.Radii))
	}
	fmt.Println(plot)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPHASE\tT\tBINS\tN\tRADIUS\tINTEG")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.0fK\t%d\t%.3g\t%.3gm\t%s\n",
			name, p.Phase, p.Ambient.Temperature, p.Bins.Count,
			p.Distribution.Number, p.Distribution.Radius, p.Run.Integrator)
	}
	return w.Flush()
}

func sweepTemperature(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	temps, err := temperatureRange(tMin, tMax, tSteps)
	if err != nil {
		return err
	}

	log := logrus.StandardLogger()
	summaries, err := experiment.SweepTemperature(cfg, temps, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T [K]\tMAX K\tMEAN K\tMAX BETA\tMEAN BETA")
	for _, s := range summaries {
		fmt.Fprintf(w, "%.1f\t%.3e\t%.3e\t%.3e\t%.3e\n", s.Temperature, s.MaxKernel, s.MeanKernel, s.MaxBeta, s.MeanBeta)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !sweepRun {
		return nil
	}

	cfgs := make([]*config.Config, len(temps))
	for i, t := range temps {
		cfgs[i] = cfg.Clone()
		cfgs[i].Ambient.Temperature = t
	}

	ctx, cancel := signalContext()
	defer cancel()
	exps, results, err := experiment.RunAll(ctx, cfgs, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	st := openStore()
	if err := st.Init(); err != nil {
		return err
	}
	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T [K]\tRUN ID\tFINAL N\tEFFECTIVE RADIUS\tDRIFT")
	for i, exp := range exps {
		id, err := st.Save(metadata(exp), results[i])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%.1f\t%s\t%.4g\t%.3g\t%.2e\n", temps[i], id,
			results[i].Metrics["total_number"], results[i].Metrics["effective_radius"], results[i].InvariantDrift)
	}
	return w.Flush()
}

func temperatureRange(lo, hi float64, n int) ([]float64, error) {
	if n < 1 || !(lo > 0) || hi < lo {
		return nil, fmt.Errorf("invalid temperature range [%g, %g] with %d steps", lo, hi, n)
	}
	if n == 1 {
		return []float64{lo}, nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
