package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/coagsim/internal/automation"
	"github.com/san-kum/coagsim/internal/experiment"
)

var (
	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	perturbation float64
	trials       int
	paramSteps   int
	seed         int64
)

func batchCommands() []*cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a scenario file and save the runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	paramCmd := &cobra.Command{
		Use:   "param-sweep",
		Short: "evolve the distribution over a range of one parameter",
		Args:  cobra.NoArgs,
		RunE:  runParamSweep,
	}
	addPopulationFlags(paramCmd)
	addRunFlags(paramCmd)
	paramCmd.Flags().StringVar(&sweepParam, "param", "number", "parameter to vary")
	paramCmd.Flags().Float64Var(&sweepMin, "min", 50, "first value")
	paramCmd.Flags().Float64Var(&sweepMax, "max", 500, "last value")
	paramCmd.Flags().IntVar(&paramSteps, "steps", 5, "number of values")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial distribution and summarise the spread",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addPopulationFlags(mcCmd)
	addRunFlags(mcCmd)
	mcCmd.Flags().Float64Var(&perturbation, "perturbation", 0.1, "relative perturbation of N and radius")
	mcCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	mcCmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 uses the clock")

	return []*cobra.Command{scenarioCmd, paramCmd, mcCmd}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := openStore()
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	results, runErr := automation.RunScenario(ctx, sc, experiment.NewRegistry(), logrus.StandardLogger())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tFINAL N\tEFFECTIVE RADIUS\tDRIFT")
	for i, r := range results {
		id, err := st.Save(metadata(r.Experiment), r.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%.4g\t%.3g\t%.2e\n", i+1, id,
			r.Result.Metrics["total_number"], r.Result.Metrics["effective_radius"], r.Result.InvariantDrift)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runParamSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	sweep := &automation.ParameterSweep{Base: cfg, Param: sweepParam, Min: sweepMin, Max: sweepMax, NumSteps: paramSteps}
	results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry(), logrus.StandardLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL N\tEFFECTIVE RADIUS\tDRIFT\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4g\t%.3g\t%.2e\n", r.ParamValue, r.Number, r.EffectiveRadius, r.Drift)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	mc := &automation.MonteCarloConfig{Base: cfg, Perturbation: perturbation, NumTrials: trials, Seed: seed}
	results, err := automation.RunMonteCarlo(ctx, mc, experiment.NewRegistry(), logrus.StandardLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tN0\tR0\tFINAL N\tEFFECTIVE RADIUS\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4g\t%.3g\t%.4g\t%.3g\t%v\n", r.TrialID, r.Number, r.Radius, r.FinalNumber, r.EffectiveRadius, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	return nil
}
