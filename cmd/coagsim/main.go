package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/coagsim/internal/aerosol"
	"github.com/san-kum/coagsim/internal/config"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	phase       string
	temperature float64
	pressure    float64
	density     float64
	dissipation float64
	rMin        float64
	rMax        float64
	binCount    int
	number      float64
	radius      float64
	sigma       float64
	integrator  string
	dt          float64
	duration    float64
	adaptive    bool
	rawKernel   bool

	dumpPath   string
	showMatrix int
	tMin       float64
	tMax       float64
	tSteps     int
	sweepRun   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "coagsim",
		Short:         "aerosol coagulation kernels and size distribution runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			logrus.SetLevel(logrus.WarnLevel)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".coagsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	kernelCmd := &cobra.Command{
		Use:   "kernel",
		Short: "build the coagulation kernel and summarise it",
		Args:  cobra.NoArgs,
		RunE:  showKernel,
	}
	addPopulationFlags(kernelCmd)
	kernelCmd.Flags().StringVar(&dumpPath, "dump", "", "write the kernel to this file")
	kernelCmd.Flags().IntVar(&showMatrix, "matrix", 0, "print the first n bins of the kernel and beta")

	efficiencyCmd := &cobra.Command{
		Use:   "efficiency [r1] [r2]",
		Short: "coalescence efficiency of two radii in metres",
		Args:  cobra.ExactArgs(2),
		RunE:  showEfficiency,
	}

	fractionsCmd := &cobra.Command{
		Use:   "fractions",
		Short: "print where every merged bin pair is redistributed",
		Args:  cobra.NoArgs,
		RunE:  showFractions,
	}
	addPopulationFlags(fractionsCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "evolve a size distribution and save the run",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addPopulationFlags(runCmd)
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "evolve a size distribution with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addPopulationFlags(liveCmd)
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot initial and final distribution of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			return openStore().ExportJSON(args[0], out)
		},
	}
	exportJSONCmd.Flags().String("out", "-", "output file, - for stdout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "build the kernel over a temperature range",
		Args:  cobra.NoArgs,
		RunE:  sweepTemperature,
	}
	addPopulationFlags(sweepCmd)
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&tMin, "t-min", 200, "lowest temperature [K]")
	sweepCmd.Flags().Float64Var(&tMax, "t-max", 260, "highest temperature [K]")
	sweepCmd.Flags().IntVar(&tSteps, "steps", 7, "number of temperatures")
	sweepCmd.Flags().BoolVar(&sweepRun, "run", false, "also evolve the distribution at every temperature")

	rootCmd.AddCommand(kernelCmd, efficiencyCmd, fractionsCmd, runCmd, liveCmd, listCmd, plotCmd, exportJSONCmd, presetsCmd, sweepCmd)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPopulationFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&phase, "phase", d.Phase.String(), "particle phase (liquid, ice, soot)")
	f.Float64Var(&temperature, "temperature", d.Ambient.Temperature, "temperature [K]")
	f.Float64Var(&pressure, "pressure", d.Ambient.Pressure, "pressure [Pa]")
	f.Float64Var(&density, "density", d.Density, "particle density [kg/m3]")
	f.Float64Var(&dissipation, "dissipation", 0, "turbulent dissipation rate [m2/s3], unset uses the default")
	f.Float64Var(&rMin, "r-min", d.Bins.RMin, "smallest bin radius [m]")
	f.Float64Var(&rMax, "r-max", d.Bins.RMax, "largest bin radius [m]")
	f.IntVar(&binCount, "bins", d.Bins.Count, "number of bins")
}

func addRunFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.Float64Var(&number, "number", d.Distribution.Number, "total number concentration [#/cm3]")
	f.Float64Var(&radius, "radius", d.Distribution.Radius, "median radius [m]")
	f.Float64Var(&sigma, "sigma", d.Distribution.Sigma, "geometric standard deviation")
	f.StringVar(&integrator, "integrator", d.Run.Integrator, "integrator")
	f.Float64Var(&dt, "dt", d.Run.Dt, "timestep [s]")
	f.Float64Var(&duration, "time", d.Run.Duration, "duration [s]")
	f.BoolVar(&adaptive, "adaptive", false, "adaptive timestep")
	f.BoolVar(&rawKernel, "ignore-efficiency", false, "evolve with the collision kernel instead of beta")
}

// resolveConfig layers the preset, the config file and explicitly set flags
// over the defaults, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	f := cmd.Flags()
	if f.Changed("phase") {
		p, err := aerosol.ParsePhase(phase)
		if err != nil {
			// the kernel builder reports unknown phases itself
			logrus.WithField("phase", phase).Debug("unrecognised phase flag")
		}
		cfg.Phase = p
	}
	set := func(name string, dst *float64, v float64) {
		if f.Changed(name) {
			*dst = v
		}
	}
	set("temperature", &cfg.Ambient.Temperature, temperature)
	set("pressure", &cfg.Ambient.Pressure, pressure)
	set("density", &cfg.Density, density)
	set("r-min", &cfg.Bins.RMin, rMin)
	set("r-max", &cfg.Bins.RMax, rMax)
	set("number", &cfg.Distribution.Number, number)
	set("radius", &cfg.Distribution.Radius, radius)
	set("sigma", &cfg.Distribution.Sigma, sigma)
	set("dt", &cfg.Run.Dt, dt)
	set("time", &cfg.Run.Duration, duration)
	if f.Changed("dissipation") {
		eps := dissipation
		cfg.Ambient.Dissipation = &eps
	}
	if f.Changed("bins") {
		cfg.Bins.Count = binCount
	}
	if f.Changed("integrator") {
		cfg.Run.Integrator = integrator
	}
	if f.Changed("adaptive") {
		cfg.Run.Adaptive = adaptive
	}
	if f.Changed("ignore-efficiency") {
		cfg.Run.IgnoreEfficiency = rawKernel
	}
	return cfg, cfg.Validate()
}
