package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nexpath/thermsim/internal/config"
	"github.com/nexpath/thermsim/internal/slicer"
	"github.com/nexpath/thermsim/internal/storage"
	"github.com/nexpath/thermsim/internal/thermal"
	"github.com/nexpath/thermsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile string
	material   string
	resolution float64
	timeStep   float64

	dimX, dimY, dimZ float64
	layerHeight      float64
	modelHeight      float64
	shape            string

	numSteps     int
	depositEvery int
	workers      int
	force        bool
	runName      string

	frameRate     int
	stepsPerFrame int

	plotHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "thermsim",
		Short: "thermal process simulator for layer-based additive manufacturing",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".thermsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the report",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "part", "run name prefix")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "check configuration stability for the explicit scheme",
		RunE:  checkStability,
	}
	checkCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	checkCmd.Flags().StringVar(&material, "material", "", "material preset")
	checkCmd.Flags().Float64Var(&resolution, "resolution", config.DefaultResolution, "grid resolution (mm)")
	checkCmd.Flags().Float64Var(&timeStep, "dt", config.DefaultTimeStep, "time step (s)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's temperature trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "graph height")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with a live terminal view",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 5, "simulation steps per frame")

	rootCmd.AddCommand(runCmd, checkCmd, listCmd, plotCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&material, "material", "", "material preset (pla, abs, petg, cf-abs)")
	cmd.Flags().Float64Var(&resolution, "resolution", config.DefaultResolution, "grid resolution (mm)")
	cmd.Flags().Float64Var(&timeStep, "dt", config.DefaultTimeStep, "time step (s)")
	cmd.Flags().Float64Var(&dimX, "dim-x", 100.0, "build volume x (mm)")
	cmd.Flags().Float64Var(&dimY, "dim-y", 100.0, "build volume y (mm)")
	cmd.Flags().Float64Var(&dimZ, "dim-z", 50.0, "build volume z (mm)")
	cmd.Flags().Float64Var(&layerHeight, "layer-height", 1.0, "layer height (mm)")
	cmd.Flags().Float64Var(&modelHeight, "model-height", 20.0, "part height (mm)")
	cmd.Flags().StringVar(&shape, "shape", "disc", "layer footprint shape (disc, full)")
	cmd.Flags().IntVar(&numSteps, "steps", 500, "number of time steps")
	cmd.Flags().IntVar(&depositEvery, "deposit-every", 10, "steps between layer depositions")
	cmd.Flags().IntVar(&workers, "workers", 1, "stepper worker goroutines")
	cmd.Flags().BoolVar(&force, "force", false, "run even if the configuration is unstable")
}

// buildConfig layers defaults, config file, material preset, and flag
// overrides, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if material != "" {
		m, ok := config.GetMaterial(material)
		if !ok {
			return nil, fmt.Errorf("unknown material %q (available: %v)", material, config.ListMaterials())
		}
		cfg.Material = m
	}
	if cmd.Flags().Changed("resolution") {
		cfg.Resolution = resolution
	}
	if cmd.Flags().Changed("dt") {
		cfg.TimeStep = timeStep
	}
	return cfg, nil
}

// buildSimulator constructs the simulator, initializes the grid, and
// computes the layer plan.
func buildSimulator(cmd *cobra.Command) (*thermal.Simulator, []slicer.Layer, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	if err := thermal.CheckStability(*cfg); err != nil {
		if !force {
			return nil, nil, fmt.Errorf("%w (use --force to run anyway)", err)
		}
		logrus.Warnf("proceeding with unstable configuration: %v", err)
	}

	sim, err := thermal.New(*cfg)
	if err != nil {
		return nil, nil, err
	}
	sim.SetWorkers(workers)

	if err := sim.InitGrid(dimX, dimY, dimZ); err != nil {
		return nil, nil, err
	}
	g := sim.Grid()
	logrus.WithFields(logrus.Fields{
		"nx": g.NX, "ny": g.NY, "nz": g.NZ,
	}).Info("grid initialized")

	params := slicer.Params{
		LayerHeight: layerHeight,
		ModelHeight: modelHeight,
		Shape:       slicer.Shape(shape),
	}
	layers, err := slicer.Plan(params, g.NX, g.NY, g.NZ, cfg.Resolution)
	if err != nil {
		return nil, nil, err
	}
	logrus.WithField("layers", len(layers)).Info("layer plan computed")
	return sim, layers, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	sim, layers, err := buildSimulator(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Deposit layers at print cadence, then let the part cool for the
	// remaining steps.
	if depositEvery < 1 {
		depositEvery = 1
	}
	stepsLeft := numSteps
	for _, layer := range layers {
		if err := sim.DepositLayer(layer.Footprint, layer.Z); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"z": layer.Z, "cells": layer.Footprint.Count()}).Debug("layer deposited")

		n := depositEvery
		if n > stepsLeft {
			n = stepsLeft
		}
		if _, err := sim.Run(ctx, n); err != nil {
			return err
		}
		stepsLeft -= n
	}

	report, err := sim.Run(ctx, stepsLeft)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"steps": report.NumSteps,
		"time":  fmt.Sprintf("%.2fs", report.SimulationTime),
	}).Info("simulation complete")

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(runName, report)
	if err != nil {
		return err
	}
	logrus.WithField("run", runID).Info("report saved")

	printSummary(report)
	return nil
}

func printSummary(report *thermal.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "simulation time\t%.2f s\n", report.SimulationTime)
	fmt.Fprintf(w, "steps\t%d\n", report.NumSteps)
	fmt.Fprintf(w, "final max\t%.2f °C\n", report.TemperatureStats.FinalMax)
	fmt.Fprintf(w, "final min\t%.2f °C\n", report.TemperatureStats.FinalMin)
	fmt.Fprintf(w, "final avg\t%.2f °C\n", report.TemperatureStats.FinalAvg)
	fmt.Fprintf(w, "max cooling rate\t%.2f °C/s\n", report.CoolingStats.MaxCoolingRate)
	fmt.Fprintf(w, "avg cooling rate\t%.2f °C/s\n", report.CoolingStats.AvgCoolingRate)
	w.Flush()

	if len(report.PotentialIssues) == 0 {
		fmt.Println("no issues flagged")
		return
	}
	for _, issue := range report.PotentialIssues {
		fmt.Printf("issue: %s (value %.2f, threshold %.2f)\n", issue.Type, issue.Value, issue.Threshold)
	}
}

func checkStability(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	n := thermal.StabilityNumber(*cfg)
	fmt.Printf("diffusivity      %.6g\n", cfg.Diffusivity())
	fmt.Printf("stability number %.4f (limit %.4f)\n", n, thermal.StabilityLimit)

	if err := thermal.CheckStability(*cfg); err != nil {
		fmt.Println("verdict: UNSTABLE (reduce the time step or coarsen the grid)")
		return err
	}
	fmt.Println("verdict: stable")
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tFINAL MAX\tISSUES")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%.2fs\t%d\t%.1f°C\t%d\n", r.ID, r.SimulationTime, r.NumSteps, r.FinalMax, r.Issues)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	report, err := st.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Print(viz.PlotHistory(report.History, plotHeight))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sim, layers, err := buildSimulator(cmd)
	if err != nil {
		return err
	}

	// The live view steps interactively; deposit the whole part up
	// front and watch it cool.
	for _, layer := range layers {
		if err := sim.DepositLayer(layer.Footprint, layer.Z); err != nil {
			return err
		}
	}
	return viz.Run(sim, numSteps, stepsPerFrame, frameRate)
}
