package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/pistonsim/internal/analysis"
	"github.com/san-kum/pistonsim/internal/automation"
	"github.com/san-kum/pistonsim/internal/config"
	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/experiment"
	"github.com/san-kum/pistonsim/internal/export"
	"github.com/san-kum/pistonsim/internal/launcher"
	"github.com/san-kum/pistonsim/internal/optim"
	"github.com/san-kum/pistonsim/internal/storage"
	"github.com/san-kum/pistonsim/internal/viz"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	tolerance  float64
	integrator string
	configFile string
	preset     string
	noSave     bool
	// Gun geometry and loads
	springRate float64
	pistonMass float64
	pelletMass float64
	pistonDia  float64
	barrelDia  float64
	cavityPSI  float64
	travel     float64
	barrelLen  float64
	preload    float64
	// Sweep and spread studies
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	trials     int
	seed       int64
	jitter     float64
	// Tuning
	targetVel float64
	gridSize  int
	// SVG export
	svgSeries string
	svgOut    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pistonsim",
		Short: "spring-piston launcher internal ballistics simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pistonsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a launch",
		RunE:  runLaunch,
	}
	addGunFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip writing the run directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in gun presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSPRING\tPISTON\tPELLET\tBARREL\tCAVITY")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.0f N/m\t%.1f g\t%.2f g\t%.1f cm\t%.0f psig\n",
					name,
					p.Gun.SpringRate,
					p.Gun.PistonMass*1000,
					p.Gun.ProjectileMass*1000,
					p.Gun.BarrelLength*100,
					p.Gun.CavityPressure,
				)
			}
			return w.Flush()
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same launch",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addGunFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the launch in slow motion",
		RunE:  runLive,
	}
	addGunFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one gun parameter across a range",
		RunE:  runSweep,
	}
	addGunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "spring_rate", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 400, "sweep range minimum")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1400, "sweep range maximum")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 11, "number of sweep points")

	spreadCmd := &cobra.Command{
		Use:   "spread",
		Short: "shot-to-shot spread under component tolerances",
		RunE:  runSpread,
	}
	addGunFlags(spreadCmd)
	spreadCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	spreadCmd.Flags().Int64Var(&seed, "seed", 1, "jitter seed")
	spreadCmd.Flags().Float64Var(&jitter, "jitter", 0.02, "relative spring/pellet tolerance")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "search spring rate and preload for a target muzzle velocity",
		RunE:  runTune,
	}
	addGunFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&targetVel, "target", 120, "target muzzle velocity [m/s]")
	tuneCmd.Flags().IntVar(&gridSize, "grid", 9, "grid points per parameter")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run series as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgSeries, "series", "pressure", "series to plot (pressure, velocity, piston)")
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, compareCmd, liveCmd, sweepCmd, spreadCmd, tuneCmd, exportSVGCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addGunFlags(cmd *cobra.Command) {
	spec := launcher.DefaultSpec()
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "output sample interval [s]")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration [s]")
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive error tolerance")
	cmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator (euler, rk4, rk45)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in gun preset")
	cmd.Flags().Float64Var(&springRate, "spring", spec.SpringRate, "spring rate [N/m]")
	cmd.Flags().Float64Var(&pistonMass, "piston-mass", spec.PistonMass, "piston mass [kg]")
	cmd.Flags().Float64Var(&pelletMass, "pellet-mass", spec.ProjectileMass, "projectile mass [kg]")
	cmd.Flags().Float64Var(&pistonDia, "piston-dia", spec.PistonDiameter, "piston diameter [mm]")
	cmd.Flags().Float64Var(&barrelDia, "barrel-dia", spec.BarrelDiameter, "bore diameter [mm]")
	cmd.Flags().Float64Var(&cavityPSI, "pressure", spec.CavityPressure, "initial cavity pressure [psig]")
	cmd.Flags().Float64Var(&travel, "travel", spec.PistonTravel, "piston travel [m]")
	cmd.Flags().Float64Var(&barrelLen, "barrel", spec.BarrelLength, "barrel length [m]")
	cmd.Flags().Float64Var(&preload, "preload", spec.SpringPreload, "spring preload [m]")
}

// buildConfig layers preset, config file, and flags: the preset seeds the
// config, the file overrides the preset, and explicitly set flags override
// both.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		copied := *p
		cfg = &copied
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flagOverrides := map[string]func(){
		"dt":          func() { cfg.Dt = dt },
		"time":        func() { cfg.Duration = duration },
		"tol":         func() { cfg.Tolerance = tolerance },
		"integrator":  func() { cfg.Integrator = integrator },
		"spring":      func() { cfg.Gun.SpringRate = springRate },
		"piston-mass": func() { cfg.Gun.PistonMass = pistonMass },
		"pellet-mass": func() { cfg.Gun.ProjectileMass = pelletMass },
		"piston-dia":  func() { cfg.Gun.PistonDiameter = pistonDia },
		"barrel-dia":  func() { cfg.Gun.BarrelDiameter = barrelDia },
		"pressure":    func() { cfg.Gun.CavityPressure = cavityPSI },
		"travel":      func() { cfg.Gun.PistonTravel = travel },
		"barrel":      func() { cfg.Gun.BarrelLength = barrelLen },
		"preload":     func() { cfg.Gun.SpringPreload = preload },
	}
	for name, apply := range flagOverrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	return cfg, nil
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	fmt.Println("running launch simulation...")
	start := time.Now()

	outcome, err := exp.Run(context.Background())
	if err != nil {
		var volErr *launcher.VolumeError
		if errors.As(err, &volErr) {
			return fmt.Errorf("non-physical state reached: %w", err)
		}
		return err
	}

	elapsed := time.Since(start)
	fmt.Printf("completed in %v (%d accepted steps, %d samples)\n",
		elapsed, outcome.Result.StepsTaken, len(outcome.Result.Times))

	printSummary(outcome.Summary)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, outcome.Result, analysis.KPa(outcome.Pressures))
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}

	return nil
}

func printSummary(s analysis.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w)
	if s.Exited {
		fmt.Fprintf(w, "muzzle velocity\t%.2f m/s\n", s.MuzzleVelocity)
		fmt.Fprintf(w, "muzzle energy\t%.2f J\n", s.MuzzleEnergy)
		fmt.Fprintf(w, "bore exit\t%.3f ms\n", s.ExitTime*1000)
	} else {
		fmt.Fprintf(w, "pellet still in bore\tv=%.2f m/s\n", s.MuzzleVelocity)
	}
	if s.Latched {
		fmt.Fprintf(w, "piston slam\t%.3f ms at %.2f m/s\n", s.SlamTime*1000, s.SlamSpeed)
	} else {
		fmt.Fprintf(w, "piston\tstill free\n")
	}
	fmt.Fprintf(w, "peak pressure\t%.1f kPa (%.1f psi) at %.3f ms\n",
		launcher.PaToKPa(s.PeakPressure), launcher.PaToPSI(s.PeakPressure), s.PeakTime*1000)
	w.Flush()
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

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tINTEG\tSPRING\tPELLET")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.1fms\t%.0fµs\t%s\t%.0f N/m\t%.2f g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration*1000,
			run.Dt*1e6,
			run.Integrator,
			run.Gun.SpringRate,
			run.Gun.ProjectileMass*1000,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	times, states, pressures, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d over %.1f ms\n\n", len(states), times[len(times)-1]*1000)

	series := []struct {
		caption string
		extract func(i int) float64
	}{
		{"piston position (mm)", func(i int) float64 { return states[i][launcher.PistonPos] * 1000 }},
		{"piston velocity (m/s)", func(i int) float64 { return states[i][launcher.PistonVel] }},
		{"pellet position (mm)", func(i int) float64 { return states[i][launcher.ProjPos] * 1000 }},
		{"pellet velocity (m/s)", func(i int) float64 { return states[i][launcher.ProjVel] }},
		{"gauge pressure (kPa)", func(i int) float64 { return pressures[i] }},
	}

	for _, s := range series {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = s.extract(i)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	times, states, pressures, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "piston_pos", "piston_vel", "proj_pos", "proj_vel", "pressure_kpa"}); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		row = append(row, strconv.FormatFloat(pressures[i], 'f', 6, 64))
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	times, states, pressures, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, times, states, pressures)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators (dt=%.0fµs, duration=%.1fms)\n\n", cfg.Dt*1e6, cfg.Duration*1000)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tMUZZLE\tEXIT\tSLAM\tPEAK\tSTEPS\tTIME")

	for _, name := range args {
		runCfg := *cfg
		runCfg.Integrator = name

		exp, err := experiment.New(&runCfg)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		start := time.Now()
		outcome, err := exp.Run(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		s := outcome.Summary
		exit := "-"
		if s.Exited {
			exit = fmt.Sprintf("%.3fms", s.ExitTime*1000)
		}
		slam := "-"
		if s.Latched {
			slam = fmt.Sprintf("%.3fms", s.SlamTime*1000)
		}
		fmt.Fprintf(w, "%s\t%.2f m/s\t%s\t%s\t%.0f kPa\t%d\t%v\n",
			name, s.MuzzleVelocity, exit, slam,
			launcher.PaToKPa(s.PeakPressure), outcome.Result.StepsTaken, elapsed)
	}

	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	points, err := automation.RunSweep(context.Background(), cfg, automation.Sweep{
		Param: sweepParam,
		Min:   sweepMin,
		Max:   sweepMax,
		Steps: sweepSteps,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMUZZLE\tENERGY\tEXIT\tPEAK\n", sweepParam)
	for _, pt := range points {
		exit := "-"
		if pt.Summary.Exited {
			exit = fmt.Sprintf("%.3fms", pt.Summary.ExitTime*1000)
		}
		fmt.Fprintf(w, "%.4g\t%.2f m/s\t%.2f J\t%s\t%.0f kPa\n",
			pt.Value, pt.Summary.MuzzleVelocity, pt.Summary.MuzzleEnergy,
			exit, launcher.PaToKPa(pt.Summary.PeakPressure))
	}
	return w.Flush()
}

func runSpread(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	stats, err := automation.RunSpread(context.Background(), cfg, automation.SpreadConfig{
		Trials:          trials,
		Seed:            seed,
		SpringTolerance: jitter,
		PelletTolerance: jitter,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d trials, ±%.1f%% spring and pellet tolerance\n\n", trials, jitter*100)
	fmt.Printf("mean muzzle velocity: %.2f m/s\n", stats.Mean)
	fmt.Printf("std deviation:        %.2f m/s\n", stats.StdDev)
	fmt.Printf("extreme spread:       %.2f - %.2f m/s\n", stats.Slowest, stats.Fastest)
	if stats.Flyers > 0 {
		fmt.Printf("failed to clear bore: %d\n", stats.Flyers)
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	search := optim.NewGridSearch(
		[]string{"spring_rate", "spring_preload"},
		[][]float64{
			optim.Range(cfg.Gun.SpringRate*0.5, cfg.Gun.SpringRate*2.0, gridSize),
			optim.Range(cfg.Gun.SpringPreload*0.5, cfg.Gun.SpringPreload*1.5, gridSize),
		},
	)

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		c := *cfg
		c.Gun.SpringRate = params["spring_rate"]
		c.Gun.SpringPreload = params["spring_preload"]
		return experiment.New(&c)
	}

	fmt.Printf("searching %dx%d grid for %.1f m/s...\n", gridSize, gridSize, targetVel)
	best, score, err := search.Search(context.Background(), build, optim.TargetVelocity(targetVel))
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no grid point produced a clean shot")
	}

	fmt.Printf("\nbest: spring_rate=%.1f N/m, spring_preload=%.4f m (off target by %.2f m/s)\n",
		best["spring_rate"], best["spring_preload"], score)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	times, states, pressures, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if len(times) < 2 {
		return fmt.Errorf("no data to plot")
	}

	values := make([]float64, len(times))
	var caption string
	switch svgSeries {
	case "pressure":
		copy(values, pressures)
		caption = "gauge pressure (kPa)"
	case "velocity":
		for i := range states {
			values[i] = states[i][launcher.ProjVel]
		}
		caption = "pellet velocity (m/s)"
	case "piston":
		for i := range states {
			values[i] = states[i][launcher.PistonPos] * 1000
		}
		caption = "piston position (mm)"
	default:
		return fmt.Errorf("unknown series %q (pressure, velocity, piston)", svgSeries)
	}

	svg := export.SeriesToSVG(times, values, 800, 400, "#00ff00", caption)
	if svgOut == "" {
		fmt.Println(svg)
		return nil
	}
	return os.WriteFile(svgOut, []byte(svg), 0644)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(exp.Launcher, exp.Integ, dynamo.State(cfg.GetInitState()), cfg.Dt)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
