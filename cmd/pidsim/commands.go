package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/analysis"
	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/experiment"
	"github.com/san-kum/pidsim/internal/export"
	"github.com/san-kum/pidsim/internal/optim"
	"github.com/san-kum/pidsim/internal/pid"
	"github.com/san-kum/pidsim/internal/plant"
	"github.com/san-kum/pidsim/internal/server"
	"github.com/san-kum/pidsim/internal/storage"
	"github.com/san-kum/pidsim/internal/tui"
	"github.com/san-kum/pidsim/internal/viz"
)

// resolveConfig layers defaults, preset, config file, environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Plant = args[0]
	}

	flags := cmd.Flags()
	floats := []struct {
		name string
		src  float64
		dst  *float64
	}{
		{"dt", dt, &cfg.Dt},
		{"origin", origin, &cfg.Origin},
		{"tolerance", tolerance, &cfg.Tolerance},
		{"kp", kp, &cfg.Gains.Kp},
		{"ki", ki, &cfg.Gains.Ki},
		{"kd", kd, &cfg.Gains.Kd},
		{"target", target, &cfg.Init.Target},
		{"state", initState, &cfg.Init.State},
		{"divisor", divisor, &cfg.Init.Divisor},
		{"alpha", alpha, &cfg.Init.Alpha},
		{"mass", mass, &cfg.Init.Mass},
		{"damping", damping, &cfg.Init.Damping},
		{"stiffness", stiffness, &cfg.Init.Stiffness},
		{"substep", substep, &cfg.Init.Substep},
	}
	for _, f := range floats {
		if flags.Changed(f.name) {
			*f.dst = f.src
		}
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("integrator") {
		cfg.Init.Integrator = integrator
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Printf("running %s loop (kp=%g ki=%g kd=%g)...\n", cfg.Plant, cfg.Gains.Kp, cfg.Gains.Ki, cfg.Gains.Kd)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("final state: %.6g (target %.6g)\n", exp.Plant().State(), exp.Plant().Target())

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.MetadataFor(cfg)
		meta.Preset = preset
		runID, err := st.Save(meta, result, exp.Terms())
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	fmt.Println(viz.MetricsTable(result.Metrics))

	if showPlot {
		fmt.Println()
		fmt.Println(viz.PlotResult(result.Samples, plotHeight, plotWidth))
	}

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

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLANT\tTIME\tSTEPS\tDT\tKP\tKI\tKD\tFINAL ERR")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\t%g\t%g\t%.3g\n",
			run.ID,
			run.Plant,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Gains.Kp,
			run.Gains.Ki,
			run.Gains.Kd,
			run.Metrics["final_error"],
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

	samples, terms, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("plant: %s\n", meta.Plant)
	fmt.Printf("samples: %d\n\n", len(samples))

	fmt.Println(viz.PlotResult(samples, plotHeight, plotWidth))
	fmt.Println()

	integral := make([]float64, len(terms))
	for i, t := range terms {
		integral[i] = t.Integral
	}
	fmt.Println(viz.PlotSeries(integral, "integral accumulator", plotHeight, plotWidth))

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, _, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) < 2 {
		return fmt.Errorf("not enough samples to analyze")
	}

	errs := make([]float64, len(samples))
	for i, s := range samples {
		errs[i] = s.Error
	}

	fmt.Printf("oscillation analysis: %s\n", meta.ID)
	fmt.Printf("plant: %s\n\n", meta.Plant)

	ps := analysis.Spectrum(errs)
	if len(ps) >= 8 {
		ps = ps[:len(ps)/4]
	}
	fmt.Println(viz.PlotSeries(ps, "power spectrum (error)", 15, 80))
	fmt.Println()

	fmt.Printf("target crossings: %d\n", analysis.ZeroCrossings(errs))
	freq := analysis.DominantFrequency(errs, meta.Dt)
	fmt.Printf("dominant frequency: %.4g per time unit\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4g time units\n", 1.0/freq)
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, _, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	times := make([]float64, len(samples))
	errs := make([]float64, len(samples))
	corrections := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Time
		errs[i] = s.Error
		corrections[i] = s.Correction
	}

	svg := export.TimeSeriesSVG(times, []export.Series{
		{Name: "error", Values: errs},
		{Name: "correction", Values: corrections},
	}, svgWidth, svgHeight)
	if svg == "" {
		return fmt.Errorf("not enough samples to chart")
	}

	if svgOut == "" {
		_, err = fmt.Fprintln(os.Stdout, svg)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func comparePresets(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}

	ens := experiment.NewEnsemble(logger)
	for _, name := range names {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		ens.Add(name, cfg)
	}

	outcomes, err := ens.Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPLANT\tSTEPS\tFINAL ERROR\tIAE\tOVERSHOOT\tSETTLING")
	for _, o := range outcomes {
		m := o.Result.Metrics
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3g\t%.4g\t%.4g\t%g\n",
			o.Name, o.Config.Plant, o.Result.StepsTaken,
			m["final_error"], m["iae"], m["overshoot"], m["settling_step"])
	}
	return w.Flush()
}

func parseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("range %q: want lo,hi,n", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", s, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("range %q: n must be a positive integer", s)
	}
	return optim.Linspace(lo, hi, n), nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ranges := make([][]float64, 0, 3)
	for _, r := range []string{kpRange, kiRange, kdRange} {
		vals, err := parseRange(r)
		if err != nil {
			return err
		}
		ranges = append(ranges, vals)
	}

	g, err := optim.NewGridSearch([]string{"kp", "ki", "kd"}, ranges)
	if err != nil {
		return err
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		cfg.Gains = pid.Gains{Kp: params["kp"], Ki: params["ki"], Kd: params["kd"]}
		return experiment.New(&cfg, nil)
	}

	total := len(ranges[0]) * len(ranges[1]) * len(ranges[2])
	fmt.Printf("searching %d gain combinations on %s (minimizing %s)...\n", total, base.Plant, metric)
	logger.Debug("tuning", zap.String("plant", base.Plant), zap.Int("candidates", total))

	best, score, err := g.Search(cmd.Context(), build, metric)
	if err != nil {
		return err
	}

	fmt.Printf("best: kp=%g ki=%g kd=%g  %s=%.6g\n", best["kp"], best["ki"], best["kd"], metric, score)

	exp, err := build(best)
	if err != nil {
		return err
	}
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println("\nmetrics:")
	fmt.Println(viz.MetricsTable(result.Metrics))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	p, err := plant.ByName(cfg.Plant, cfg.PlantParams())
	if err != nil {
		return err
	}
	ctrl := pid.NewWithGains(cfg.Gains, pid.WithOrigin(cfg.Origin))

	m := tui.NewModel(cfg.Plant, ctrl, p, cfg.Loop(), interval)
	return tui.Run(m)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := newHTTPServer(server.New(server.WithLogger(logger)))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
