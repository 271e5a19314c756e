package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/plant"
)

var (
	dataDir string
	envFile string
	verbose bool
	logger  = zap.NewNop()

	dt        float64
	steps     int
	origin    float64
	tolerance float64
	kp        float64
	ki        float64
	kd        float64
	target    float64
	initState float64
	divisor   float64
	alpha     float64
	mass      float64
	damping   float64
	stiffness float64
	substep   float64

	integrator string

	configFile string
	preset     string

	plotHeight int
	plotWidth  int
	noSave     bool
	showPlot   bool

	kpRange string
	kiRange string
	kdRange string
	metric  string

	interval time.Duration
	addr     string

	svgOut    string
	svgWidth  int
	svgHeight int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pidsim",
		Short:        "pid controller lab",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			if !cmd.Flags().Changed("data") {
				dataDir = config.DataDir(dataDir)
			}

			l, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger = l
			atexit.Register(func() { _ = logger.Sync() })
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with PIDSIM_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [plant]",
		Short: "run a closed loop and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLoop,
	}
	addLoopFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot error and correction after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	runCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	runCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "oscillation analysis of the error signal",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export error and correction of a run as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "chart width in pixels")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "chart height in pixels")

	compareCmd := &cobra.Command{
		Use:   "compare [preset...]",
		Short: "run presets concurrently and compare their metrics",
		RunE:  comparePresets,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [plant]",
		Short: "grid search gains for a plant",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneGains,
	}
	addLoopFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&kpRange, "kp-range", "0.2,2,10", "kp search range lo,hi,n")
	tuneCmd.Flags().StringVar(&kiRange, "ki-range", "0,1,5", "ki search range lo,hi,n")
	tuneCmd.Flags().StringVar(&kdRange, "kd-range", "0,0.5,5", "kd search range lo,hi,n")
	tuneCmd.Flags().StringVar(&metric, "metric", "iae", "metric to minimize")

	liveCmd := &cobra.Command{
		Use:   "live [plant]",
		Short: "run a closed loop with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addLoopFlags(liveCmd)
	liveCmd.Flags().DurationVar(&interval, "interval", 50*time.Millisecond, "wall time between steps")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "host controllers over HTTP",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-12s plant=%s steps=%d dt=%g kp=%g ki=%g kd=%g\n",
					name, p.Plant, p.Steps, p.Dt, p.Gains.Kp, p.Gains.Ki, p.Gains.Kd)
			}
			return nil
		},
	}

	plantsCmd := &cobra.Command{
		Use:   "plants",
		Short: "list available plants",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range plant.Names() {
				fmt.Printf("  %s\n", name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportSVGCmd,
		compareCmd, tuneCmd, liveCmd, serveCmd, presetsCmd, plantsCmd)
	return rootCmd
}

func addLoopFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time between updates")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of updates")
	cmd.Flags().Float64Var(&origin, "origin", 0, "controller origin timestamp")
	cmd.Flags().Float64Var(&tolerance, "tolerance", config.DefaultTolerance, "settling tolerance")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "proportional gain")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "integral gain")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "derivative gain")
	cmd.Flags().Float64Var(&target, "target", config.DefaultTarget, "plant target")
	cmd.Flags().Float64Var(&initState, "state", 0, "initial plant state")
	cmd.Flags().Float64Var(&divisor, "divisor", plant.DefaultDivisor, "response divisor (damped)")
	cmd.Flags().Float64Var(&alpha, "alpha", plant.DefaultAlpha, "response fraction (lag)")
	cmd.Flags().Float64Var(&mass, "mass", plant.DefaultMass, "mass (spring)")
	cmd.Flags().Float64Var(&damping, "damping", plant.DefaultDamping, "damping coefficient (spring)")
	cmd.Flags().Float64Var(&stiffness, "stiffness", plant.DefaultStiffness, "spring constant (spring)")
	cmd.Flags().Float64Var(&substep, "substep", plant.DefaultSubstep, "integration step in seconds (spring)")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integration scheme (spring): euler, rk4")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}

func newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
