// Package main provides the CLI entrypoint for fitts.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/verte-zerg/fitts/internal/config"
	"github.com/verte-zerg/fitts/internal/experiment"
	"github.com/verte-zerg/fitts/internal/geometry"
	"github.com/verte-zerg/fitts/internal/latency"
	"github.com/verte-zerg/fitts/internal/logging"
	"github.com/verte-zerg/fitts/internal/model"
	"github.com/verte-zerg/fitts/internal/session"
	"github.com/verte-zerg/fitts/internal/simulate"
	"github.com/verte-zerg/fitts/internal/stats"
	"github.com/verte-zerg/fitts/internal/statsui"
	"github.com/verte-zerg/fitts/internal/tui"
)

const (
	defaultConfigFile  = "config.csv"
	defaultLogsDir     = "logs"
	defaultLatencyMode = "queue"
	defaultOnExists    = "ask"
	defaultCurveWindow = 10
	defaultLogLevel    = "info"
	canvasWidth        = 700
	canvasHeight       = 700
	plainPlotHeight    = 10
)

// errReported marks errors already printed to stderr.
var errReported = errors.New("reported")

var (
	configFile  string
	logsDir     string
	targets     int
	latencyMode string
	onExists    string
	logLevel    string

	simSeed    int64
	simA       float64
	simB       float64
	simNoise   float64
	simSpread  float64
	simLatency bool

	statsParticipant string
	statsDevice      string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	templateForce bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			logErrf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fitts",
		Short: "Fitts's law pointing experiment",
		Long: `Run a Fitts's law pointing experiment in the terminal.

The experiment is described by a CSV file with the columns
id, repetitions, radii, distances, latency and optionally device and trials.
radii and distances are space-separated lists of equal length; latency is in seconds.
Click the start circle to begin, or toggle simulated latency first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runExperimentCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", defaultConfigFile, "experiment config CSV")
	flags.StringVar(&logsDir, "logs-dir", defaultLogsDir, "directory for result logs")
	flags.IntVar(&targets, "targets", experiment.DefaultTargets, "targets on the ring")
	flags.StringVar(&latencyMode, "latency-mode", defaultLatencyMode, "latency simulation (queue|offset)")
	flags.StringVar(&onExists, "on-exists", defaultOnExists, "existing log handling (ask|suffix|skip|overwrite)")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "diagnostic log level")

	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTemplateCmd())

	return rootCmd
}

func loadSettings(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	exp := fileCfg.Experiment
	applyStringConfig(cmd, "config", &configFile, exp.Config)
	applyStringConfig(cmd, "logs-dir", &logsDir, exp.LogsDir)
	applyIntConfig(cmd, "targets", &targets, exp.Targets)
	applyStringConfig(cmd, "latency-mode", &latencyMode, exp.LatencyMode)
	applyStringConfig(cmd, "on-exists", &onExists, exp.OnExists)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Logging.Level)
	return fileCfg, nil
}

func newLogger(fileCfg config.FileConfig, console zapcore.WriteSyncer) (*zap.Logger, func(), error) {
	opts := logging.Options{
		Level: logLevel,
		File:  config.DefaultLogPath(),
	}
	if fileCfg.Logging.File != nil {
		opts.File = *fileCfg.Logging.File
	}
	if fileCfg.Logging.MaxSizeMB != nil {
		opts.MaxSizeMB = *fileCfg.Logging.MaxSizeMB
	}
	if fileCfg.Logging.MaxBackups != nil {
		opts.MaxBackups = *fileCfg.Logging.MaxBackups
	}
	if console != nil {
		opts.Console = console
	}
	logger, closeLogger, err := logging.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log: %w", err)
	}
	return logger, closeLogger, nil
}

func loadExperiment() (model.Config, latency.Mode, error) {
	cfg, err := config.LoadExperiment(configFile)
	if errors.Is(err, config.ErrShapeMismatch) {
		logErrln("[Not enough values]:")
		logErrln("radii and distances must have the same amount of values!")
		return model.Config{}, 0, errReported
	}
	if err != nil {
		return model.Config{}, 0, err
	}
	if targets < 1 {
		return model.Config{}, 0, fmt.Errorf("--targets must be > 0")
	}
	cfg.Targets = targets
	mode, err := latency.ParseMode(latencyMode)
	if err != nil {
		return model.Config{}, 0, err
	}
	return cfg, mode, nil
}

func runExperimentCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	resolver, err := newResolver(onExists, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	cfg, mode, err := loadExperiment()
	if err != nil {
		return err
	}
	logger, closeLogger, err := newLogger(fileCfg, nil)
	if err != nil {
		return err
	}
	defer closeLogger()

	center := geometry.Point{X: canvasWidth / 2, Y: canvasHeight / 2}
	exp, err := experiment.New(cfg, center, logger)
	if err != nil {
		return err
	}
	app := experiment.NewApp(exp,
		experiment.NewStartScreen(canvasWidth, canvasHeight),
		latency.NewCursor(cfg.Latency, mode),
		logger)

	program := tea.NewProgram(tui.NewModel(app, canvasWidth, canvasHeight, logger),
		tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if exp.State() != experiment.StateFinished {
		logErrln("Experiment aborted; no data saved.")
		return nil
	}
	return saveResults(exp, resolver, logger, os.Stdout)
}

func saveResults(exp *experiment.Experiment, resolver session.Resolver, logger *zap.Logger, out io.Writer) error {
	cfg := exp.Config()
	writer := &session.Writer{Dir: logsDir, Resolver: resolver, Logger: logger}
	path, err := writer.Write(exp.Table(), cfg.ParticipantID, cfg.Device, exp.LatencyEnabled())
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	if path == "" {
		_, err = fmt.Fprintln(out, "Results not saved.")
	} else {
		_, err = fmt.Fprintf(out, "Results saved to %s\n", path)
	}
	return err
}

// newResolver maps --on-exists to a collision resolver. ask prompts only when
// stdin is a terminal and falls back to suffix otherwise.
func newResolver(value string, in *os.File, out io.Writer) (session.Resolver, error) {
	if strings.EqualFold(strings.TrimSpace(value), "ask") {
		if term.IsTerminal(int(in.Fd())) {
			return session.PromptResolver{In: in, Out: out}, nil
		}
		return session.FixedResolver(session.DecisionSuffix), nil
	}
	decision, err := session.ParseDecision(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --on-exists value: %w", err)
	}
	return session.FixedResolver(decision), nil
}

func newSimulateCmd() *cobra.Command {
	defaults := simulate.DefaultParams()
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the experiment with a synthetic participant",
		Args:  cobra.NoArgs,
		RunE:  runSimulateCmd,
	}
	cmd.Flags().Int64Var(&simSeed, "seed", defaults.Seed, "random seed")
	cmd.Flags().Float64Var(&simA, "fitts-a", defaults.A, "Fitts's law intercept in ms")
	cmd.Flags().Float64Var(&simB, "fitts-b", defaults.B, "Fitts's law slope in ms/bit")
	cmd.Flags().Float64Var(&simNoise, "noise", defaults.Noise, "movement time noise (0-1)")
	cmd.Flags().Float64Var(&simSpread, "spread", defaults.Spread, "aim spread as a fraction of the radius")
	cmd.Flags().BoolVar(&simLatency, "latency", false, "enable simulated latency")
	return cmd
}

func runSimulateCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("on-exists") && fileCfg.Experiment.OnExists == nil {
		onExists = "suffix"
	}
	resolver, err := newResolver(onExists, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	cfg, mode, err := loadExperiment()
	if err != nil {
		return err
	}
	if simNoise < 0 || simNoise >= 1 {
		return fmt.Errorf("--noise must be in [0, 1)")
	}
	if simSpread < 0 {
		return fmt.Errorf("--spread must be >= 0")
	}
	logger, closeLogger, err := newLogger(fileCfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLogger()

	canvas := geometry.Point{X: canvasWidth, Y: canvasHeight}
	exp, err := experiment.New(cfg, canvas.Scale(0.5), logger)
	if err != nil {
		return err
	}
	params := simulate.DefaultParams()
	params.A = simA
	params.B = simB
	params.Noise = simNoise
	params.Spread = simSpread
	params.Seed = simSeed

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = simulate.Run(ctx, exp, simulate.Options{
		Params:  params,
		Latency: simLatency,
		Mode:    mode,
		Canvas:  canvas,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if err := saveResults(exp, resolver, logger, os.Stdout); err != nil {
		return err
	}
	return stats.RenderConditionTable(os.Stdout, stats.SummarizeConditions(exp.Table().Rows()))
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse saved results",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsParticipant, "participant", "", "participant id filter")
	cmd.Flags().StringVar(&statsDevice, "device", "", "device filter")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N logs")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print the report instead of opening the browser")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Dir:         logsDir,
		Participant: statsParticipant,
		Device:      statsDevice,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	var console zapcore.WriteSyncer
	if statsPlain {
		console = os.Stderr
	}
	logger, closeLogger, err := newLogger(fileCfg, console)
	if err != nil {
		return err
	}
	defer closeLogger()

	if statsPlain {
		return renderPlainStats(os.Stdout, cfg, logger, stats.ShouldUseColor(os.Stdout))
	}

	program := tea.NewProgram(statsui.NewModel(cfg, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderPlainStats(w io.Writer, cfg model.StatsConfig, logger *zap.Logger, useColor bool) error {
	report, err := stats.BuildReport(cfg, logger)
	if err != nil {
		return err
	}
	if len(report.Logs) == 0 {
		_, err := fmt.Fprintf(w, "No logs found in %s.\n", cfg.Dir)
		return err
	}
	if err := stats.RenderSummary(w, report.Logs); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := stats.RenderConditionTable(w, report.Conditions); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return stats.RenderCurves(w, report.Samples, cfg.CurveWindow, 0, plainPlotHeight, useColor)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open settings file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template [path]",
		Short: "Write an example experiment config",
		Long:  "Write an example experiment config to path (default config.csv). Use - for stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTemplateCmd,
	}
	cmd.Flags().BoolVar(&templateForce, "force", false, "overwrite an existing file")
	return cmd
}

func runTemplateCmd(cmd *cobra.Command, args []string) error {
	path := defaultConfigFile
	if len(args) == 1 {
		path = args[0]
	}
	if path == "-" {
		_, err := io.WriteString(cmd.OutOrStdout(), config.ExampleExperiment)
		return err
	}
	return writeTemplate(path, templateForce)
}

func writeTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "config-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := io.WriteString(tmpFile, config.ExampleExperiment); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# fitts configuration
# Uncomment a value to enable it. CLI flags override config values.

[experiment]
# config = %q          # Experiment config CSV
# logs-dir = %q             # Directory for result logs
# targets = %d                 # Targets on the ring
# latency-mode = %q        # queue or offset
# on-exists = %q             # ask, suffix, skip or overwrite

[stats]
# curve-window = %d           # Moving average window

[logging]
# level = %q               # debug, info, warn or error
# file = %q
# max-size-mb = 10
# max-backups = 3
`,
		defaultConfigFile,
		defaultLogsDir,
		experiment.DefaultTargets,
		defaultLatencyMode,
		defaultOnExists,
		defaultCurveWindow,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
