package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nabii/internal/config"
	"nabii/internal/infrastructure"
	"nabii/internal/operations"
	"nabii/pkg/contracts"
)

// ErrStepsFailed is returned when at least one step failed
var ErrStepsFailed = errors.New("one or more steps failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "processor",
		Short: "Build the dashboard documents from the deal dataset",
		Long: `processor reads the deal spreadsheet, enriches every deal and writes the
eight dashboard documents, plus the enriched dataset, into the output directory.

Every document is an independent step: a failing step is reported and the
others still run. The exit status is non-zero when any step failed.`,
		Args:          cobra.NoArgs,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runE,
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to a YAML configuration file")
	flags.String("in", "", "input workbook (default "+config.DefaultInputPath+")")
	flags.String("sheet", "", "sheet holding the deals (default: detected)")
	flags.String("out", "", "output directory (default "+config.DefaultOutputDir+")")
	flags.Int("top", config.DefaultTopDeals, "number of deals in the top deals document")
	flags.StringSlice("only", nil, "run only these steps, e.g. --only sankey,sdg")
	flags.Bool("sequential", false, "run the steps one after another")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("trace", false, "print OpenTelemetry spans to stderr")
	flags.Bool("no-progress", false, "disable the progress bar")
	flags.Bool("list-steps", false, "print the step IDs and exit")

	return cmd
}

func runE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	only, _ := cmd.Flags().GetStringSlice("only")
	listSteps, _ := cmd.Flags().GetBool("list-steps")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	var progressOut io.Writer
	if !noProgress && !listSteps && isTerminal(os.Stdout) {
		progressOut = os.Stdout
	}

	if listSteps {
		return printSteps(cmd.OutOrStdout(), cfg, logger)
	}

	result, err := run(ctx, cfg, only, logger, progressOut)
	if result != nil {
		printSummary(cmd.OutOrStdout(), cfg, result)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Pipeline failed", slog.String("error", err.Error()))
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// run executes the pipeline described by cfg. When progressOut is set a
// progress bar over the steps is drawn on it.
func run(ctx context.Context, cfg *config.Config, only []string, logger *slog.Logger, progressOut io.Writer) (*operations.Result, error) {
	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to shut down telemetry", slog.String("error", err.Error()))
		}
	}()

	pipeline, err := operations.NewPipelineFromConfig(cfg, providers, logger)
	if err != nil {
		return nil, err
	}

	if progressOut != nil {
		steps, err := pipeline.Manager().GetRegistry().Select(only)
		if err == nil && len(steps) > 0 {
			bar := newProgressBar(progressOut, len(steps))
			defer bar.Wait()
			pipeline.Manager().SetProgress(operations.MultiProgress(operations.NewLogProgress(logger), bar))
		}
	}

	result, err := pipeline.Run(ctx, only)
	if err != nil && result != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrStepsFailed,
			strings.Join(result.Report.FailedSteps(), ", "), err)
	}
	return result, err
}

// loadConfig loads the configuration and applies the command line flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	// Nothing scrapes a batch run
	cfg.Telemetry.MetricExporter = "none"

	if flags.Changed("in") {
		cfg.Dataset.InputPath, _ = flags.GetString("in")
	}
	if flags.Changed("sheet") {
		cfg.Dataset.SheetName, _ = flags.GetString("sheet")
	}
	if flags.Changed("out") {
		cfg.Output.Dir, _ = flags.GetString("out")
	}
	if flags.Changed("top") {
		cfg.Dashboard.TopDeals, _ = flags.GetInt("top")
	}
	if flags.Changed("sequential") {
		sequential, _ := flags.GetBool("sequential")
		cfg.Pipeline.Parallel = !sequential
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if trace, _ := flags.GetBool("trace"); trace {
		cfg.Telemetry.TraceExporter = "stdout"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printSteps(w io.Writer, cfg *config.Config, logger *slog.Logger) error {
	pipeline, err := operations.NewPipelineFromConfig(cfg, nil, logger)
	if err != nil {
		return err
	}
	for _, step := range pipeline.Manager().GetRegistry().List() {
		fmt.Fprintf(w, "%-20s %s\n", step.ID(), step.Name())
	}
	return nil
}

func printSummary(w io.Writer, cfg *config.Config, result *operations.Result) {
	fmt.Fprintf(w, "\nDeals: %d total, %d anonymized, %d with disclosed amount, %d shown individually\n",
		result.Stats.Total, result.Stats.Anonymized, result.Stats.Disclosed, result.Stats.ShowIndividual)
	fmt.Fprintf(w, "Output: %s\n", cfg.Output.Dir)
	for _, step := range result.Report.Steps {
		mark := "ok"
		if step.Status != operations.StepStatusCompleted {
			mark = string(step.Status)
		}
		line := fmt.Sprintf("  %-6s %-28s", mark, step.Name)
		if step.File != "" {
			line += " " + step.File
		}
		if step.Error != "" {
			line += " (" + step.Error + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
