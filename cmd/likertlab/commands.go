package main

import (
	"os"
	"strings"

	"likertlab/app"
	"likertlab/domain/stage"
	"likertlab/internal"
	"likertlab/internal/config"
	"likertlab/internal/errors"

	"github.com/spf13/cobra"
)

// cliOptions holds flag values shared by every subcommand
type cliOptions struct {
	dataFile   string
	sheet      string
	experiment int
	format     string
	outPath    string
	equalVar   bool
	confLevel  float64
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "likertlab",
		Short: "Frequentist analysis of a Likert effectiveness item",
		Long: `likertlab loads a survey file (CSV, TSV or XLSX with experiment, condition
and effectiveness columns), keeps one experiment and reports descriptive
statistics, a Wilcoxon rank-sum test, a two-sample t-test and a
cumulative-link ordinal regression.

Settings come from LIKERT_* environment variables (optionally via .env);
flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.dataFile, "data", "d", "", "input file (env LIKERT_DATA_FILE)")
	flags.StringVar(&opts.sheet, "sheet", "", "XLSX worksheet to read, default the first (env LIKERT_SHEET)")
	flags.IntVarP(&opts.experiment, "experiment", "e", 1, "experiment id to analyze (env LIKERT_EXPERIMENT)")
	flags.StringVarP(&opts.format, "format", "f", config.FormatText, "output format: text, json, yaml, markdown or html (env LIKERT_OUTPUT_FORMAT)")
	flags.StringVarP(&opts.outPath, "out", "o", "", "write the report to this file instead of stdout (env LIKERT_OUTPUT_PATH)")
	flags.BoolVar(&opts.equalVar, "equal-var", false, "use the pooled-variance t-test (env LIKERT_EQUAL_VAR)")
	flags.Float64Var(&opts.confLevel, "conf-level", 0.95, "confidence level of all intervals (env LIKERT_CONF_LEVEL)")
	flags.StringVar(&opts.logLevel, "log-level", "INFO", "ERROR, WARN, INFO, DEBUG or TRACE (env LOG_LEVEL)")

	rootCmd.AddCommand(
		newStageCmd(opts, "analyze", "Run every stage and print the full report", stage.FullPlan()),
		newStageCmd(opts, "summary", "Descriptive statistics per condition", stage.NewStagePlan(stage.StageSummarize)),
		newStageCmd(opts, "ranksum", "Wilcoxon rank-sum test with Hodges-Lehmann shift", stage.NewStagePlan(stage.StageRankSum)),
		newStageCmd(opts, "ttest", "Two-sample t-test (Welch unless --equal-var)", stage.NewStagePlan(stage.StageTTest)),
		newStageCmd(opts, "ordinal", "Cumulative-link ordinal regression with ANOVA and marginal means", stage.NewStagePlan(stage.StageOrdinal)),
	)
	return rootCmd
}

func newStageCmd(opts *cliOptions, use, short string, plan stage.StagePlan) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [data-file]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.dataFile = args[0]
				if err := cmd.Flags().Set("data", args[0]); err != nil {
					return err
				}
			}
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runPlan(cmd, cfg, plan)
		},
	}
}

// resolveConfig loads the environment configuration and applies explicitly set flags
func resolveConfig(cmd *cobra.Command, opts *cliOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.File = opts.dataFile
	}
	if flags.Changed("sheet") {
		cfg.Data.Sheet = opts.sheet
	}
	if flags.Changed("experiment") {
		cfg.Data.Experiment = opts.experiment
	}
	if flags.Changed("format") {
		cfg.Output.Format = strings.ToLower(opts.format)
	}
	if flags.Changed("out") {
		cfg.Output.Path = opts.outPath
	}
	if flags.Changed("equal-var") {
		cfg.Analysis.EqualVariance = opts.equalVar
	}
	if flags.Changed("conf-level") {
		cfg.Analysis.ConfidenceLevel = opts.confLevel
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = strings.ToUpper(opts.logLevel)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPlan(cmd *cobra.Command, cfg *config.Config, plan stage.StagePlan) error {
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), cmd.ErrOrStderr())
	service := app.NewAnalysisService(logger)

	report, err := service.Run(cmd.Context(), app.RequestFromConfig(cfg, plan))
	if err != nil {
		return err
	}

	renderer := app.NewReportRenderer()
	if cfg.Output.Path == "" {
		return errors.Wrapf(renderer.Render(cmd.OutOrStdout(), report, cfg.Output.Format),
			"render %s report", cfg.Output.Format)
	}

	f, err := os.Create(cfg.Output.Path)
	if err != nil {
		return errors.Wrapf(err, "create report file %s", cfg.Output.Path)
	}
	if err := renderer.Render(f, report, cfg.Output.Format); err != nil {
		f.Close()
		return errors.Wrapf(err, "render %s report", cfg.Output.Format)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "write report file %s", cfg.Output.Path)
	}
	logger.Info("report written to %s", cfg.Output.Path)
	return nil
}
