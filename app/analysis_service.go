package app

import (
	"context"
	"fmt"
	"time"

	"likertlab/adapters/excel"
	"likertlab/adapters/stats/hypothesis"
	"likertlab/adapters/stats/ordinal"
	"likertlab/domain/core"
	"likertlab/domain/dataset"
	"likertlab/domain/stage"
	"likertlab/internal"
	"likertlab/internal/analysis"
	"likertlab/internal/config"
	internalDataset "likertlab/internal/dataset"
	"likertlab/internal/errors"
)

// DatasetLoader produces the dataset for one experiment
type DatasetLoader interface {
	Load(ctx context.Context, experiment int) (*dataset.Dataset, error)
}

// LoaderFactory opens a loader for an input file. sheet names the XLSX
// worksheet and is empty for the first sheet or a delimited file.
type LoaderFactory func(path, sheet string, logger *internal.Logger) DatasetLoader

// AnalysisRequest defines the inputs of one run
type AnalysisRequest struct {
	DataFile        string
	Sheet           string
	Experiment      int
	ConfidenceLevel float64
	EqualVariance   bool
	Plan            stage.StagePlan
}

// RequestFromConfig builds a request for plan from the loaded configuration
func RequestFromConfig(cfg *config.Config, plan stage.StagePlan) AnalysisRequest {
	return AnalysisRequest{
		DataFile:        cfg.Data.File,
		Sheet:           cfg.Data.Sheet,
		Experiment:      cfg.Data.Experiment,
		ConfidenceLevel: cfg.Analysis.ConfidenceLevel,
		EqualVariance:   cfg.Analysis.EqualVariance,
		Plan:            plan,
	}
}

// AnalysisService runs the survey pipeline: load, summarize, rank-sum test,
// t-test and ordinal regression, in that order
type AnalysisService struct {
	newLoader   LoaderFactory
	summarizer  *analysis.Summarizer
	stageRunner *StageRunner
	logger      *internal.Logger
}

// ServiceOption configures an AnalysisService
type ServiceOption func(*AnalysisService)

// WithLoaderFactory replaces the file-based loader
func WithLoaderFactory(factory LoaderFactory) ServiceOption {
	return func(s *AnalysisService) {
		s.newLoader = factory
	}
}

// NewAnalysisService creates an analysis service reading CSV, TSV or XLSX files
func NewAnalysisService(logger *internal.Logger, opts ...ServiceOption) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &AnalysisService{
		newLoader: func(path, sheet string, logger *internal.Logger) DatasetLoader {
			if sheet == "" {
				return internalDataset.NewFileLoader(path, logger)
			}
			return internalDataset.NewFileLoader(path, logger, excel.WithSheet(sheet))
		},
		summarizer:  analysis.NewSummarizer(),
		stageRunner: NewStageRunner(logger),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the request's stage plan. The first failing stage stops the run
// and no report is returned.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*Report, error) {
	startTime := time.Now()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:           core.NewRunID(),
		Experiment:      req.Experiment,
		Source:          req.DataFile,
		Sheet:           req.Sheet,
		ConfidenceLevel: req.ConfidenceLevel,
		EqualVariance:   req.EqualVariance,
		Plan:            req.Plan,
	}
	s.logger.Info("run %s: experiment %d from %s, stages %v", report.RunID, req.Experiment, req.DataFile, req.Plan.Stages)

	runner := hypothesis.NewRunner(s.logger,
		hypothesis.WithConfidenceLevel(req.ConfidenceLevel),
		hypothesis.WithEqualVariance(req.EqualVariance))
	fitter := ordinal.NewFitter(s.logger, ordinal.WithConfidenceLevel(req.ConfidenceLevel))

	var ds *dataset.Dataset
	stages := map[stage.StageName]StageFunc{
		stage.StageLoad: func(ctx context.Context) ([]string, error) {
			loaded, err := s.newLoader(req.DataFile, req.Sheet, s.logger).Load(ctx, req.Experiment)
			if err != nil {
				return nil, err
			}
			ds = loaded
			report.NObs = ds.Len()
			report.Levels = ds.Levels()
			return nil, nil
		},
		stage.StageSummarize: func(ctx context.Context) ([]string, error) {
			summary, err := s.summarizer.Summarize(ds)
			if err != nil {
				return nil, err
			}
			table := analysis.Tabulate(summary)
			report.Summary = summary
			report.Contingency = &table
			return nil, nil
		},
		stage.StageRankSum: func(ctx context.Context) ([]string, error) {
			result, err := runner.RankSum(ctx, ds)
			if err != nil {
				return nil, err
			}
			report.RankSum = result
			return result.Warnings, nil
		},
		stage.StageTTest: func(ctx context.Context) ([]string, error) {
			result, err := runner.TTest(ctx, ds)
			if err != nil {
				return nil, err
			}
			report.TTest = result
			return result.Warnings, nil
		},
		stage.StageOrdinal: func(ctx context.Context) ([]string, error) {
			result, err := fitter.Fit(ctx, ds)
			if err != nil {
				return nil, err
			}
			report.Ordinal = result
			return nil, nil
		},
	}

	for _, name := range req.Plan.Stages {
		if err := s.stageRunner.Execute(ctx, name, stages[name], &report.Stages); err != nil {
			s.logger.Warn("run %s stopped at stage %s with %s", report.RunID, errors.GetStage(err), errors.GetCode(err))
			return nil, err
		}
	}

	fingerprint, err := report.ComputeFingerprint()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fingerprint report")
	}
	report.Fingerprint = fingerprint
	report.GeneratedAt = core.Now()

	s.logger.Info("run %s finished: %d stages in %dms, fingerprint %s",
		report.RunID, report.Stages.Overall.TotalStages, core.Since(startTime), fingerprint.Short())
	return report, nil
}

func (s *AnalysisService) validate(req AnalysisRequest) error {
	if req.DataFile == "" {
		return errors.InvalidInput("data file is required")
	}
	if !(req.ConfidenceLevel > 0 && req.ConfidenceLevel < 1) {
		return errors.InvalidInput(fmt.Sprintf("confidence level %v must lie in (0, 1)", req.ConfidenceLevel))
	}
	if err := req.Plan.Validate(); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}
	return nil
}
