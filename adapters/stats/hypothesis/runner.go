package hypothesis

import (
	"context"
	"fmt"

	"likertlab/domain/dataset"
	domainStats "likertlab/domain/stats"
	"likertlab/internal"
)

// LocationTest is a two-sample test of x against y
type LocationTest interface {
	Name() string
	Description() string
	Run(x, y []float64, confLevel float64) (*domainStats.TestResult, error)
}

// Runner applies location tests to a two-level dataset. The second level in
// alphabetical order is x and the first is y, so every difference reads
// comparison - reference.
type Runner struct {
	rankSum   LocationTest
	tTest     LocationTest
	confLevel float64
	logger    *internal.Logger
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithEqualVariance switches the t-test to the pooled-variance form
func WithEqualVariance(equal bool) RunnerOption {
	return func(r *Runner) {
		r.tTest = NewTTest(equal, r.logger)
	}
}

// WithConfidenceLevel sets the confidence level of every interval
func WithConfidenceLevel(level float64) RunnerOption {
	return func(r *Runner) {
		r.confLevel = level
	}
}

// NewRunner creates a runner with the rank-sum test and Welch's t-test
func NewRunner(logger *internal.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	r := &Runner{
		confLevel: domainStats.DefaultConfidenceLevel,
		logger:    logger,
	}
	r.rankSum = NewRankSumTest(logger)
	r.tTest = NewTTest(false, logger)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RankSum runs the Wilcoxon rank-sum test on ds
func (r *Runner) RankSum(ctx context.Context, ds *dataset.Dataset) (*domainStats.TestResult, error) {
	return r.run(ctx, r.rankSum, ds)
}

// TTest runs the two-sample t-test on ds
func (r *Runner) TTest(ctx context.Context, ds *dataset.Dataset) (*domainStats.TestResult, error) {
	return r.run(ctx, r.tTest, ds)
}

func (r *Runner) run(ctx context.Context, test LocationTest, ds *dataset.Dataset) (*domainStats.TestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reference, comparison, err := ds.TwoLevels()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", test.Name(), err)
	}
	x := ds.Values(comparison)
	y := ds.Values(reference)
	r.logger.Debug("%s: %s", test.Name(), test.Description())

	result, err := test.Run(x, y, r.confLevel)
	if err != nil {
		return nil, fmt.Errorf("%s (%s - %s): %w", test.Name(), comparison, reference, err)
	}
	result.Reference = reference
	result.Comparison = comparison

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%s produced an invalid result: %w", test.Name(), err)
	}

	r.logger.Info("%s %s: %s=%.4g p=%.4g estimate=%.4g CI [%.4g, %.4g]",
		test.Name(), result.Orientation(), result.StatisticName, result.Statistic,
		result.PValue, result.Estimate, result.CI.Lower, result.CI.Upper)
	return result, nil
}
