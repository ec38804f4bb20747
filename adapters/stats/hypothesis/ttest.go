package hypothesis

import (
	"fmt"
	"math"

	"likertlab/domain/core"
	domainStats "likertlab/domain/stats"
	"likertlab/internal"
	"likertlab/internal/analysis"

	"gonum.org/v1/gonum/stat"
)

// TTest compares group means with Welch's t-test, or Student's pooled-variance
// test when EqualVariance is set. The estimate is mean(x) - mean(y).
type TTest struct {
	EqualVariance bool

	dist   *analysis.Distributions
	logger *internal.Logger
}

// NewTTest creates a new two-sample t-test
func NewTTest(equalVariance bool, logger *internal.Logger) *TTest {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TTest{EqualVariance: equalVariance, dist: analysis.NewDistributions(), logger: logger.With("ttest")}
}

// Name returns the test name
func (t *TTest) Name() string {
	if t.EqualVariance {
		return string(domainStats.TestPooledT)
	}
	return string(domainStats.TestWelch)
}

// Description returns a human-readable description
func (t *TTest) Description() string {
	if t.EqualVariance {
		return "Two sample t-test with pooled variance"
	}
	return "Welch two sample t-test with Satterthwaite degrees of freedom"
}

// Run performs the test of x against y at the given confidence level
func (t *TTest) Run(x, y []float64, confLevel float64) (*domainStats.TestResult, error) {
	if len(x) < 2 || len(y) < 2 {
		return nil, core.NewDegenerateSampleError(
			fmt.Sprintf("t-test needs at least 2 observations per group (n_x=%d, n_y=%d)", len(x), len(y)))
	}

	nx, ny := float64(len(x)), float64(len(y))
	mx, vx := stat.MeanVariance(x, nil)
	my, vy := stat.MeanVariance(y, nil)

	result := &domainStats.TestResult{
		Test:          domainStats.TestType(t.Name()),
		StatisticName: "t",
		EstimateName:  "difference in means",
		Estimate:      mx - my,
		NComparison:   len(x),
		NReference:    len(y),
		CI:            domainStats.ConfidenceInterval{Level: confLevel},
	}

	var se, df float64
	if t.EqualVariance {
		result.Method = "Two Sample t-test"
		df = nx + ny - 2
		pooled := ((nx-1)*vx + (ny-1)*vy) / df
		se = math.Sqrt(pooled * (1/nx + 1/ny))
	} else {
		result.Method = "Welch Two Sample t-test"
		sx2, sy2 := vx/nx, vy/ny
		se = math.Sqrt(sx2 + sy2)
		df = (sx2 + sy2) * (sx2 + sy2) / (sx2*sx2/(nx-1) + sy2*sy2/(ny-1))
	}

	if se < 10*epsilon*math.Max(math.Abs(mx), math.Abs(my)) || se == 0 {
		if mx != my {
			return nil, fmt.Errorf("%w: both groups constant with means %g and %g", core.ErrConstantData, mx, my)
		}
		t.logger.Warn("both groups are constant with equal means; reporting trivial result")
		if t.EqualVariance {
			result.DF = df
		} else {
			result.DF = nx + ny - 2
		}
		result.PValue = 1
		result.CI.Lower, result.CI.Upper = result.Estimate, result.Estimate
		result.Trivial = true
		result.Warnings = append(result.Warnings, "data are essentially constant")
		return result, nil
	}

	tStat := result.Estimate / se
	result.Statistic = tStat
	result.DF = df
	result.PValue = t.dist.TTestPValue(tStat, df)

	half := t.dist.TCritical(confLevel, df) * se
	result.CI.Lower = result.Estimate - half
	result.CI.Upper = result.Estimate + half

	t.logger.Debug("%s: t=%.4f df=%.3f p=%.4g diff=%.4f", t.Name(), tStat, df, result.PValue, result.Estimate)
	return result, nil
}

const epsilon = 2.220446049250313e-16
