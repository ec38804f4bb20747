package hypothesis

import (
	"fmt"
	"math"
	"sort"

	"likertlab/domain/core"
	domainStats "likertlab/domain/stats"
	"likertlab/internal"
	"likertlab/internal/analysis"

	"github.com/montanaflynn/stats"
)

const (
	// exactSampleLimit: both groups below this size (and no ties) use the exact distribution
	exactSampleLimit = 50
	// rootTolerance is the uniroot tolerance for the approximate CI and estimate
	rootTolerance = 1e-4

	warnExactPValueTies = "cannot compute exact p-value with ties"
	warnExactCITies     = "cannot compute exact confidence interval with ties"
)

// RankSumTest is the Wilcoxon rank-sum (Mann-Whitney) test with a Hodges-Lehmann
// location shift and confidence interval. Differences are x - y.
type RankSumTest struct {
	dist   *analysis.Distributions
	logger *internal.Logger
}

// NewRankSumTest creates a new rank-sum test
func NewRankSumTest(logger *internal.Logger) *RankSumTest {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RankSumTest{dist: analysis.NewDistributions(), logger: logger.With("ranksum")}
}

// Name returns the test name
func (t *RankSumTest) Name() string {
	return string(domainStats.TestRankSum)
}

// Description returns a human-readable description
func (t *RankSumTest) Description() string {
	return "Wilcoxon rank sum test with continuity correction and Hodges-Lehmann shift"
}

// Run performs the test of x against y at the given confidence level
func (t *RankSumTest) Run(x, y []float64, confLevel float64) (*domainStats.TestResult, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, fmt.Errorf("%w: rank sum test needs both groups (n_x=%d, n_y=%d)", core.ErrEmptyGroup, len(x), len(y))
	}

	nx, ny := float64(len(x)), float64(len(y))
	result := &domainStats.TestResult{
		Test:          domainStats.TestRankSum,
		StatisticName: "W",
		EstimateName:  "difference in location",
		NComparison:   len(x),
		NReference:    len(y),
		CI:            domainStats.ConfidenceInterval{Level: confLevel},
	}

	if allIdentical(x, y) {
		t.logger.Warn("all %d observations are identical; reporting trivial result", len(x)+len(y))
		result.Method = "Wilcoxon rank sum test (all observations tied)"
		result.Statistic = nx * ny / 2
		result.PValue = 1
		result.Trivial = true
		result.Warnings = append(result.Warnings, "all observations are identical")
		return result, nil
	}

	w, tieTerm := rankSumW(x, y)
	result.Statistic = w

	hasTies := tieTerm > 0
	small := len(x) < exactSampleLimit && len(y) < exactSampleLimit

	if small && !hasTies {
		t.runExact(x, y, result, confLevel)
		return result, nil
	}

	if small {
		t.logger.Warn("%s (n_x=%d, n_y=%d)", warnExactPValueTies, len(x), len(y))
		result.Warnings = append(result.Warnings, warnExactPValueTies, warnExactCITies)
	}
	if err := t.runNormal(x, y, w, tieTerm, result, confLevel); err != nil {
		return nil, err
	}
	return result, nil
}

// runExact fills p-value, CI and estimate from the exact null distribution
func (t *RankSumTest) runExact(x, y []float64, result *domainStats.TestResult, confLevel float64) {
	m, n := len(x), len(y)
	dist := newWilcoxonDistribution(m, n)
	w := int(math.Round(result.Statistic))

	var p float64
	if result.Statistic > float64(m*n)/2 {
		p = dist.Survival(w)
	} else {
		p = dist.CDF(w)
	}
	result.Method = "Wilcoxon rank sum exact test"
	result.Exact = true
	result.PValue = math.Min(1, 2*p)

	diffs := pairwiseDifferences(x, y)
	alpha := 1 - confLevel
	qu := dist.Quantile(alpha / 2)
	if qu == 0 {
		qu = 1
	}
	ql := m*n - qu
	achievedAlpha := 2 * dist.CDF(qu-1)
	if achievedAlpha-alpha > alpha/2 {
		warning := fmt.Sprintf("requested conf.level not achievable; using %.4g", 1-achievedAlpha)
		t.logger.Warn("%s (n_x=%d, n_y=%d)", warning, m, n)
		result.Warnings = append(result.Warnings, warning)
		result.CI.Level = 1 - achievedAlpha
	}
	result.CI.Lower = diffs[qu-1]
	result.CI.Upper = diffs[ql]

	result.Estimate, _ = stats.Median(diffs)
}

// runNormal fills p-value, CI and estimate from the tie-corrected normal
// approximation with continuity correction
func (t *RankSumTest) runNormal(x, y []float64, w, tieTerm float64, result *domainStats.TestResult, confLevel float64) error {
	nx, ny := float64(len(x)), float64(len(y))
	result.Method = "Wilcoxon rank sum test with continuity correction"
	result.Corrected = true

	z := w - nx*ny/2
	sigma := rankSumSigma(nx, ny, tieTerm)
	z = (z - continuityCorrection(z)) / sigma
	result.PValue = math.Min(1, 2*math.Min(t.dist.NormalCDF(z), t.dist.NormalCDF(-z)))

	mumin := minOf(x) - maxOf(y)
	mumax := maxOf(x) - minOf(y)
	if mumin == mumax {
		// both groups are constant: the shift is known exactly
		result.Estimate = mumin
		result.CI.Lower, result.CI.Upper = mumin, mumin
		return nil
	}

	alpha := 1 - confLevel
	lower, err := shiftRoot(x, y, mumin, mumax, t.dist.NormalQuantile(1-alpha/2), true)
	if err != nil {
		return fmt.Errorf("rank sum lower confidence bound: %w", err)
	}
	upper, err := shiftRoot(x, y, mumin, mumax, t.dist.NormalQuantile(alpha/2), true)
	if err != nil {
		return fmt.Errorf("rank sum upper confidence bound: %w", err)
	}
	result.CI.Lower, result.CI.Upper = lower, upper

	// the point estimate solves the uncorrected statistic for zero
	estimate, err := shiftRoot(x, y, mumin, mumax, 0, false)
	if err != nil {
		return fmt.Errorf("rank sum location estimate: %w", err)
	}
	result.Estimate = estimate

	t.logger.Debug("W=%.1f z=%.4f p=%.4g shift=%.4f [%.4f, %.4f]", w, z, result.PValue, estimate, lower, upper)
	return nil
}

// shiftedStatistic is the standardized rank-sum statistic of c(x - d, y) minus zq
func shiftedStatistic(x, y []float64, d, zq float64, correct bool) float64 {
	shifted := make([]float64, len(x))
	for i, v := range x {
		shifted[i] = v - d
	}
	nx, ny := float64(len(x)), float64(len(y))
	w, tieTerm := rankSumW(shifted, y)
	dz := w - nx*ny/2

	correction := 0.0
	if correct {
		correction = continuityCorrection(dz)
	}
	sigma := rankSumSigma(nx, ny, tieTerm)
	if sigma == 0 {
		return -zq
	}
	return (dz-correction)/sigma - zq
}

// shiftRoot solves shiftedStatistic(d) = 0 on [mumin, mumax], clamping to the
// ends when the statistic does not change sign
func shiftRoot(x, y []float64, mumin, mumax, zq float64, correct bool) (float64, error) {
	f := func(d float64) float64 { return shiftedStatistic(x, y, d, zq, correct) }
	fLower, fUpper := f(mumin), f(mumax)
	if correct {
		if fLower <= 0 {
			return mumin, nil
		}
		if fUpper >= 0 {
			return mumax, nil
		}
	} else if fLower*fUpper > 0 {
		if math.Abs(fLower) < math.Abs(fUpper) {
			return mumin, nil
		}
		return mumax, nil
	}
	return analysis.Zeroin(f, mumin, mumax, fLower, fUpper, rootTolerance, analysis.DefaultRootMaxIter)
}

func rankSumSigma(nx, ny, tieTerm float64) float64 {
	n := nx + ny
	return math.Sqrt((nx * ny / 12) * ((n + 1) - tieTerm/(n*(n-1))))
}

func continuityCorrection(z float64) float64 {
	switch {
	case z > 0:
		return 0.5
	case z < 0:
		return -0.5
	}
	return 0
}

// pairwiseDifferences returns the sorted x[i] - y[j] over all pairs
func pairwiseDifferences(x, y []float64) []float64 {
	diffs := make([]float64, 0, len(x)*len(y))
	for _, xi := range x {
		for _, yj := range y {
			diffs = append(diffs, xi-yj)
		}
	}
	sort.Float64s(diffs)
	return diffs
}

func allIdentical(x, y []float64) bool {
	first := x[0]
	for _, v := range x {
		if v != first {
			return false
		}
	}
	for _, v := range y {
		if v != first {
			return false
		}
	}
	return true
}

func minOf(data []float64) float64 {
	v, _ := stats.Min(data)
	return v
}

func maxOf(data []float64) float64 {
	v, _ := stats.Max(data)
	return v
}
