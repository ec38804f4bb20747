package stats

import (
	"fmt"
	"math"

	"likertlab/domain/dataset"
)

// DefaultConfidenceLevel is the confidence level of every reported interval
const DefaultConfidenceLevel = 0.95

// ============================================================================
// STABLE PRIMITIVES
// ============================================================================

// ConfidenceInterval is a two-sided interval at Level
type ConfidenceInterval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	Level float64 `json:"level" yaml:"level"`
}

// TestType identifies a hypothesis test
type TestType string

const (
	TestRankSum TestType = "wilcoxon_rank_sum"
	TestWelch   TestType = "welch_t"
	TestPooledT TestType = "pooled_t"
)

// ============================================================================
// DESCRIPTIVE SUMMARY
// ============================================================================

// LevelSummary holds descriptive statistics for one condition level.
// Quantiles use Hyndman-Fan type 7 (linear interpolation between order statistics).
type LevelSummary struct {
	Condition dataset.Condition `json:"condition" yaml:"condition"`
	N         int               `json:"n" yaml:"n"`
	Counts    []int             `json:"counts" yaml:"counts"` // Counts[i] is the number of ratings equal to MinRating+i
	Mean      float64           `json:"mean" yaml:"mean"`
	SD        float64           `json:"sd" yaml:"sd"`
	Median    float64           `json:"median" yaml:"median"`
	Q1        float64           `json:"q1" yaml:"q1"`
	Q3        float64           `json:"q3" yaml:"q3"`
	IQR       float64           `json:"iqr" yaml:"iqr"`
	Min       float64           `json:"min" yaml:"min"`
	Max       float64           `json:"max" yaml:"max"`
}

// Summary is the descriptive output for a whole dataset
type Summary struct {
	Total        int            `json:"total" yaml:"total"`
	QuantileType int            `json:"quantile_type" yaml:"quantile_type"`
	Levels       []LevelSummary `json:"levels" yaml:"levels"`
}

// CountTotal sums the per-rating counts over all levels
func (s *Summary) CountTotal() int {
	total := 0
	for _, level := range s.Levels {
		for _, c := range level.Counts {
			total += c
		}
	}
	return total
}

// ============================================================================
// HYPOTHESIS TESTS
// ============================================================================

// TestResult is the output of a two-sample location test.
// INVARIANTS:
// - PValue in [0, 1]
// - CI.Lower <= CI.Upper
// - Estimate is oriented as Comparison - Reference
type TestResult struct {
	Test          TestType           `json:"test" yaml:"test"`
	Method        string             `json:"method" yaml:"method"`
	StatisticName string             `json:"statistic_name" yaml:"statistic_name"`
	Statistic     float64            `json:"statistic" yaml:"statistic"`
	DF            float64            `json:"df,omitempty" yaml:"df,omitempty"`
	PValue        float64            `json:"p_value" yaml:"p_value"`
	EstimateName  string             `json:"estimate_name" yaml:"estimate_name"`
	Estimate      float64            `json:"estimate" yaml:"estimate"`
	CI            ConfidenceInterval `json:"ci" yaml:"ci"`
	Reference     dataset.Condition  `json:"reference" yaml:"reference"`
	Comparison    dataset.Condition  `json:"comparison" yaml:"comparison"`
	NReference    int                `json:"n_reference" yaml:"n_reference"`
	NComparison   int                `json:"n_comparison" yaml:"n_comparison"`
	Exact         bool               `json:"exact" yaml:"exact"`
	Corrected     bool               `json:"continuity_corrected" yaml:"continuity_corrected"`
	Trivial       bool               `json:"trivial" yaml:"trivial"`
	Warnings      []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Orientation describes the direction of the reported difference
func (r *TestResult) Orientation() string {
	return fmt.Sprintf("%s - %s", r.Comparison, r.Reference)
}

// Validate checks the result invariants
func (r *TestResult) Validate() error {
	if math.IsNaN(r.PValue) || r.PValue < 0 || r.PValue > 1 {
		return fmt.Errorf("%s: p-value %v outside [0,1]", r.Test, r.PValue)
	}
	if r.CI.Lower > r.CI.Upper {
		return fmt.Errorf("%s: confidence interval [%v, %v] is reversed", r.Test, r.CI.Lower, r.CI.Upper)
	}
	if r.NReference < 1 || r.NComparison < 1 {
		return fmt.Errorf("%s: empty group", r.Test)
	}
	return nil
}

// ============================================================================
// ORDINAL REGRESSION
// ============================================================================

// Threshold is one cut point between adjacent observed rating categories
type Threshold struct {
	Label    string             `json:"label" yaml:"label"` // e.g. "6|7"
	Below    int                `json:"below" yaml:"below"`
	Above    int                `json:"above" yaml:"above"`
	Estimate float64            `json:"estimate" yaml:"estimate"`
	StdError float64            `json:"std_error" yaml:"std_error"`
	CI       ConfidenceInterval `json:"ci" yaml:"ci"`
}

// Coefficient is a regression coefficient relative to the baseline level
type Coefficient struct {
	Term     string             `json:"term" yaml:"term"`
	Level    dataset.Condition  `json:"level" yaml:"level"`
	Estimate float64            `json:"estimate" yaml:"estimate"`
	StdError float64            `json:"std_error" yaml:"std_error"`
	ZValue   float64            `json:"z_value" yaml:"z_value"`
	PValue   float64            `json:"p_value" yaml:"p_value"`
	CI       ConfidenceInterval `json:"ci" yaml:"ci"`
	CIMethod string             `json:"ci_method" yaml:"ci_method"`
}

// OrdinalModel is a fitted cumulative-link model P(Y <= j | x) = F(theta_j - beta*x)
type OrdinalModel struct {
	Link            string            `json:"link" yaml:"link"`
	Baseline        dataset.Condition `json:"baseline" yaml:"baseline"`
	NObs            int               `json:"n_obs" yaml:"n_obs"`
	Thresholds      []Threshold       `json:"thresholds" yaml:"thresholds"`
	Coefficients    []Coefficient     `json:"coefficients" yaml:"coefficients"`
	LogLik          float64           `json:"log_lik" yaml:"log_lik"`
	AIC             float64           `json:"aic" yaml:"aic"`
	Iterations      int               `json:"iterations" yaml:"iterations"`
	MaxGradient     float64           `json:"max_gradient" yaml:"max_gradient"`
	ConditionNumber float64           `json:"condition_number" yaml:"condition_number"`
	Vcov            [][]float64       `json:"vcov" yaml:"vcov"` // thresholds first, then coefficients
}

// AnovaRow is one term of a Type III test table
type AnovaRow struct {
	Term       string  `json:"term" yaml:"term"`
	DF         int     `json:"df" yaml:"df"`
	LRChisq    float64 `json:"lr_chisq" yaml:"lr_chisq"`
	PValue     float64 `json:"p_value" yaml:"p_value"`
	WaldChisq  float64 `json:"wald_chisq" yaml:"wald_chisq"`
	WaldPValue float64 `json:"wald_p_value" yaml:"wald_p_value"`
}

// AnovaTable compares the full model with models that drop one term
type AnovaTable struct {
	Type       string     `json:"type" yaml:"type"`
	NullLogLik float64    `json:"null_log_lik" yaml:"null_log_lik"`
	Rows       []AnovaRow `json:"rows" yaml:"rows"`
}

// MarginalMean is the model estimate for one condition level
type MarginalMean struct {
	Condition dataset.Condition  `json:"condition" yaml:"condition"`
	Estimate  float64            `json:"estimate" yaml:"estimate"`
	StdError  float64            `json:"std_error" yaml:"std_error"`
	CI        ConfidenceInterval `json:"ci" yaml:"ci"`
}

// Contrast is a pairwise difference of marginal means
type Contrast struct {
	Label    string  `json:"label" yaml:"label"`
	Estimate float64 `json:"estimate" yaml:"estimate"`
	StdError float64 `json:"std_error" yaml:"std_error"`
	ZValue   float64 `json:"z_value" yaml:"z_value"`
	PValue   float64 `json:"p_value" yaml:"p_value"`
}

// MarginalMeans holds estimated marginal means on the latent scale
type MarginalMeans struct {
	Scale     string         `json:"scale" yaml:"scale"`
	Means     []MarginalMean `json:"means" yaml:"means"`
	Contrasts []Contrast     `json:"contrasts" yaml:"contrasts"`
}

// ClassPrediction holds predicted category probabilities for one condition level
type ClassPrediction struct {
	Condition     dataset.Condition `json:"condition" yaml:"condition"`
	Probabilities []float64         `json:"probabilities" yaml:"probabilities"` // indexed by rating - MinRating
	MeanClass     float64           `json:"mean_class" yaml:"mean_class"`
}

// OrdinalAnalysis bundles the fitted model with its derived tables
type OrdinalAnalysis struct {
	Model         OrdinalModel      `json:"model" yaml:"model"`
	Anova         AnovaTable        `json:"anova" yaml:"anova"`
	MarginalMeans MarginalMeans     `json:"marginal_means" yaml:"marginal_means"`
	Predictions   []ClassPrediction `json:"predictions" yaml:"predictions"`
}

