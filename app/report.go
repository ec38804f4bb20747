package app

import (
	"likertlab/domain/core"
	"likertlab/domain/dataset"
	"likertlab/domain/stage"
	"likertlab/domain/stats"
	"likertlab/internal/analysis"
)

// Report is the complete output of one analysis run
type Report struct {
	RunID           core.RunID                 `json:"run_id" yaml:"run_id"`
	Experiment      int                        `json:"experiment" yaml:"experiment"`
	Source          string                     `json:"source" yaml:"source"`
	Sheet           string                     `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	ConfidenceLevel float64                    `json:"confidence_level" yaml:"confidence_level"`
	EqualVariance   bool                       `json:"equal_variance" yaml:"equal_variance"`
	Plan            stage.StagePlan            `json:"plan" yaml:"plan"`
	NObs            int                        `json:"n_obs" yaml:"n_obs"`
	Levels          []dataset.Condition        `json:"levels" yaml:"levels"`
	Summary         *stats.Summary             `json:"summary,omitempty" yaml:"summary,omitempty"`
	Contingency     *analysis.ContingencyTable `json:"contingency,omitempty" yaml:"contingency,omitempty"`
	RankSum         *stats.TestResult          `json:"rank_sum,omitempty" yaml:"rank_sum,omitempty"`
	TTest           *stats.TestResult          `json:"t_test,omitempty" yaml:"t_test,omitempty"`
	Ordinal         *stats.OrdinalAnalysis     `json:"ordinal,omitempty" yaml:"ordinal,omitempty"`
	Stages          stage.PipelineResult       `json:"stages" yaml:"stages"`
	Fingerprint     core.Hash                  `json:"fingerprint" yaml:"fingerprint"`
	GeneratedAt     core.Timestamp             `json:"generated_at" yaml:"generated_at"`
}

// fingerprintPayload is everything a run computes from its input. Run id,
// timestamps and stage durations are left out so identical inputs hash identically.
type fingerprintPayload struct {
	Experiment      int                    `json:"experiment"`
	Source          string                 `json:"source"`
	Sheet           string                 `json:"sheet,omitempty"`
	ConfidenceLevel float64                `json:"confidence_level"`
	EqualVariance   bool                   `json:"equal_variance"`
	Plan            stage.StagePlan        `json:"plan"`
	NObs            int                    `json:"n_obs"`
	Levels          []dataset.Condition    `json:"levels"`
	Summary         *stats.Summary         `json:"summary"`
	RankSum         *stats.TestResult      `json:"rank_sum"`
	TTest           *stats.TestResult      `json:"t_test"`
	Ordinal         *stats.OrdinalAnalysis `json:"ordinal"`
}

// ComputeFingerprint hashes the numeric outputs of the report
func (r *Report) ComputeFingerprint() (core.Hash, error) {
	return core.ComputeJSONHash(fingerprintPayload{
		Experiment:      r.Experiment,
		Source:          r.Source,
		Sheet:           r.Sheet,
		ConfidenceLevel: r.ConfidenceLevel,
		EqualVariance:   r.EqualVariance,
		Plan:            r.Plan,
		NObs:            r.NObs,
		Levels:          r.Levels,
		Summary:         r.Summary,
		RankSum:         r.RankSum,
		TTest:           r.TTest,
		Ordinal:         r.Ordinal,
	})
}
