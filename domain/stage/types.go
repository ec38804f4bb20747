package stage

import (
	"likertlab/domain/core"
)

// StageName represents a named stage in the pipeline
type StageName string

// StageKind categorizes stages by function
type StageKind string

const (
	StageKindInput StageKind = "input" // reading and validating data
	StageKindStats StageKind = "stats" // statistical computation
)

// Predefined stage names
const (
	StageLoad      StageName = "load"
	StageSummarize StageName = "summarize"
	StageRankSum   StageName = "rank_sum"
	StageTTest     StageName = "t_test"
	StageOrdinal   StageName = "ordinal"
)

// Kind returns the kind of a predefined stage
func (n StageName) Kind() StageKind {
	if n == StageLoad {
		return StageKindInput
	}
	return StageKindStats
}

// StageResult represents the outcome of a stage execution
type StageResult struct {
	StageName  StageName      `json:"stage_name" yaml:"stage_name"`
	Kind       StageKind      `json:"kind" yaml:"kind"`
	Success    bool           `json:"success" yaml:"success"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
	Warnings   []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Duration   int64          `json:"duration_ms" yaml:"duration_ms"` // milliseconds
	ExecutedAt core.Timestamp `json:"executed_at" yaml:"executed_at"`
}

// StagePlan is the ordered list of stages a run executes
type StagePlan struct {
	Stages []StageName `json:"stages" yaml:"stages"`
}

// FullPlan runs every stage
func FullPlan() StagePlan {
	return StagePlan{Stages: []StageName{StageLoad, StageSummarize, StageRankSum, StageTTest, StageOrdinal}}
}

// NewStagePlan builds a plan that always begins with loading
func NewStagePlan(stages ...StageName) StagePlan {
	plan := StagePlan{Stages: []StageName{StageLoad}}
	for _, s := range stages {
		if s != StageLoad {
			plan.Stages = append(plan.Stages, s)
		}
	}
	return plan
}

// Validate checks if the stage plan is valid
func (p StagePlan) Validate() error {
	if len(p.Stages) == 0 {
		return core.NewValidationError("stage_plan", "must contain at least one stage")
	}
	if p.Stages[0] != StageLoad {
		return core.NewValidationError("stage_plan", "must begin with the load stage")
	}

	seen := make(map[StageName]bool)
	for _, s := range p.Stages {
		switch s {
		case StageLoad, StageSummarize, StageRankSum, StageTTest, StageOrdinal:
		default:
			return core.NewValidationError("stage", "unknown stage: "+string(s))
		}
		if seen[s] {
			return core.NewValidationError("stage", "duplicate stage name: "+string(s))
		}
		seen[s] = true
	}
	return nil
}

// PipelineSummary provides high-level pipeline statistics
type PipelineSummary struct {
	TotalStages   int   `json:"total_stages" yaml:"total_stages"`
	Successful    int   `json:"successful" yaml:"successful"`
	Failed        int   `json:"failed" yaml:"failed"`
	TotalDuration int64 `json:"total_duration_ms" yaml:"total_duration_ms"`
}

// PipelineResult contains the results of executing a stage plan
type PipelineResult struct {
	Results []StageResult   `json:"results" yaml:"results"`
	Overall PipelineSummary `json:"overall" yaml:"overall"`
}

// AddResult adds a stage result and updates summary
func (r *PipelineResult) AddResult(result StageResult) {
	r.Results = append(r.Results, result)
	r.Overall.TotalStages++

	if result.Success {
		r.Overall.Successful++
	} else {
		r.Overall.Failed++
	}
	r.Overall.TotalDuration += result.Duration
}

