package dataset

import (
	"fmt"
	"sort"

	"likertlab/domain/core"
)

// Rating bounds for the effectiveness item
const (
	MinRating = 1
	MaxRating = 9
)

// RatingLevels is the number of ordered response categories
const RatingLevels = MaxRating - MinRating + 1

// Condition is an experimental condition level, e.g. "graph" or "no_graph"
type Condition string

// String returns the string representation
func (c Condition) String() string {
	return string(c)
}

// Observation is one study participant's response
type Observation struct {
	ParticipantID core.ParticipantID `json:"participant_id" yaml:"participant_id"`
	Condition     Condition          `json:"condition" yaml:"condition"`
	Effectiveness int                `json:"effectiveness" yaml:"effectiveness"`
}

// Dataset is an immutable, ordered collection of observations for one experiment.
// INVARIANTS:
// - every Effectiveness lies in [MinRating, MaxRating]
// - Condition is never empty
// - ParticipantID values are unique
type Dataset struct {
	experiment   int
	source       string
	observations []Observation
	levels       []Condition
}

// New validates observations and builds a Dataset. The slice is copied.
func New(experiment int, source string, observations []Observation) (*Dataset, error) {
	seen := make(map[core.ParticipantID]bool, len(observations))
	levelSet := make(map[Condition]bool)

	for i, obs := range observations {
		if obs.Effectiveness < MinRating || obs.Effectiveness > MaxRating {
			return nil, core.NewBadValueError(i+1, "effectiveness", fmt.Sprint(obs.Effectiveness),
				fmt.Sprintf("must lie in [%d,%d]", MinRating, MaxRating))
		}
		if obs.Condition == "" {
			return nil, core.NewBadValueError(i+1, "condition", "", "must not be empty")
		}
		if obs.ParticipantID.String() == "" {
			return nil, core.NewBadValueError(i+1, "participant_id", "", "must not be empty")
		}
		if seen[obs.ParticipantID] {
			return nil, core.NewBadValueError(i+1, "participant_id", obs.ParticipantID.String(), "duplicate id")
		}
		seen[obs.ParticipantID] = true
		levelSet[obs.Condition] = true
	}

	levels := make([]Condition, 0, len(levelSet))
	for level := range levelSet {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	copied := make([]Observation, len(observations))
	copy(copied, observations)

	return &Dataset{
		experiment:   experiment,
		source:       source,
		observations: copied,
		levels:       levels,
	}, nil
}

// Experiment returns the experiment id the dataset was filtered to
func (d *Dataset) Experiment() int {
	return d.experiment
}

// Source returns the path of the file the dataset was read from
func (d *Dataset) Source() string {
	return d.source
}

// Len returns the number of observations
func (d *Dataset) Len() int {
	return len(d.observations)
}

// Observations returns a copy of the observations in file order
func (d *Dataset) Observations() []Observation {
	out := make([]Observation, len(d.observations))
	copy(out, d.observations)
	return out
}

// Levels returns the distinct condition levels in alphabetical order.
// The first level is the reference for every reported difference.
func (d *Dataset) Levels() []Condition {
	out := make([]Condition, len(d.levels))
	copy(out, d.levels)
	return out
}

// Values returns the effectiveness ratings of one condition as float64, in file order
func (d *Dataset) Values(level Condition) []float64 {
	var out []float64
	for _, obs := range d.observations {
		if obs.Condition == level {
			out = append(out, float64(obs.Effectiveness))
		}
	}
	return out
}

// Ratings returns the effectiveness ratings of one condition, in file order
func (d *Dataset) Ratings(level Condition) []int {
	var out []int
	for _, obs := range d.observations {
		if obs.Condition == level {
			out = append(out, obs.Effectiveness)
		}
	}
	return out
}

// TwoLevels returns the reference (first) and comparison (second) levels.
// It fails unless the dataset has exactly two condition levels.
func (d *Dataset) TwoLevels() (reference, comparison Condition, err error) {
	if len(d.levels) != 2 {
		return "", "", fmt.Errorf("%w: found %d (%v)", core.ErrTooFewGroups, len(d.levels), d.levels)
	}
	return d.levels[0], d.levels[1], nil
}

// FromGroups builds a dataset from per-condition ratings. Groups are laid out in
// sorted condition order and participant ids follow that order.
func FromGroups(experiment int, source string, groups map[Condition][]int) (*Dataset, error) {
	conditions := make([]Condition, 0, len(groups))
	total := 0
	for c, ratings := range groups {
		conditions = append(conditions, c)
		total += len(ratings)
	}
	sort.Slice(conditions, func(i, j int) bool { return conditions[i] < conditions[j] })

	width := core.ParticipantWidth(total)
	observations := make([]Observation, 0, total)
	for _, c := range conditions {
		for _, r := range groups[c] {
			observations = append(observations, Observation{
				ParticipantID: core.NewParticipantID(len(observations)+1, width),
				Condition:     c,
				Effectiveness: r,
			})
		}
	}
	return New(experiment, source, observations)
}
