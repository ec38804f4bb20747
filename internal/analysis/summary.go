package analysis

import (
	"fmt"
	"sort"

	"likertlab/domain/core"
	"likertlab/domain/dataset"
	domainStats "likertlab/domain/stats"

	"github.com/montanaflynn/stats"
)

// Summarizer computes per-condition descriptive statistics
type Summarizer struct{}

// NewSummarizer creates a new summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize computes counts, location and spread for every condition level of ds
func (s *Summarizer) Summarize(ds *dataset.Dataset) (*domainStats.Summary, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, core.NewDegenerateSampleError("dataset is empty")
	}

	summary := &domainStats.Summary{
		Total:        ds.Len(),
		QuantileType: QuantileType,
		Levels:       make([]domainStats.LevelSummary, 0, len(ds.Levels())),
	}

	for _, level := range ds.Levels() {
		ls, err := s.summarizeLevel(level, ds.Values(level))
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", level, err)
		}
		summary.Levels = append(summary.Levels, ls)
	}

	if got := summary.CountTotal(); got != ds.Len() {
		return nil, fmt.Errorf("rating counts sum to %d, dataset has %d observations", got, ds.Len())
	}
	return summary, nil
}

func (s *Summarizer) summarizeLevel(level dataset.Condition, data []float64) (domainStats.LevelSummary, error) {
	ls := domainStats.LevelSummary{
		Condition: level,
		N:         len(data),
		Counts:    make([]int, dataset.RatingLevels),
	}
	if len(data) == 0 {
		return ls, core.ErrEmptyGroup
	}

	for _, v := range data {
		idx := int(v) - dataset.MinRating
		if idx < 0 || idx >= dataset.RatingLevels {
			return ls, fmt.Errorf("rating %v outside [%d,%d]", v, dataset.MinRating, dataset.MaxRating)
		}
		ls.Counts[idx]++
	}

	ls.Mean, _ = stats.Mean(data)
	ls.Median, _ = stats.Median(data)
	ls.Min, _ = stats.Min(data)
	ls.Max, _ = stats.Max(data)
	// sample SD is undefined for a single observation; report zero spread
	if len(data) > 1 {
		ls.SD, _ = stats.StandardDeviationSample(data)
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	ls.Q1 = quantile7Sorted(sorted, 0.25)
	ls.Q3 = quantile7Sorted(sorted, 0.75)
	ls.IQR = ls.Q3 - ls.Q1

	return ls, nil
}

// ContingencyTable is a level x rating count table
type ContingencyTable struct {
	Levels  []dataset.Condition `json:"levels" yaml:"levels"`
	Ratings []int               `json:"ratings" yaml:"ratings"`
	Counts  [][]int             `json:"counts" yaml:"counts"`
}

// Tabulate builds the contingency table from a summary
func Tabulate(summary *domainStats.Summary) ContingencyTable {
	table := ContingencyTable{
		Ratings: make([]int, dataset.RatingLevels),
	}
	for i := range table.Ratings {
		table.Ratings[i] = dataset.MinRating + i
	}
	for _, level := range summary.Levels {
		table.Levels = append(table.Levels, level.Condition)
		row := make([]int, len(level.Counts))
		copy(row, level.Counts)
		table.Counts = append(table.Counts, row)
	}
	return table
}

// ColumnTotals returns the number of observations at each rating across levels
func (t ContingencyTable) ColumnTotals() []int {
	totals := make([]int, len(t.Ratings))
	for _, row := range t.Counts {
		for j, c := range row {
			totals[j] += c
		}
	}
	return totals
}
