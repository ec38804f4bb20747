package analysis

import (
	"testing"

	"likertlab/domain/core"
	"likertlab/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	ds, err := dataset.FromGroups(1, "inline", map[dataset.Condition][]int{
		"graph":    {1, 2, 3, 4},
		"no_graph": {5, 1, 4, 2, 3},
	})
	require.NoError(t, err)

	summary, err := NewSummarizer().Summarize(ds)
	require.NoError(t, err)

	assert.Equal(t, 9, summary.Total)
	assert.Equal(t, 7, summary.QuantileType)
	assert.Equal(t, ds.Len(), summary.CountTotal())
	require.Len(t, summary.Levels, 2)

	graph := summary.Levels[0]
	assert.Equal(t, dataset.Condition("graph"), graph.Condition)
	assert.Equal(t, 4, graph.N)
	assert.Equal(t, []int{1, 1, 1, 1, 0, 0, 0, 0, 0}, graph.Counts)
	assert.InDelta(t, 2.5, graph.Median, 1e-12)
	assert.InDelta(t, 1.75, graph.Q1, 1e-12)
	assert.InDelta(t, 3.25, graph.Q3, 1e-12)
	assert.InDelta(t, 1.5, graph.IQR, 1e-12)
	assert.InDelta(t, 2.5, graph.Mean, 1e-12)
	assert.InDelta(t, 1.2909944487358056, graph.SD, 1e-12)
	assert.Equal(t, 1.0, graph.Min)
	assert.Equal(t, 4.0, graph.Max)

	noGraph := summary.Levels[1]
	assert.Equal(t, []int{1, 1, 1, 1, 1, 0, 0, 0, 0}, noGraph.Counts)
	assert.InDelta(t, 3.0, noGraph.Median, 1e-12)
	assert.InDelta(t, 2.0, noGraph.Q1, 1e-12)
	assert.InDelta(t, 4.0, noGraph.Q3, 1e-12)
}

func TestSummarize_SingleObservationHasZeroSpread(t *testing.T) {
	ds, err := dataset.FromGroups(1, "inline", map[dataset.Condition][]int{"graph": {9}})
	require.NoError(t, err)

	summary, err := NewSummarizer().Summarize(ds)
	require.NoError(t, err)

	level := summary.Levels[0]
	assert.Equal(t, 0.0, level.SD)
	assert.Equal(t, 0.0, level.IQR)
	assert.Equal(t, 9.0, level.Median)
	assert.Equal(t, 1, level.Counts[8])
}

func TestSummarize_EmptyDataset(t *testing.T) {
	_, err := NewSummarizer().Summarize(nil)
	assert.True(t, core.IsDegenerateSampleError(err))
}

func TestTabulate(t *testing.T) {
	ds, err := dataset.FromGroups(1, "inline", map[dataset.Condition][]int{
		"graph":    {9, 9, 8},
		"no_graph": {8, 1},
	})
	require.NoError(t, err)

	summary, err := NewSummarizer().Summarize(ds)
	require.NoError(t, err)

	table := Tabulate(summary)
	assert.Equal(t, []dataset.Condition{"graph", "no_graph"}, table.Levels)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, table.Ratings)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0, 1, 2}, table.Counts[0])
	assert.Equal(t, []int{1, 0, 0, 0, 0, 0, 0, 2, 2}, table.ColumnTotals())

	// the table is a copy
	table.Counts[0][8] = 100
	assert.Equal(t, 2, summary.Levels[0].Counts[8])
}
