package ordinal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogisticFunctions(t *testing.T) {
	assert.Equal(t, 0.5, logisticCDF(0))
	assert.Equal(t, 1.0, logisticCDF(math.Inf(1)))
	assert.Equal(t, 0.0, logisticCDF(math.Inf(-1)))
	assert.Equal(t, 0.25, logisticPDF(0))
	assert.Equal(t, 0.0, logisticPDF(math.Inf(1)))
	assert.InDelta(t, logisticPDF(2), logisticPDF(-2), 1e-15)
	assert.Equal(t, 0.0, logisticDPDF(0))
}

// gradient and information agree with central differences of the log-likelihood
func TestEvaluate_MatchesFiniteDifferences(t *testing.T) {
	ds := surveyDataset(t, []int{3, 4, 4, 5, 6, 6, 7}, []int{4, 5, 6, 6, 7, 7, 7, 3})
	cells, err := newCellCounts(ds)
	require.NoError(t, err)

	params := cells.startValues()
	params[len(params)-1] = 0.4
	dim := len(params)

	ll, grad, info := cells.evaluate(params, dim)
	assert.InDelta(t, cells.logLik(params), ll, 1e-12)

	const h = 1e-5
	for a := 0; a < dim; a++ {
		plus := append([]float64(nil), params...)
		minus := append([]float64(nil), params...)
		plus[a] += h
		minus[a] -= h
		numeric := (cells.logLik(plus) - cells.logLik(minus)) / (2 * h)
		assert.InDelta(t, numeric, grad[a], 1e-6, "gradient %d", a)

		_, gPlus, _ := cells.evaluate(plus, dim)
		_, gMinus, _ := cells.evaluate(minus, dim)
		for b := 0; b < dim; b++ {
			numericH := -(gPlus[b] - gMinus[b]) / (2 * h)
			assert.InDelta(t, numericH, info.At(a, b), 1e-5, "information %d,%d", a, b)
		}
	}
}

func TestLogLik_RejectsUnorderedThresholds(t *testing.T) {
	ds := surveyDataset(t, []int{1, 2, 3}, []int{1, 2, 3})
	cells, err := newCellCounts(ds)
	require.NoError(t, err)

	assert.True(t, math.IsInf(cells.logLik([]float64{1, -1, 0}), -1))
}

func TestNewCellCounts_DropsEmptyCategories(t *testing.T) {
	ds := surveyDataset(t, []int{2, 9, 9}, []int{5, 2})
	cells, err := newCellCounts(ds)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 5, 9}, cells.categories)
	assert.Equal(t, []float64{1, 0, 2}, cells.counts[0])
	assert.Equal(t, []float64{1, 1, 0}, cells.counts[1])
	assert.Equal(t, 2, cells.thresholds())
	assert.Equal(t, "5|9", cells.thresholdLabel(1))
}
