package ordinal

import (
	"fmt"
	"math"

	"likertlab/domain/core"
	"likertlab/domain/dataset"
)

// cellCounts is the response table the likelihood runs on: rows are the
// reference (x=0) and comparison (x=1) levels, columns the observed ratings.
type cellCounts struct {
	reference  dataset.Condition
	comparison dataset.Condition
	categories []int        // observed ratings, ascending
	counts     [2][]float64 // counts[x][k]
	n          int
}

func newCellCounts(ds *dataset.Dataset) (*cellCounts, error) {
	reference, comparison, err := ds.TwoLevels()
	if err != nil {
		return nil, err
	}

	var raw [2][dataset.RatingLevels]float64
	for x, level := range []dataset.Condition{reference, comparison} {
		ratings := ds.Ratings(level)
		if len(ratings) == 0 {
			return nil, fmt.Errorf("%w: level %s", core.ErrEmptyGroup, level)
		}
		for _, r := range ratings {
			raw[x][r-dataset.MinRating]++
		}
	}

	c := &cellCounts{reference: reference, comparison: comparison, n: ds.Len()}
	for i := 0; i < dataset.RatingLevels; i++ {
		if raw[0][i]+raw[1][i] == 0 {
			continue
		}
		c.categories = append(c.categories, dataset.MinRating+i)
		c.counts[0] = append(c.counts[0], raw[0][i])
		c.counts[1] = append(c.counts[1], raw[1][i])
	}

	if len(c.categories) < 2 {
		return nil, core.NewDegenerateSampleError(
			fmt.Sprintf("ordinal model needs at least 2 observed ratings, found %v", c.categories))
	}
	return c, nil
}

// thresholds is the number of cut points between observed categories
func (c *cellCounts) thresholds() int {
	return len(c.categories) - 1
}

// startValues returns logits of the pooled cumulative proportions and beta = 0
func (c *cellCounts) startValues() []float64 {
	j := c.thresholds()
	params := make([]float64, j+1)
	cum := 0.0
	for k := 0; k < j; k++ {
		cum += c.counts[0][k] + c.counts[1][k]
		p := cum / float64(c.n)
		params[k] = math.Log(p / (1 - p))
	}
	return params
}

// thresholdLabel names the cut point between categories k and k+1, e.g. "6|7"
func (c *cellCounts) thresholdLabel(k int) string {
	return fmt.Sprintf("%d|%d", c.categories[k], c.categories[k+1])
}

// checkSeparation fails when every rating of one level is at or above every
// rating of the other. The likelihood then keeps increasing as beta grows and
// the model has no finite estimate.
func (c *cellCounts) checkSeparation() error {
	var lo, hi [2]int
	for x := 0; x < 2; x++ {
		lo[x], hi[x] = -1, -1
		for k, n := range c.counts[x] {
			if n == 0 {
				continue
			}
			if lo[x] < 0 {
				lo[x] = k
			}
			hi[x] = k
		}
	}

	switch {
	case hi[0] <= lo[1]:
		return fmt.Errorf("%w: %s ratings (max %d) never exceed %s ratings (min %d)",
			core.ErrSeparation, c.reference, c.categories[hi[0]], c.comparison, c.categories[lo[1]])
	case hi[1] <= lo[0]:
		return fmt.Errorf("%w: %s ratings (max %d) never exceed %s ratings (min %d)",
			core.ErrSeparation, c.comparison, c.categories[hi[1]], c.reference, c.categories[lo[0]])
	}
	return nil
}
