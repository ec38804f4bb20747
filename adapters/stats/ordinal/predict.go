package ordinal

import (
	"likertlab/domain/dataset"
	domainStats "likertlab/domain/stats"
)

// predictions gives the fitted probability of every rating and the expected
// rating for each level. Unobserved ratings get probability zero.
func predictions(full *fit) []domainStats.ClassPrediction {
	cells := full.cells
	j := cells.thresholds()
	params := full.optimum.params

	out := make([]domainStats.ClassPrediction, 0, 2)
	for x, level := range []dataset.Condition{cells.reference, cells.comparison} {
		pred := domainStats.ClassPrediction{
			Condition:     level,
			Probabilities: make([]float64, dataset.RatingLevels),
		}
		for k, rating := range cells.categories {
			p := cellProb(cellBounds(params, k, j, float64(x)))
			pred.Probabilities[rating-dataset.MinRating] = p
			pred.MeanClass += float64(rating) * p
		}
		out = append(out, pred)
	}
	return out
}
