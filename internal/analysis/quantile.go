package analysis

import "math"

// QuantileType identifies the Hyndman-Fan sample quantile definition in use
const QuantileType = 7

// quantile7Sorted returns the Hyndman-Fan type 7 sample quantile (R's default)
// of already sorted data: with h = (n-1)p, x[floor(h)] + (h-floor(h)) * (x[floor(h)+1] - x[floor(h)]).
func quantile7Sorted(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}
