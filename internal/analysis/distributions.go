package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides the reference distributions used by every test in the pipeline.
// Tail probabilities are computed from the lower tail of -|x| to keep precision for tiny p-values.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// NormalCDF computes cumulative distribution function for standard normal
func (d *Distributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes quantile function for standard normal (inverse CDF)
func (d *Distributions) NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// TwoSidedNormalPValue returns 2 * P(Z <= -|z|), capped at 1
func (d *Distributions) TwoSidedNormalPValue(z float64) float64 {
	if math.IsNaN(z) {
		return 1.0
	}
	return math.Min(1.0, 2*distuv.UnitNormal.CDF(-math.Abs(z)))
}

// ZCritical returns the two-sided critical value for a confidence level, e.g. 1.96 for 0.95
func (d *Distributions) ZCritical(confidenceLevel float64) float64 {
	return distuv.UnitNormal.Quantile(1 - (1-confidenceLevel)/2)
}

// TTestPValue computes the two-sided p-value for a t statistic with (possibly fractional) df
func (d *Distributions) TTestPValue(tStatistic, degreesOfFreedom float64) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(tStatistic) {
		return 1.0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}
	return math.Min(1.0, 2*tDist.CDF(-math.Abs(tStatistic)))
}

// TCritical returns the two-sided critical value of Student's t for a confidence level
func (d *Distributions) TCritical(confidenceLevel, degreesOfFreedom float64) float64 {
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}
	return tDist.Quantile(1 - (1-confidenceLevel)/2)
}

// ChiSquarePValue computes the upper-tail p-value for a chi-square statistic
func (d *Distributions) ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(chiSquare) {
		return 1.0
	}
	if chiSquare <= 0 {
		return 1.0
	}
	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return chiDist.Survival(chiSquare)
}
