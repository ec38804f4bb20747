package ordinal

import (
	"fmt"
	"math"

	"likertlab/domain/dataset"
	domainStats "likertlab/domain/stats"
)

const latentScale = "latent"

// marginalMeans estimates x_g*beta - mean(theta) for each level with
// delta-method standard errors, plus the comparison - reference contrast
func (f *Fitter) marginalMeans(full *fit) domainStats.MarginalMeans {
	cells := full.cells
	j := cells.thresholds()
	params := full.optimum.params
	z := f.dist.ZCritical(f.confLevel)

	meanTheta := 0.0
	for k := 0; k < j; k++ {
		meanTheta += params[k]
	}
	meanTheta /= float64(j)

	out := domainStats.MarginalMeans{Scale: latentScale}
	for x, level := range []dataset.Condition{cells.reference, cells.comparison} {
		xf := float64(x)
		l := make([]float64, j+1)
		for k := 0; k < j; k++ {
			l[k] = -1 / float64(j)
		}
		l[j] = xf

		est := xf*full.beta - meanTheta
		se := math.Sqrt(quadForm(full, l))
		out.Means = append(out.Means, domainStats.MarginalMean{
			Condition: level,
			Estimate:  est,
			StdError:  se,
			CI:        domainStats.ConfidenceInterval{Lower: est - z*se, Upper: est + z*se, Level: f.confLevel},
		})
	}

	zValue := full.beta / full.betaSE
	out.Contrasts = []domainStats.Contrast{{
		Label:    fmt.Sprintf("%s - %s", cells.comparison, cells.reference),
		Estimate: full.beta,
		StdError: full.betaSE,
		ZValue:   zValue,
		PValue:   f.dist.TwoSidedNormalPValue(zValue),
	}}
	return out
}

// quadForm returns l' V l
func quadForm(full *fit, l []float64) float64 {
	sum := 0.0
	for a := range l {
		for b := range l {
			sum += l[a] * full.cov.At(a, b) * l[b]
		}
	}
	return sum
}
