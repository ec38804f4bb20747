package ordinal

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Logistic link: F is the CDF, f its density and df the derivative of the density.
func logisticCDF(u float64) float64 {
	if math.IsInf(u, 1) {
		return 1
	}
	if math.IsInf(u, -1) {
		return 0
	}
	return 1 / (1 + math.Exp(-u))
}

func logisticPDF(u float64) float64 {
	if math.IsInf(u, 0) {
		return 0
	}
	e := math.Exp(-math.Abs(u))
	return e / ((1 + e) * (1 + e))
}

func logisticDPDF(u float64) float64 {
	return logisticPDF(u) * (1 - 2*logisticCDF(u))
}

// cellBounds returns the latent interval (theta_{k-1} - eta, theta_k - eta] of category k
func cellBounds(params []float64, k, j int, x float64) (lower, upper float64) {
	eta := params[j] * x
	lower, upper = math.Inf(-1), math.Inf(1)
	if k > 0 {
		lower = params[k-1] - eta
	}
	if k < j {
		upper = params[k] - eta
	}
	return lower, upper
}

// cellProb is F(upper) - F(lower), computed from the upper tail for the top category
func cellProb(lower, upper float64) float64 {
	if math.IsInf(upper, 1) {
		return logisticCDF(-lower)
	}
	return logisticCDF(upper) - logisticCDF(lower)
}

// logLik returns the multinomial log-likelihood of params = (theta_1..theta_J, beta).
// Non-increasing thresholds give -Inf.
func (c *cellCounts) logLik(params []float64) float64 {
	j := c.thresholds()
	ll := 0.0
	for x := 0; x < 2; x++ {
		for k, n := range c.counts[x] {
			if n == 0 {
				continue
			}
			p := cellProb(cellBounds(params, k, j, float64(x)))
			if !(p > 0) {
				return math.Inf(-1)
			}
			ll += n * math.Log(p)
		}
	}
	return ll
}

// evaluate returns the log-likelihood with its gradient and the negative Hessian
// (observed information) over the first nFree parameters. Parameters past nFree
// are held fixed.
func (c *cellCounts) evaluate(params []float64, nFree int) (float64, []float64, *mat.SymDense) {
	j := c.thresholds()
	dim := j + 1
	ll := 0.0
	grad := make([]float64, dim)
	info := mat.NewSymDense(dim, nil)

	v := make([]float64, dim)
	hp := mat.NewSymDense(dim, nil)

	for x := 0; x < 2; x++ {
		xf := float64(x)
		for k, n := range c.counts[x] {
			if n == 0 {
				continue
			}
			lower, upper := cellBounds(params, k, j, xf)
			p := cellProb(lower, upper)
			if !(p > 0) {
				return math.Inf(-1), grad[:nFree], subSym(info, nFree)
			}
			ll += n * math.Log(p)

			for i := range v {
				v[i] = 0
			}
			hp.Zero()

			fu, fl := logisticPDF(upper), logisticPDF(lower)
			dfu, dfl := logisticDPDF(upper), logisticDPDF(lower)

			// first and second derivatives of p
			if k < j {
				v[k] = fu
				hp.SetSym(k, k, dfu)
				hp.SetSym(k, j, -xf*dfu)
			}
			if k > 0 {
				v[k-1] = -fl
				hp.SetSym(k-1, k-1, -dfl)
				hp.SetSym(k-1, j, xf*dfl)
			}
			v[j] = -xf * (fu - fl)
			hp.SetSym(j, j, xf*xf*(dfu-dfl))

			// d log p = v/p ; d2 log p = Hp/p - v v'/p^2
			for a := 0; a < dim; a++ {
				grad[a] += n * v[a] / p
				for b := a; b < dim; b++ {
					h := hp.At(a, b)/p - v[a]*v[b]/(p*p)
					info.SetSym(a, b, info.At(a, b)-n*h)
				}
			}
		}
	}
	return ll, grad[:nFree], subSym(info, nFree)
}

// subSym copies the leading n x n block of s
func subSym(s *mat.SymDense, n int) *mat.SymDense {
	if s.SymmetricDim() == n {
		return s
	}
	out := mat.NewSymDense(n, nil)
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			out.SetSym(a, b, s.At(a, b))
		}
	}
	return out
}
