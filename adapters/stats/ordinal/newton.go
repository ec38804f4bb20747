package ordinal

import (
	"fmt"
	"math"

	"likertlab/domain/core"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Control holds the Newton-Raphson settings
type Control struct {
	GradTol     float64
	MaxIter     int
	MaxLineIter int
}

// DefaultControl matches the clm defaults
func DefaultControl() Control {
	return Control{GradTol: 1e-6, MaxIter: 100, MaxLineIter: 15}
}

// optimum is a converged maximum of the log-likelihood
type optimum struct {
	params     []float64
	logLik     float64
	info       *mat.SymDense // observed information over the free parameters
	iterations int
	maxGrad    float64
}

// maximize runs Newton-Raphson with step halving over the first nFree
// parameters of start, holding the rest fixed.
func (c *cellCounts) maximize(start []float64, nFree int, ctl Control) (*optimum, error) {
	params := make([]float64, len(start))
	copy(params, start)

	ll, grad, info := c.evaluate(params, nFree)
	if math.IsInf(ll, -1) || math.IsNaN(ll) {
		return nil, fmt.Errorf("%w: start values give a zero-probability cell", core.ErrConvergence)
	}

	trial := make([]float64, len(params))
	for iter := 0; ; iter++ {
		maxGrad := floats.Norm(grad, math.Inf(1))
		if maxGrad < ctl.GradTol {
			return &optimum{params: params, logLik: ll, info: info, iterations: iter, maxGrad: maxGrad}, nil
		}
		if iter >= ctl.MaxIter {
			return nil, core.NewConvergenceError(iter, maxGrad)
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(info); !ok {
			return nil, fmt.Errorf("%w at iteration %d", core.ErrSingularHessian, iter)
		}
		step := mat.NewVecDense(nFree, nil)
		if err := chol.SolveVecTo(step, mat.NewVecDense(nFree, grad)); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrSingularHessian, err)
		}

		accepted := false
		scale := 1.0
		for line := 0; line <= ctl.MaxLineIter; line++ {
			copy(trial, params)
			for i := 0; i < nFree; i++ {
				trial[i] += scale * step.AtVec(i)
			}
			trialLL := c.logLik(trial)
			if trialLL >= ll-1e-12*(1+math.Abs(ll)) {
				accepted = true
				break
			}
			scale /= 2
		}
		if !accepted {
			return nil, fmt.Errorf("%w: step halving failed after %d attempts (max |gradient| %.3g)",
				core.ErrConvergence, ctl.MaxLineIter, maxGrad)
		}

		copy(params, trial)
		ll, grad, info = c.evaluate(params, nFree)
	}
}

// covariance inverts the observed information
func covariance(info *mat.SymDense) (*mat.SymDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(info); !ok {
		return nil, core.ErrSingularHessian
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSingularHessian, err)
	}
	return &cov, nil
}

// conditionNumber is the ratio of the largest to the smallest eigenvalue of the information
func conditionNumber(info *mat.SymDense) float64 {
	var eig mat.EigenSym
	if ok := eig.Factorize(info, false); !ok {
		return math.Inf(1)
	}
	values := eig.Values(nil)
	lo, hi := floats.Min(values), floats.Max(values)
	if lo <= 0 {
		return math.Inf(1)
	}
	return hi / lo
}
