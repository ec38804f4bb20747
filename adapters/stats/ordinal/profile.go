package ordinal

import (
	"fmt"
	"math"

	"likertlab/internal/analysis"
)

const (
	maxProfileExpansions = 30
	profileTolerance     = 1e-6
)

// profileLogLik is the log-likelihood maximized over the thresholds with beta held fixed
func (f *Fitter) profileLogLik(full *fit, beta float64) (float64, error) {
	j := full.cells.thresholds()
	start := make([]float64, j+1)
	copy(start, full.optimum.params)
	start[j] = beta

	opt, err := full.cells.maximize(start, j, f.control)
	if err != nil {
		return math.NaN(), fmt.Errorf("profile at beta=%g: %w", beta, err)
	}
	return opt.logLik, nil
}

// signedRoot is sign(beta - betaHat) * sqrt(2 * (logLik(betaHat) - profileLogLik(beta)))
func (f *Fitter) signedRoot(full *fit, beta float64) (float64, error) {
	ll, err := f.profileLogLik(full, beta)
	if err != nil {
		return math.NaN(), err
	}
	dev := math.Max(0, 2*(full.optimum.logLik-ll))
	r := math.Sqrt(dev)
	if beta < full.beta {
		r = -r
	}
	f.logger.Trace("profile %s=%.6g signed root %.6g", full.termName, beta, r)
	return r, nil
}

// profileCI solves signedRoot(beta) = -/+ z for the interval ends
func (f *Fitter) profileCI(full *fit) (float64, float64, error) {
	z := f.dist.ZCritical(f.confLevel)

	lower, err := f.profileBound(full, -1, z)
	if err != nil {
		return 0, 0, fmt.Errorf("lower bound: %w", err)
	}
	upper, err := f.profileBound(full, 1, z)
	if err != nil {
		return 0, 0, fmt.Errorf("upper bound: %w", err)
	}
	return lower, upper, nil
}

// profileBound walks away from betaHat in direction dir, doubling the step until
// the signed root passes dir*z, then refines with Brent's method
func (f *Fitter) profileBound(full *fit, dir, z float64) (float64, error) {
	var evalErr error
	target := func(beta float64) float64 {
		r, err := f.signedRoot(full, beta)
		if err != nil && evalErr == nil {
			evalErr = err
		}
		if err != nil {
			return dir * z
		}
		return r - dir*z
	}

	step := math.Max(full.betaSE, 1e-3)
	far := full.beta + dir*step
	fFar := target(far)
	for i := 0; dir*fFar < 0; i++ {
		if evalErr != nil {
			return math.NaN(), evalErr
		}
		if i >= maxProfileExpansions {
			return math.NaN(), fmt.Errorf("no bracket within %g of the estimate", step)
		}
		step *= 2
		far = full.beta + dir*step
		fFar = target(far)
	}
	if evalErr != nil {
		return math.NaN(), evalErr
	}

	fNear := -dir * z
	var root float64
	var err error
	if dir > 0 {
		root, err = analysis.Zeroin(target, full.beta, far, fNear, fFar, profileTolerance, analysis.DefaultRootMaxIter)
	} else {
		root, err = analysis.Zeroin(target, far, full.beta, fFar, fNear, profileTolerance, analysis.DefaultRootMaxIter)
	}
	if err != nil {
		return math.NaN(), err
	}
	if evalErr != nil {
		return math.NaN(), evalErr
	}
	return root, nil
}
