package analysis

import (
	"errors"
	"fmt"
	"math"
)

// DefaultRootMaxIter matches the iteration cap of R's uniroot
const DefaultRootMaxIter = 1000

var (
	// ErrRootNotBracketed is returned when f(lower) and f(upper) share a sign
	ErrRootNotBracketed = errors.New("root is not bracketed")
	// ErrRootMaxIter is returned when Brent's method runs out of iterations
	ErrRootMaxIter = errors.New("root finder reached the iteration limit")
)

// Zeroin finds a root of f in [lower, upper] with Brent's method, given the function
// values at both ends. The step logic is the classic Brent/Dekker scheme used by R's
// uniroot, so results agree with R to within tol.
func Zeroin(f func(float64) float64, lower, upper, fLower, fUpper, tol float64, maxIter int) (float64, error) {
	a, b := lower, upper
	fa, fb := fLower, fUpper
	c, fc := a, fa

	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if (fa > 0) == (fb > 0) {
		return math.NaN(), fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrRootNotBracketed, lower, fa, upper, fb)
	}

	for iter := 0; iter <= maxIter; iter++ {
		prevStep := b - a

		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tolAct := 2*epsilon*math.Abs(b) + tol/2
		newStep := (c - b) / 2

		if math.Abs(newStep) <= tolAct || fb == 0 {
			return b, nil
		}

		if math.Abs(prevStep) >= tolAct && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			cb := c - b
			if a == c {
				// linear interpolation
				t1 := fb / fa
				p = cb * t1
				q = 1 - t1
			} else {
				// inverse quadratic interpolation
				q = fa / fc
				t1 := fb / fc
				t2 := fb / fa
				p = t2 * (cb*q*(q-t1) - (b-a)*(t1-1))
				q = (q - 1) * (t1 - 1) * (t2 - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}

			if p < 0.75*cb*q-math.Abs(tolAct*q)/2 && p < math.Abs(prevStep*q/2) {
				newStep = p / q
			}
		}

		if math.Abs(newStep) < tolAct {
			if newStep > 0 {
				newStep = tolAct
			} else {
				newStep = -tolAct
			}
		}

		a, fa = b, fb
		b += newStep
		fb = f(b)
		if (fb > 0 && fc > 0) || (fb < 0 && fc < 0) {
			c, fc = a, fa
		}
	}

	return b, fmt.Errorf("%w (%d iterations)", ErrRootMaxIter, maxIter)
}

// epsilon is the IEEE double machine epsilon (DBL_EPSILON)
const epsilon = 2.220446049250313e-16
