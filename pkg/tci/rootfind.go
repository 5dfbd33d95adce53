package tci

import "math"

// secant finds a root of f using the secant method seeded at x0, x1. It
// returns converged=false rather than panicking if the iteration budget
// is exhausted or the function becomes degenerate -- callers are expected
// to fall back to a safe default, per spec.md §7's NonConvergence policy.
func secant(f func(float64) float64, x0, x1, tol float64, maxIter int) (root float64, converged bool) {
	f0, f1 := f(x0), f(x1)

	for i := 0; i < maxIter; i++ {
		if f1 == f0 {
			return x1, false
		}

		x2 := x1 - f1*(x1-x0)/(f1-f0)
		if math.Abs(x2-x1) < tol {
			return x2, true
		}

		x0, f0 = x1, f1
		x1 = x2
		f1 = f(x1)
	}

	return x1, false
}

// brent finds a root of f on the bracket [lo, hi] where f(lo) and f(hi)
// have opposite signs (spec.md §4.7), using the Brent-Dekker algorithm.
// Returns ErrRootNotBracketed if the sign condition does not hold, or
// ErrNonConvergence if the iteration budget is exhausted first.
func brent(f func(float64) float64, lo, hi, tol float64, maxIter int) (float64, error) {
	a, b := lo, hi
	fa, fb := f(a), f(b)

	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if (fa > 0) == (fb > 0) {
		return 0, ErrRootNotBracketed
	}

	c, fc := a, fa
	d := b - a
	e := d

	for i := 0; i < maxIter; i++ {
		if (fb > 0) == (fc > 0) {
			// b and c are on the same side; re-bracket with a.
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, fa = b, fb
			b, fb = c, fc
			c, fc = a, fa
		}

		tolAct := 2*machineEps*math.Abs(b) + tol/2
		xm := (c - b) / 2

		if math.Abs(xm) <= tolAct || fb == 0 {
			return b, nil
		}

		var useBisection bool
		var s float64
		if math.Abs(e) < tolAct || math.Abs(fa) <= math.Abs(fb) {
			useBisection = true
		} else {
			if a == c {
				// Secant (linear interpolation).
				s = b - fb*(b-a)/(fb-fa)
			} else {
				// Inverse quadratic interpolation.
				r1 := fa / fc
				r2 := fb / fc
				r3 := fb / fa
				p := r3 * ((c-b)*r1*(r1-r2) - (b-a)*(r2-1))
				q := (r1 - 1) * (r2 - 1) * (r3 - 1)
				if q == 0 {
					useBisection = true
				} else {
					s = b + p/q
				}
			}

			if !useBisection {
				minStep := math.Min(math.Abs(d), math.Abs(e)) / 2
				if math.Abs(s-b) >= minStep || s <= math.Min(a, b) || s >= math.Max(a, b) {
					useBisection = true
				}
			}
		}

		if useBisection {
			s = b + xm
			e = d
			d = xm
		} else {
			e = d
			d = s - b
		}

		a, fa = b, fb
		b = s
		fb = f(b)
	}

	return b, ErrNonConvergence
}

const machineEps = 2.220446049250313e-16
