package numeric

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/errs"
)

// DefaultRootIterations bounds both root finders.
const DefaultRootIterations = 200

// #region newton
// FindRoot solves f(x) = 0 on the bracket [lo, hi] with Newton steps that
// fall back to bisection whenever a step leaves the bracket or converges too
// slowly. fdf returns f and its derivative. x0 is the first guess; values
// outside the bracket start from the midpoint. tol is relative to the
// bracket magnitude.
func FindRoot(fdf func(x float64) (float64, float64), lo, hi, x0, tol float64) (float64, error) {
	fl, _ := fdf(lo)
	fh, _ := fdf(hi)
	if fl == 0 {
		return lo, nil
	}
	if fh == 0 {
		return hi, nil
	}
	if math.IsNaN(fl) || math.IsNaN(fh) || (fl > 0) == (fh > 0) {
		return 0, errs.Numeric("numeric.FindRoot", "root not bracketed by [%g, %g] (f = %g, %g)", lo, hi, fl, fh)
	}

	xacc := tol * math.Max(math.Abs(lo), math.Abs(hi))
	xl, xh := lo, hi
	if fl > 0 {
		xl, xh = hi, lo
	}

	rts := x0
	if !(rts > math.Min(lo, hi) && rts < math.Max(lo, hi)) {
		rts = 0.5 * (lo + hi)
	}
	dxold := math.Abs(hi - lo)
	dx := dxold
	f, df := fdf(rts)

	for i := 0; i < DefaultRootIterations; i++ {
		if ((rts-xh)*df-f)*((rts-xl)*df-f) > 0 || math.Abs(2*f) > math.Abs(dxold*df) {
			dxold = dx
			dx = 0.5 * (xh - xl)
			rts = xl + dx
			if xl == rts {
				return rts, nil
			}
		} else {
			dxold = dx
			dx = f / df
			prev := rts
			rts -= dx
			if prev == rts {
				return rts, nil
			}
		}
		if math.Abs(dx) < xacc {
			return rts, nil
		}
		f, df = fdf(rts)
		if math.IsNaN(f) {
			return 0, errs.Numeric("numeric.FindRoot", "function is NaN at %g", rts)
		}
		if f == 0 {
			return rts, nil
		}
		if f < 0 {
			xl = rts
		} else {
			xh = rts
		}
	}
	return 0, errs.Numeric("numeric.FindRoot", "no convergence on [%g, %g]", lo, hi)
}

// #endregion newton

// #region illinois
// Bisect solves f(x) = 0 on [lo, hi] with the Illinois variant of regula
// falsi. It stops once the bracket is narrower than the absolute tolerance
// tol or the iterate stalls.
func Bisect(f func(float64) float64, lo, hi, tol float64) (float64, error) {
	s, t := lo, hi
	fs, ft := f(s), f(t)
	if fs == 0 {
		return s, nil
	}
	if ft == 0 {
		return t, nil
	}
	if math.IsNaN(fs) || math.IsNaN(ft) || (fs > 0) == (ft > 0) {
		return 0, errs.Numeric("numeric.Bisect", "root not bracketed by [%g, %g] (f = %g, %g)", lo, hi, fs, ft)
	}

	side := 0
	r := s
	for i := 0; i < DefaultRootIterations; i++ {
		next := (fs*t - ft*s) / (fs - ft)
		if math.Abs(t-s) < tol || next == r {
			return next, nil
		}
		r = next
		fr := f(r)
		switch {
		case math.IsNaN(fr):
			return 0, errs.Numeric("numeric.Bisect", "function is NaN at %g", r)
		case fr == 0:
			return r, nil
		case (fr > 0) == (ft > 0):
			t, ft = r, fr
			if side == -1 {
				fs /= 2
			}
			side = -1
		default:
			s, fs = r, fr
			if side == 1 {
				ft /= 2
			}
			side = 1
		}
	}
	return 0, errs.Numeric("numeric.Bisect", "no convergence on [%g, %g]", lo, hi)
}

// #endregion illinois
