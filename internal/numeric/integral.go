// Package numeric holds the quadrature, root finding and interpolation
// routines the cross sections and utilities are built on. The algorithms are
// tuned for smooth kinematic shapes on log-spaced energy domains.
package numeric

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/errs"
)

// #region method
// Method selects the variable the quadrature runs in.
type Method int

const (
	// Plain integrates f(x) dx directly.
	Plain Method = iota
	// LogSubstitution integrates f(e^t) e^t dt over [ln a, ln b]. Requires a > 0.
	LogSubstitution
)

func (m Method) String() string {
	switch m {
	case LogSubstitution:
		return "log"
	default:
		return "plain"
	}
}

// #endregion method

// #region integral
// Integral is an adaptive Romberg integrator: trapezoid refinement followed
// by polynomial extrapolation of the step sequence to h = 0.
type Integral struct {
	Order     int     // points used in the extrapolation
	MaxSteps  int     // trapezoid refinements before giving up
	Precision float64 // relative precision of the result
}

// DefaultIntegral returns the integrator used throughout the engine.
func DefaultIntegral() Integral {
	return Integral{Order: 5, MaxSteps: 20, Precision: 1e-6}
}

// Integrate returns the integral of f over [a, b]. Reversed limits flip the
// sign. LogSubstitution falls back to Plain when a or b is not positive.
func (q Integral) Integrate(f func(float64) float64, a, b float64, method Method) (float64, error) {
	if a == b {
		return 0, nil
	}
	if a > b {
		r, err := q.Integrate(f, b, a, method)
		return -r, err
	}
	if method == LogSubstitution && a > 0 {
		g := func(t float64) float64 {
			x := math.Exp(t)
			return f(x) * x
		}
		return q.romberg(g, math.Log(a), math.Log(b))
	}
	return q.romberg(f, a, b)
}

func (q Integral) romberg(f func(float64) float64, a, b float64) (float64, error) {
	k := q.Order
	if k < 2 {
		k = 2
	}
	steps := q.MaxSteps
	if steps < k {
		steps = k
	}

	s := make([]float64, 0, steps)
	h := make([]float64, 0, steps)
	xs := make([]float64, k)
	ys := make([]float64, k)

	var tr trapezoid
	hj := 1.0
	for j := 0; j < steps; j++ {
		s = append(s, tr.next(f, a, b))
		h = append(h, hj)
		if len(s) >= k {
			// finest step first so the tableau grows outward from h = 0
			for i := 0; i < k; i++ {
				xs[i] = h[len(h)-1-i]
				ys[i] = s[len(s)-1-i]
			}
			ss, dss := neville(xs, ys, 0, nil)
			if math.IsNaN(ss) {
				return 0, errs.Numeric("numeric.Integrate", "integrand is NaN on [%g, %g]", a, b)
			}
			if math.Abs(dss) <= q.Precision*math.Abs(ss) || (ss == 0 && dss == 0) {
				return ss, nil
			}
		}
		hj *= 0.25
	}
	return 0, errs.Numeric("numeric.Integrate", "no convergence on [%g, %g] after %d steps", a, b, steps)
}

// #endregion integral

// #region trapezoid
// trapezoid refines the extended trapezoidal rule one level per call.
type trapezoid struct {
	n int
	s float64
}

func (t *trapezoid) next(f func(float64) float64, a, b float64) float64 {
	t.n++
	if t.n == 1 {
		t.s = 0.5 * (b - a) * (f(a) + f(b))
		return t.s
	}
	it := 1 << (t.n - 2)
	del := (b - a) / float64(it)
	x := a + 0.5*del
	sum := 0.0
	for i := 0; i < it; i++ {
		sum += f(x)
		x += del
	}
	t.s = 0.5 * (t.s + (b-a)*sum/float64(it))
	return t.s
}

// #endregion trapezoid
