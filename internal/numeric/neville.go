package numeric

import "math"

// #region polynomial
// neville evaluates the polynomial through (xs[i], ys[i]) at x. Points are
// added in slice order; stop, when non-nil, ends the tableau early once it
// accepts the current estimate. Returns the value and the last correction.
func neville(xs, ys []float64, x float64, stop func(y, dy float64) bool) (float64, float64) {
	var buf [maxOrder]float64
	p := buf[:0]
	if len(xs) > maxOrder {
		p = make([]float64, 0, len(xs))
	}
	p = p[:len(xs)]

	var y, dy float64
	for m := range xs {
		p[m] = ys[m]
		for i := m - 1; i >= 0; i-- {
			p[i] = ((x-xs[m])*p[i] + (xs[i]-x)*p[i+1]) / (xs[i] - xs[m])
		}
		dy = p[0] - y
		y = p[0]
		if m > 0 && stop != nil && stop(y, dy) {
			break
		}
	}
	return y, dy
}

// #endregion polynomial

// #region rational
// rational evaluates the diagonal rational function through (xs, ys) at x
// with the Bulirsch-Stoer recurrence.
func rational(xs, ys []float64, x float64) (float64, float64) {
	const tiny = 1e-300
	n := len(xs)
	c := make([]float64, n)
	d := make([]float64, n)

	ns := 0
	hh := math.Abs(x - xs[0])
	for i := 0; i < n; i++ {
		h := math.Abs(x - xs[i])
		if h == 0 {
			return ys[i], 0
		}
		if h < hh {
			ns = i
			hh = h
		}
		c[i] = ys[i]
		d[i] = ys[i] + tiny
	}

	y := ys[ns]
	ns--
	var dy float64
	for m := 1; m < n; m++ {
		for i := 0; i < n-m; i++ {
			w := c[i+1] - d[i]
			h := xs[i+m] - x
			t := (xs[i] - x) * d[i] / h
			dd := t - c[i+1]
			if dd == 0 {
				// pole at x; fall back to the polynomial estimate
				return neville(xs, ys, x, nil)
			}
			dd = w / dd
			d[i] = c[i+1] * dd
			c[i] = t * dd
		}
		if 2*(ns+1) < n-m {
			dy = c[ns+1]
		} else {
			dy = d[ns]
			ns--
		}
		y += dy
	}
	return y, dy
}

// #endregion rational
