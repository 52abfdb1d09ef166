package numeric

import (
	"math"
	"sort"

	"github.com/danielpatrickdp/eloss/internal/errs"
)

// #region interpolant
// Interpolant is an immutable 1D table. It is safe for concurrent use.
type Interpolant struct {
	def  Definition1D
	g    grid
	raw  []float64
	sub  []float64 // ln raw when LogSubst, raw otherwise
	bad  []int     // prefix count of non-positive raw values
	stop func(y, dy float64) bool
}

// NewInterpolant wraps precomputed node values. values[i] belongs to the i-th
// point of def.X.Points().
func NewInterpolant(def Definition1D, values []float64) (*Interpolant, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if len(values) != def.X.Nodes {
		return nil, errs.Configuration("numeric.NewInterpolant", "%d values for %d nodes", len(values), def.X.Nodes)
	}

	ip := &Interpolant{
		def:  def,
		g:    newGrid(def.X),
		raw:  append([]float64(nil), values...),
		sub:  make([]float64, len(values)),
		bad:  make([]int, len(values)+1),
		stop: stopRule(def.Relative, def.Precision),
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Numeric("numeric.NewInterpolant", "node %d is %g", i, v)
		}
		ip.bad[i+1] = ip.bad[i]
		ip.sub[i] = v
		if def.LogSubst {
			if v > 0 {
				ip.sub[i] = math.Log(v)
			} else {
				ip.bad[i+1]++
			}
		}
	}
	return ip, nil
}

func stopRule(relative bool, precision float64) func(y, dy float64) bool {
	if precision <= 0 {
		return nil
	}
	if relative {
		return func(y, dy float64) bool { return math.Abs(dy) <= precision*math.Abs(y) }
	}
	return func(_, dy float64) bool { return math.Abs(dy) <= precision }
}

// Definition returns the table definition.
func (ip *Interpolant) Definition() Definition1D { return ip.def }

// Values returns a copy of the raw node values.
func (ip *Interpolant) Values() []float64 { return append([]float64(nil), ip.raw...) }

// Cell returns i such that x lies in [x_i, x_i+1], clamped to the grid.
func (ip *Interpolant) Cell(x float64) int { return ip.g.interval(ip.g.toU(x)) }

// Node returns the abscissa and raw value of node i. The edge nodes return
// the exact domain bounds.
func (ip *Interpolant) Node(i int) (float64, float64) {
	switch i {
	case 0:
		return ip.def.X.Min, ip.raw[i]
	case len(ip.raw) - 1:
		return ip.def.X.Max, ip.raw[i]
	}
	return ip.g.toX(ip.g.u[i]), ip.raw[i]
}

// #endregion interpolant

// #region forward
// Interpolate returns y(x). Outside the domain the edge stencil extrapolates.
func (ip *Interpolant) Interpolate(x float64) float64 {
	if math.IsNaN(x) {
		errs.Fatal(errs.Numeric("numeric.Interpolate", "NaN abscissa"))
	}
	return ip.at(ip.g.toU(x))
}

func (ip *Interpolant) at(u float64) float64 {
	start := ip.g.stencil(u)
	end := start + ip.g.Order
	if ip.def.LogSubst && ip.bad[end] > ip.bad[start] {
		return ip.linear(u)
	}
	y := evalStencil(ip.g.u[start:end], ip.sub[start:end], u, ip.g.Rational, ip.stop)
	if ip.def.LogSubst {
		return math.Exp(y)
	}
	return y
}

// linear interpolates the raw values; used where ln y is undefined.
func (ip *Interpolant) linear(u float64) float64 {
	i := ip.g.interval(u)
	t := (u - ip.g.u[i]) / ip.g.step
	return ip.raw[i] + t*(ip.raw[i+1]-ip.raw[i])
}

// evalStencil orders the stencil by distance from u and runs the tableau.
func evalStencil(us, ys []float64, u float64, rat bool, stop func(y, dy float64) bool) float64 {
	n := len(us)
	var xb, yb [maxOrder]float64

	i0 := 0
	for i := 1; i < n; i++ {
		if math.Abs(us[i]-u) < math.Abs(us[i0]-u) {
			i0 = i
		}
	}
	xb[0], yb[0] = us[i0], ys[i0]
	l, r := i0-1, i0+1
	for k := 1; k < n; k++ {
		if r >= n || (l >= 0 && u-us[l] <= us[r]-u) {
			xb[k], yb[k] = us[l], ys[l]
			l--
		} else {
			xb[k], yb[k] = us[r], ys[r]
			r++
		}
	}

	if rat {
		y, _ := rational(xb[:n], yb[:n], u)
		return y
	}
	y, _ := neville(xb[:n], yb[:n], u, stop)
	return y
}

// #endregion forward

// #region inverse
// FindLimit returns x with Interpolate(x) = y. The node values must be
// monotone. Targets beyond the tabulated range clamp to the domain edge.
func (ip *Interpolant) FindLimit(y float64) (float64, error) {
	if math.IsNaN(y) {
		return 0, errs.Numeric("numeric.FindLimit", "NaN target")
	}
	n := len(ip.raw)
	inc := ip.raw[n-1] >= ip.raw[0]
	below := func(v float64) bool { return v <= y }
	if !inc {
		below = func(v float64) bool { return v >= y }
	}
	if !below(ip.raw[0]) || y == ip.raw[0] {
		return ip.def.X.Min, nil
	}
	if below(ip.raw[n-1]) {
		return ip.def.X.Max, nil
	}

	i := sort.Search(n, func(k int) bool { return !below(ip.raw[k]) }) - 1
	if (ip.raw[i]-y)*(ip.raw[i+1]-y) > 0 {
		return 0, errs.Numeric("numeric.FindLimit", "no bracket for %g around node %d", y, i)
	}

	lo, hi := ip.g.u[i], ip.g.u[i+1]
	guess := ip.inverseGuess(i, y)
	if !(guess > lo && guess < hi) {
		t := (y - ip.raw[i]) / (ip.raw[i+1] - ip.raw[i])
		guess = lo + t*(hi-lo)
	}

	f := func(u float64) float64 { return ip.at(u) - y }
	fg := f(guess)
	if fg == 0 {
		return ip.g.toX(guess), nil
	}
	flo, fhi := f(lo), f(hi)
	switch {
	case (flo > 0) != (fg > 0):
		hi = guess
	case (fhi > 0) != (fg > 0):
		lo = guess
	default:
		// the forward interpolant does not change sign inside the cell
		return ip.g.toX(guess), nil
	}

	u, err := Bisect(f, lo, hi, 1e-12*ip.g.step)
	if err != nil {
		return 0, errs.Wrap(errs.KindNumeric, "numeric.FindLimit", err)
	}
	return ip.g.toX(u), nil
}

// inverseGuess interpolates u as a function of the node values around
// interval i.
func (ip *Interpolant) inverseGuess(i int, y float64) float64 {
	k := ip.def.OrderY
	start := i + 1 - k/2
	if start > len(ip.raw)-k {
		start = len(ip.raw) - k
	}
	if start < 0 {
		start = 0
	}
	end := start + k

	vals, target := ip.raw[start:end], y
	if ip.def.LogSubst && ip.bad[end] == ip.bad[start] && y > 0 {
		vals, target = ip.sub[start:end], math.Log(y)
	}
	return evalStencil(vals, ip.g.u[start:end], target, ip.def.RationalY, nil)
}

// #endregion inverse
