package numeric

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/errs"
)

// #region interpolant2d
// Interpolant2D is an immutable table z(x, y) on a tensor grid. Values are
// stored row-major: index i*ny + j belongs to (x_i, y_j).
type Interpolant2D struct {
	def  Definition2D
	gx   grid
	gy   grid
	raw  []float64
	sub  []float64
	stop func(y, dy float64) bool
}

// NewInterpolant2D wraps precomputed node values.
func NewInterpolant2D(def Definition2D, values []float64) (*Interpolant2D, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if len(values) != def.X.Nodes*def.Y.Nodes {
		return nil, errs.Configuration("numeric.NewInterpolant2D", "%d values for %dx%d nodes",
			len(values), def.X.Nodes, def.Y.Nodes)
	}
	ip := &Interpolant2D{
		def:  def,
		gx:   newGrid(def.X),
		gy:   newGrid(def.Y),
		raw:  append([]float64(nil), values...),
		sub:  make([]float64, len(values)),
		stop: stopRule(def.Relative, def.Precision),
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Numeric("numeric.NewInterpolant2D", "node %d is %g", i, v)
		}
		ip.sub[i] = v
		if def.LogSubst && v > 0 {
			ip.sub[i] = math.Log(v)
		}
	}
	return ip, nil
}

// Definition returns the table definition.
func (ip *Interpolant2D) Definition() Definition2D { return ip.def }

// Values returns a copy of the raw node values.
func (ip *Interpolant2D) Values() []float64 { return append([]float64(nil), ip.raw...) }

// #endregion interpolant2d

// #region forward2d
// Interpolate returns z(x, y): first along x for each y node of the stencil,
// then along y.
func (ip *Interpolant2D) Interpolate(x, y float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) {
		errs.Fatal(errs.Numeric("numeric.Interpolate2D", "NaN abscissa (%g, %g)", x, y))
	}
	ux, uy := ip.gx.toU(x), ip.gy.toU(y)
	sy := ip.gy.stencil(uy)
	ey := sy + ip.gy.Order

	var col [maxOrder]float64
	logOK := true
	for j := sy; j < ey; j++ {
		v, ok := ip.alongX(ux, j)
		col[j-sy] = v
		logOK = logOK && ok
	}
	if !ip.def.LogSubst {
		return evalStencil(ip.gy.u[sy:ey], col[:ey-sy], uy, ip.gy.Rational, ip.stop)
	}
	if !logOK {
		return ip.bilinear(ux, uy)
	}
	return math.Exp(evalStencil(ip.gy.u[sy:ey], col[:ey-sy], uy, ip.gy.Rational, ip.stop))
}

// alongX interpolates column j at ux in substituted coordinates. ok is false
// when the stencil holds a non-positive value under log substitution.
func (ip *Interpolant2D) alongX(ux float64, j int) (float64, bool) {
	ny := ip.def.Y.Nodes
	sx := ip.gx.stencil(ux)
	k := ip.gx.Order

	var ys [maxOrder]float64
	for i := 0; i < k; i++ {
		idx := (sx+i)*ny + j
		if ip.def.LogSubst && ip.raw[idx] <= 0 {
			return 0, false
		}
		ys[i] = ip.sub[idx]
	}
	return evalStencil(ip.gx.u[sx:sx+k], ys[:k], ux, ip.gx.Rational, ip.stop), true
}

// column returns raw z values over all y nodes at x.
func (ip *Interpolant2D) column(ux float64) []float64 {
	ny := ip.def.Y.Nodes
	out := make([]float64, ny)
	for j := 0; j < ny; j++ {
		v, ok := ip.alongX(ux, j)
		switch {
		case !ok:
			i := ip.gx.interval(ux)
			t := (ux - ip.gx.u[i]) / ip.gx.step
			a, b := ip.raw[i*ny+j], ip.raw[(i+1)*ny+j]
			out[j] = a + t*(b-a)
		case ip.def.LogSubst:
			out[j] = math.Exp(v)
		default:
			out[j] = v
		}
	}
	return out
}

func (ip *Interpolant2D) bilinear(ux, uy float64) float64 {
	ny := ip.def.Y.Nodes
	i, j := ip.gx.interval(ux), ip.gy.interval(uy)
	tx := (ux - ip.gx.u[i]) / ip.gx.step
	ty := (uy - ip.gy.u[j]) / ip.gy.step
	z00, z01 := ip.raw[i*ny+j], ip.raw[i*ny+j+1]
	z10, z11 := ip.raw[(i+1)*ny+j], ip.raw[(i+1)*ny+j+1]
	return (1-tx)*((1-ty)*z00+ty*z01) + tx*((1-ty)*z10+ty*z11)
}

// #endregion forward2d

// #region inverse2d
// FindLimit returns y with Interpolate(x, y) = z, assuming z is monotone in
// y at fixed x. Targets beyond the column range clamp to the y domain edge.
func (ip *Interpolant2D) FindLimit(x, z float64) (float64, error) {
	if math.IsNaN(x) {
		return 0, errs.Numeric("numeric.FindLimit2D", "NaN abscissa")
	}
	col, err := NewInterpolant(ip.def.column(), ip.column(ip.gx.toU(x)))
	if err != nil {
		return 0, errs.Wrap(errs.KindNumeric, "numeric.FindLimit2D", err)
	}
	return col.FindLimit(z)
}

// #endregion inverse2d
