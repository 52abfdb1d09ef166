package numeric

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/fingerprint"
)

// maxOrder bounds the interpolation stencil.
const maxOrder = 16

// #region axis
// Axis describes one tabulated dimension.
type Axis struct {
	Nodes    int     `json:"nodes"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Log      bool    `json:"log"`      // nodes equally spaced in ln x
	Rational bool    `json:"rational"` // rational instead of polynomial interpolation
	Order    int     `json:"order"`    // stencil size
}

func (a Axis) validate(op string) error {
	switch {
	case a.Nodes < 2:
		return errs.Configuration(op, "need at least 2 nodes, got %d", a.Nodes)
	case !(a.Min < a.Max):
		return errs.Configuration(op, "empty domain [%g, %g]", a.Min, a.Max)
	case math.IsInf(a.Min, 0) || math.IsInf(a.Max, 0):
		return errs.Configuration(op, "infinite domain [%g, %g]", a.Min, a.Max)
	case a.Log && a.Min <= 0:
		return errs.Configuration(op, "log axis needs a positive lower bound, got %g", a.Min)
	case a.Order < 2 || a.Order > maxOrder:
		return errs.Configuration(op, "interpolation order %d outside [2, %d]", a.Order, maxOrder)
	case a.Order > a.Nodes:
		return errs.Configuration(op, "interpolation order %d exceeds %d nodes", a.Order, a.Nodes)
	}
	return nil
}

// Points returns the node abscissae.
func (a Axis) Points() []float64 {
	dst := make([]float64, a.Nodes)
	if a.Log {
		return floats.LogSpan(dst, a.Min, a.Max)
	}
	return floats.Span(dst, a.Min, a.Max)
}

func (a Axis) write(h *fingerprint.Hasher) {
	h.Int(a.Nodes).Float64(a.Min).Float64(a.Max).Bool(a.Log).Bool(a.Rational).Int(a.Order)
}

// #endregion axis

// #region definitions
// Definition1D configures a one-dimensional table y(x).
type Definition1D struct {
	X         Axis    `json:"x"`
	LogSubst  bool    `json:"log_subst"`  // interpolate ln y
	OrderY    int     `json:"order_y"`    // stencil size of the inverse guess
	RationalY bool    `json:"rational_y"` // rational inverse guess
	Relative  bool    `json:"relative"`   // precision is relative to |y|
	Precision float64 `json:"precision"`  // early stop of the stencil; 0 uses the full stencil
}

// Validate checks the definition.
func (d Definition1D) Validate() error {
	if err := d.X.validate("numeric.Definition1D"); err != nil {
		return err
	}
	if d.OrderY < 2 || d.OrderY > maxOrder {
		return errs.Configuration("numeric.Definition1D", "inverse order %d outside [2, %d]", d.OrderY, maxOrder)
	}
	if d.OrderY > d.X.Nodes {
		return errs.Configuration("numeric.Definition1D", "inverse order %d exceeds %d nodes", d.OrderY, d.X.Nodes)
	}
	if d.Precision < 0 {
		return errs.Configuration("numeric.Definition1D", "negative precision %g", d.Precision)
	}
	return nil
}

// Hash is the fingerprint of the definition.
func (d Definition1D) Hash() uint64 {
	h := fingerprint.New().String("numeric.Definition1D")
	d.X.write(h)
	h.Bool(d.LogSubst).Int(d.OrderY).Bool(d.RationalY).Bool(d.Relative).Float64(d.Precision)
	return h.Sum64()
}

// Definition2D configures a table z(x, y) on a tensor grid.
type Definition2D struct {
	X         Axis    `json:"x"`
	Y         Axis    `json:"y"`
	LogSubst  bool    `json:"log_subst"`
	Relative  bool    `json:"relative"`
	Precision float64 `json:"precision"`
}

// Validate checks the definition.
func (d Definition2D) Validate() error {
	if err := d.X.validate("numeric.Definition2D x"); err != nil {
		return err
	}
	if err := d.Y.validate("numeric.Definition2D y"); err != nil {
		return err
	}
	if d.Precision < 0 {
		return errs.Configuration("numeric.Definition2D", "negative precision %g", d.Precision)
	}
	return nil
}

// Hash is the fingerprint of the definition.
func (d Definition2D) Hash() uint64 {
	h := fingerprint.New().String("numeric.Definition2D")
	d.X.write(h)
	d.Y.write(h)
	h.Bool(d.LogSubst).Bool(d.Relative).Float64(d.Precision)
	return h.Sum64()
}

// column is the 1D definition along the y axis of a 2D table.
func (d Definition2D) column() Definition1D {
	return Definition1D{
		X:         d.Y,
		LogSubst:  d.LogSubst,
		OrderY:    d.Y.Order,
		RationalY: d.Y.Rational,
		Relative:  d.Relative,
		Precision: d.Precision,
	}
}

// #endregion definitions

// #region grid
// grid is an axis in interpolation coordinates u (ln x for log axes).
type grid struct {
	Axis
	u    []float64
	umin float64
	step float64
}

func newGrid(a Axis) grid {
	lo, hi := a.Min, a.Max
	if a.Log {
		lo, hi = math.Log(lo), math.Log(hi)
	}
	u := floats.Span(make([]float64, a.Nodes), lo, hi)
	return grid{Axis: a, u: u, umin: lo, step: (hi - lo) / float64(a.Nodes-1)}
}

func (g grid) toU(x float64) float64 {
	if g.Log {
		return math.Log(x)
	}
	return x
}

func (g grid) toX(u float64) float64 {
	if g.Log {
		return math.Exp(u)
	}
	return u
}

// position is u in units of the node spacing, bounded to keep the integer
// conversion defined for infinite u.
func (g grid) position(u float64) float64 {
	p := (u - g.umin) / g.step
	return math.Max(-1, math.Min(p, float64(g.Nodes)))
}

// stencil returns the first node of the Order-point stencil around u.
func (g grid) stencil(u float64) int {
	p := g.position(u)
	start := int(math.Floor(p - float64(g.Order-1)/2 + 0.5))
	if start > g.Nodes-g.Order {
		start = g.Nodes - g.Order
	}
	if start < 0 {
		start = 0
	}
	return start
}

// interval returns i such that u lies in [u_i, u_i+1], clamped to the grid.
func (g grid) interval(u float64) int {
	i := int(math.Floor(g.position(u)))
	if i > g.Nodes-2 {
		i = g.Nodes - 2
	}
	if i < 0 {
		i = 0
	}
	return i
}

// #endregion grid
