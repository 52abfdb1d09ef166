package numeric

import (
	"math"
	"sort"

	"github.com/danielpatrickdp/eloss/internal/errs"
)

// minPieceWidth is the narrowest piece SplitAxis keeps, as a fraction of the
// axis width in interpolation coordinates.
const minPieceWidth = 1e-6

// checkPoints are the cell positions, in units of the node spacing, at which
// CheckCells compares a table with its reference.
var checkPoints = [...]float64{0.25, 0.5, 0.75}

// #region split
// SplitAxis cuts a at the breaks inside (Min, Max) and shares the nodes of a
// between the pieces in proportion to their width. Each piece keeps at least
// Order nodes. Breaks closer than minPieceWidth to a neighbour are dropped.
func SplitAxis(a Axis, breaks []float64) []Axis {
	g := newGrid(a)
	lo, hi := g.toU(a.Min), g.toU(a.Max)
	gap := minPieceWidth * (hi - lo)

	inside := make([]float64, 0, len(breaks))
	for _, b := range breaks {
		if b > a.Min && b < a.Max {
			inside = append(inside, b)
		}
	}
	sort.Float64s(inside)

	edges := []float64{a.Min}
	last := lo
	for _, b := range inside {
		u := g.toU(b)
		if u-last >= gap && hi-u >= gap {
			edges = append(edges, b)
			last = u
		}
	}
	edges = append(edges, a.Max)

	out := make([]Axis, len(edges)-1)
	for i := range out {
		p := a
		p.Min, p.Max = edges[i], edges[i+1]
		width := (g.toU(p.Max) - g.toU(p.Min)) / (hi - lo)
		p.Nodes = max(int(math.Ceil(float64(a.Nodes-1)*width))+1, a.Order)
		out[i] = p
	}
	return out
}

// #endregion split

// #region check
// MaskDefinition is the definition of the cell mask of a table with def.
func MaskDefinition(def Definition1D) Definition1D {
	return Definition1D{X: def.X, OrderY: 2}
}

// CheckCells compares ip with exact at interior points of every cell and
// returns the mask table of ip: node i holds 1 when the cell starting at
// node i misses exact by more than tol relative, 0 otherwise. exact receives
// the cell index and the abscissa and must be safe for concurrent use.
func CheckCells(ip *Interpolant, exact func(i int, x float64) float64, tol float64) (*Interpolant, error) {
	n := len(ip.raw)
	mask := make([]float64, n)
	err := Parallel(n-1, func(i int) error {
		for _, t := range checkPoints {
			u := ip.g.u[i] + t*ip.g.step
			want := exact(i, ip.g.toX(u))
			if math.IsNaN(want) || math.IsInf(want, 0) {
				return errs.Numeric("numeric.CheckCells", "reference is %g in cell %d", want, i)
			}
			if RelDiff(ip.at(u), want) > tol {
				mask[i] = 1
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewInterpolant(MaskDefinition(ip.def), mask)
}

// RelDiff is |a-b| / max(|a|, |b|); 0 when a == b and +Inf when either is
// NaN.
func RelDiff(a, b float64) float64 {
	if a == b {
		return 0
	}
	d := math.Abs(a-b) / math.Max(math.Abs(a), math.Abs(b))
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

// #endregion check

// #region piecewise
// Piecewise joins tables over adjacent axes. Cells flagged by a mask are
// left to the caller, which evaluates them exactly. It is immutable and safe
// for concurrent use.
type Piecewise struct {
	parts []*Interpolant
	flags [][]bool
}

// NewPiecewise joins parts, which must be ordered and share their edges.
// masks holds the CheckCells result of every part; a nil mask flags nothing.
func NewPiecewise(parts, masks []*Interpolant) (*Piecewise, error) {
	if len(parts) == 0 {
		return nil, errs.Configuration("numeric.NewPiecewise", "no parts")
	}
	if len(masks) != len(parts) {
		return nil, errs.Configuration("numeric.NewPiecewise", "%d masks for %d parts", len(masks), len(parts))
	}
	pw := &Piecewise{parts: parts, flags: make([][]bool, len(parts))}
	for k, ip := range parts {
		if k > 0 && ip.def.X.Min != parts[k-1].def.X.Max {
			return nil, errs.Configuration("numeric.NewPiecewise", "part %d starts at %g, part %d ends at %g",
				k, ip.def.X.Min, k-1, parts[k-1].def.X.Max)
		}
		flags := make([]bool, len(ip.raw))
		if m := masks[k]; m != nil {
			if len(m.raw) != len(ip.raw) {
				return nil, errs.Configuration("numeric.NewPiecewise", "mask of part %d has %d nodes, want %d", k, len(m.raw), len(ip.raw))
			}
			for i, v := range m.raw {
				flags[i] = v > 0
			}
		}
		pw.flags[k] = flags
	}
	return pw, nil
}

// Parts returns the joined tables.
func (pw *Piecewise) Parts() []*Interpolant { return pw.parts }

// Min is the lower edge of the first part.
func (pw *Piecewise) Min() float64 { return pw.parts[0].def.X.Min }

// Max is the upper edge of the last part.
func (pw *Piecewise) Max() float64 { return pw.parts[len(pw.parts)-1].def.X.Max }

// Locate returns the part and cell holding x, clamped to the domain.
func (pw *Piecewise) Locate(x float64) (int, int) {
	k := sort.Search(len(pw.parts)-1, func(k int) bool { return x <= pw.parts[k].def.X.Max })
	return k, pw.parts[k].Cell(x)
}

// Exact reports whether cell i of part k is flagged.
func (pw *Piecewise) Exact(k, i int) bool { return pw.flags[k][i] }

// Interpolate returns y(x) from the part holding x.
func (pw *Piecewise) Interpolate(x float64) float64 {
	k, _ := pw.Locate(x)
	return pw.parts[k].Interpolate(x)
}

// Search returns the part and cell whose node values bracket y. Values must
// increase along the whole domain; targets beyond the range give the edge
// cells.
func (pw *Piecewise) Search(y float64) (int, int) {
	k := sort.Search(len(pw.parts)-1, func(k int) bool {
		raw := pw.parts[k].raw
		return y <= raw[len(raw)-1]
	})
	raw := pw.parts[k].raw
	i := sort.Search(len(raw), func(i int) bool { return raw[i] >= y }) - 1
	return k, min(max(i, 0), len(raw)-2)
}

// FindLimit returns x with Interpolate(x) = y for increasing values.
// Targets beyond the range clamp to the domain edge.
func (pw *Piecewise) FindLimit(y float64) (float64, error) {
	k, _ := pw.Search(y)
	return pw.parts[k].FindLimit(y)
}

// #endregion piecewise
