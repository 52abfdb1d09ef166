// Package utility integrates the summed cross sections of one particle,
// medium and cut configuration along the energy axis. Each purpose is an
// integrand in energy; Calculate integrates it between two energies and
// GetUpperLimit inverts that integral.
package utility

import (
	"fmt"
	"sync"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/numeric"
	"github.com/danielpatrickdp/eloss/internal/tablecache"
	"github.com/danielpatrickdp/eloss/internal/tablestore"
)

// IPREC is the relative energy difference below which table differences
// are replaced by a local first order estimate.
const IPREC = 1e-6

// #region utility
// Utility is the cumulative integral of one integrand f(E) <= 0 from the
// initial towards a lower final energy.
type Utility interface {
	// Calculate returns the integral of f from ei down to ef, ef <= ei.
	Calculate(ei, ef float64) float64
	// GetUpperLimit returns ef with Calculate(ei, ef) = rnd, or the lower
	// energy limit when rnd exceeds the integral down to it.
	GetUpperLimit(ei, rnd float64) float64
	// Clone returns an instance for another goroutine. Tables are shared.
	Clone() Utility
}

func checkOrder(op string, ei, ef float64) {
	if ef > ei {
		errs.Fatal(errs.Invariant(op, "final energy %g above initial energy %g", ef, ei))
	}
}

func checkTarget(op string, rnd float64) {
	if !(rnd >= 0) {
		errs.Fatal(errs.Invariant(op, "negative target %g", rnd))
	}
}

// #endregion utility

// #region integral
// Integral evaluates every call by quadrature. It is stateless.
type Integral struct {
	f   func(float64) float64
	low float64
	q   numeric.Integral
}

// NewIntegral integrates f above low with the default integrator.
func NewIntegral(f func(float64) float64, low float64) *Integral {
	return NewIntegralWith(f, low, numeric.DefaultIntegral())
}

// NewIntegralWith integrates f above low with q.
func NewIntegralWith(f func(float64) float64, low float64, q numeric.Integral) *Integral {
	return &Integral{f: f, low: low, q: q}
}

// Calculate implements Utility.
func (u *Integral) Calculate(ei, ef float64) float64 {
	checkOrder("utility.Integral.Calculate", ei, ef)
	if ei == ef {
		return 0
	}
	r, err := u.q.Integrate(u.f, ei, ef, numeric.LogSubstitution)
	if err != nil {
		errs.Fatal(errs.Wrap(errs.KindNumeric, "utility.Integral.Calculate", err))
	}
	return r
}

// GetUpperLimit implements Utility.
func (u *Integral) GetUpperLimit(ei, rnd float64) float64 {
	checkTarget("utility.Integral.GetUpperLimit", rnd)
	if rnd == 0 || ei <= u.low {
		return ei
	}
	if rnd >= u.Calculate(ei, u.low) {
		return u.low
	}
	fdf := func(e float64) (float64, float64) {
		return u.Calculate(ei, e) - rnd, u.f(e)
	}
	ef, err := numeric.FindRoot(fdf, u.low, ei, ei, 1e-12)
	if err != nil {
		errs.Fatal(errs.Wrap(errs.KindNumeric, "utility.Integral.GetUpperLimit", err))
	}
	return ef
}

// Clone implements Utility.
func (u *Integral) Clone() Utility { return u }

// #endregion integral

// #region interpolant
// cellTolerance is the relative miss of the cumulative table against
// quadrature above which a cell is integrated at every call.
const cellTolerance = 1e-5

// TableSpec configures the cumulative table of an Interpolant.
type TableSpec struct {
	Def numeric.Definition1D
	// Kinks are energies where f is not smooth; the table is split there.
	Kinks []float64
	// Integral integrates the nodes and the flagged cells. The zero value
	// selects numeric.DefaultIntegral.
	Integral numeric.Integral
}

func (s TableSpec) integral() numeric.Integral {
	if s.Integral == (numeric.Integral{}) {
		return numeric.DefaultIntegral()
	}
	return s.Integral
}

// Interpolant tabulates T(E), the integral of -f from the lower limit up to
// E, so that Calculate(ei, ef) = T(ei) - T(ef). The table is split at the
// kinks of f; cells that missed the quadrature at build time add the
// integral from their lower node instead. The last T(ei) is memoized; the
// memo is guarded by a mutex and Clone gives each consumer its own.
type Interpolant struct {
	f     func(float64) float64
	low   float64
	q     numeric.Integral
	table *numeric.Piecewise

	mu     sync.Mutex
	memoE  float64
	memoT  float64
	filled bool
}

// NewInterpolant builds or loads the table of f described by spec. Piece k
// is stored in cache under key.Name/k and its cell mask under
// key.Name/k/direct; cache may be nil.
func NewInterpolant(f func(float64) float64, spec TableSpec, key tablestore.Key, cache *tablecache.Cache) (*Interpolant, error) {
	if err := spec.Def.Validate(); err != nil {
		return nil, err
	}
	q := spec.integral()
	load := func(name string, def numeric.Definition1D, build func() (*numeric.Interpolant, error)) (*numeric.Interpolant, error) {
		if cache == nil {
			return build()
		}
		return cache.Get1D(tablestore.Key{Fingerprint: key.Fingerprint, Name: name}, def, build)
	}

	axes := numeric.SplitAxis(spec.Def.X, spec.Kinks)
	parts := make([]*numeric.Interpolant, len(axes))
	masks := make([]*numeric.Interpolant, len(axes))
	var offset float64
	for k, axis := range axes {
		def := spec.Def
		def.X = axis
		piece := fmt.Sprintf("%s/%d", key.Name, k)
		start := offset
		ip, err := load(piece, def, func() (*numeric.Interpolant, error) { return buildCumulative(f, def, q, start) })
		if err != nil {
			return nil, err
		}
		exact := func(i int, e float64) float64 { return cellValue(f, q, ip, i, e) }
		mask, err := load(piece+"/direct", numeric.MaskDefinition(def), func() (*numeric.Interpolant, error) {
			return numeric.CheckCells(ip, exact, cellTolerance)
		})
		if err != nil {
			return nil, err
		}
		parts[k], masks[k] = ip, mask
		_, offset = ip.Node(axis.Nodes - 1)
	}
	table, err := numeric.NewPiecewise(parts, masks)
	if err != nil {
		return nil, err
	}
	return &Interpolant{f: f, low: spec.Def.X.Min, q: q, table: table}, nil
}

// buildCumulative integrates -f between neighbouring nodes in parallel and
// accumulates the pieces from offset at the lower edge.
func buildCumulative(f func(float64) float64, def numeric.Definition1D, q numeric.Integral, offset float64) (*numeric.Interpolant, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	xs := def.X.Points()
	xs[0], xs[len(xs)-1] = def.X.Min, def.X.Max
	pieces := make([]float64, len(xs))
	err := numeric.Parallel(len(xs)-1, func(i int) error {
		r, err := q.Integrate(f, xs[i+1], xs[i], numeric.LogSubstitution)
		pieces[i+1] = r
		return err
	})
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(xs))
	values[0] = offset
	for i := 1; i < len(xs); i++ {
		values[i] = values[i-1] + pieces[i]
	}
	return numeric.NewInterpolant(def, values)
}

// cellValue is T(e) from node i of ip plus the quadrature up to e.
func cellValue(f func(float64) float64, q numeric.Integral, ip *numeric.Interpolant, i int, e float64) float64 {
	x, t := ip.Node(i)
	r, err := q.Integrate(f, e, x, numeric.LogSubstitution)
	if err != nil {
		errs.Fatal(errs.Wrap(errs.KindNumeric, "utility.Interpolant", err))
	}
	return t + r
}

// Table returns the cumulative table.
func (u *Interpolant) Table() *numeric.Piecewise { return u.table }

// value returns T(e).
func (u *Interpolant) value(e float64) float64 {
	k, i := u.table.Locate(e)
	if u.table.Exact(k, i) {
		return cellValue(u.f, u.q, u.table.Parts()[k], i, e)
	}
	return u.table.Parts()[k].Interpolate(e)
}

// limit returns e with T(e) = t, clamped to the table domain.
func (u *Interpolant) limit(t float64) (float64, error) {
	k, i := u.table.Search(t)
	if !u.table.Exact(k, i) {
		return u.table.FindLimit(t)
	}
	part := u.table.Parts()[k]
	lo, tlo := part.Node(i)
	hi, thi := part.Node(i + 1)
	switch {
	case t <= tlo:
		return lo, nil
	case t >= thi:
		return hi, nil
	}
	fdf := func(e float64) (float64, float64) {
		return cellValue(u.f, u.q, part, i, e) - t, -u.f(e)
	}
	guess := lo + (t-tlo)/(thi-tlo)*(hi-lo)
	return numeric.FindRoot(fdf, lo, hi, guess, 1e-12)
}

// total returns T(ei), through the memo.
func (u *Interpolant) total(ei float64) float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.filled && u.memoE == ei {
		return u.memoT
	}
	u.memoE, u.memoT, u.filled = ei, u.value(ei), true
	return u.memoT
}

// Calculate implements Utility.
func (u *Interpolant) Calculate(ei, ef float64) float64 {
	checkOrder("utility.Interpolant.Calculate", ei, ef)
	t := u.total(ei)
	if ei-ef < ei*IPREC {
		return u.f(0.5*(ei+ef)) * (ef - ei)
	}
	return t - u.value(ef)
}

// GetUpperLimit implements Utility.
func (u *Interpolant) GetUpperLimit(ei, rnd float64) float64 {
	checkTarget("utility.Interpolant.GetUpperLimit", rnd)
	if rnd == 0 {
		return ei
	}
	ef, err := u.limit(u.total(ei) - rnd)
	if err != nil {
		errs.Fatal(errs.Wrap(errs.KindNumeric, "utility.Interpolant.GetUpperLimit", err))
	}
	if ei-ef > ei*IPREC {
		return ef
	}
	step := ei + 0.5*rnd/u.f(ei)
	return ei + rnd/u.f(step)
}

// Clone implements Utility.
func (u *Interpolant) Clone() Utility {
	return &Interpolant{f: u.f, low: u.low, q: u.q, table: u.table}
}

// #endregion interpolant
