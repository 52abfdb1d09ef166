package numeric

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// #region build
// Build1D tabulates f on the nodes of def. f must be safe for concurrent use;
// nodes are evaluated in parallel and the result is independent of
// scheduling.
func Build1D(def Definition1D, f func(x float64) float64) (*Interpolant, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	xs := def.X.Points()
	values := make([]float64, len(xs))
	if err := Parallel(len(xs), func(i int) error {
		values[i] = f(xs[i])
		return nil
	}); err != nil {
		return nil, err
	}
	return NewInterpolant(def, values)
}

// Build2D tabulates f on the tensor grid of def.
func Build2D(def Definition2D, f func(x, y float64) float64) (*Interpolant2D, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	xs, ys := def.X.Points(), def.Y.Points()
	values := make([]float64, len(xs)*len(ys))
	if err := Parallel(len(xs), func(i int) error {
		for j, y := range ys {
			values[i*len(ys)+j] = f(xs[i], y)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return NewInterpolant2D(def, values)
}

// BuildRows tabulates a 2D table row by row; row(x, ys, out) fills out[j]
// for every y node. Used when a row is cheaper to compute as a whole, e.g. a
// cumulative integral.
func BuildRows(def Definition2D, row func(x float64, ys, out []float64) error) (*Interpolant2D, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	xs, ys := def.X.Points(), def.Y.Points()
	values := make([]float64, len(xs)*len(ys))
	if err := Parallel(len(xs), func(i int) error {
		return row(xs[i], ys, values[i*len(ys):(i+1)*len(ys)])
	}); err != nil {
		return nil, err
	}
	return NewInterpolant2D(def, values)
}

// Parallel runs fn for every index in [0, n) on up to GOMAXPROCS goroutines
// and returns the first error.
func Parallel(n int, fn func(i int) error) error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

// #endregion build
