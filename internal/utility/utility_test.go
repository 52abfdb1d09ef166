package utility

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/cuts"
	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/medium"
	"github.com/danielpatrickdp/eloss/internal/numeric"
	"github.com/danielpatrickdp/eloss/internal/particle"
	"github.com/danielpatrickdp/eloss/internal/scattering"
	"github.com/danielpatrickdp/eloss/internal/tablecache"
	"github.com/danielpatrickdp/eloss/internal/tablestore"
)

// #region fixtures
var testDef = crosssection.InterpolationDef{
	NodesCrossSection:            40,
	NodesCrossSectionV:           10,
	NodesPropagate:               40,
	NodesContinuousRandomization: 20,
	MaxNodeEnergy:                1e8,
	OrderOfInterpolation:         5,
}

var (
	fixtureOnce  sync.Once
	fixtureCache = tablecache.New(nil)
	fixtureXS    []crosssection.CrossSection
	fixtureErr   error
)

func muonWaterCuts(t *testing.T) cuts.Settings {
	t.Helper()
	c, err := cuts.New(500, 0.05, true)
	require.NoError(t, err)
	return c
}

// muonWater returns a muon in water with tabulated cross sections, built
// once for the package.
func muonWater(t *testing.T) Definition {
	t.Helper()
	c := muonWaterCuts(t)
	fixtureOnce.Do(func() {
		f := crosssection.NewFactory(fixtureCache)
		cfg := crosssection.Config{Particle: particle.MuMinus, Medium: medium.Water(), Cuts: c, Multiplier: 1}
		def := testDef
		fixtureXS, fixtureErr = f.StandardCrossSections(cfg, &def)
	})
	require.NoError(t, fixtureErr)
	return Definition{Particle: particle.MuMinus, Medium: medium.Water(), Cuts: c, CrossSections: fixtureXS}
}

func inverseE(e float64) float64 { return -1 / e }

// kinked bends at 100 MeV. Its integral is ln E below and gains a term
// quadratic in ln(E/100) above.
func kinked(e float64) float64 {
	if e <= 100 {
		return -1 / e
	}
	return -(1 + math.Log(e/100)) / e
}

func kinkedT(e float64) float64 {
	u := math.Log(e / 100)
	if u <= 0 {
		return math.Log(e)
	}
	return math.Log(100) + u + u*u/2
}

// kinkedInverse solves kinkedT(e) = t.
func kinkedInverse(t float64) float64 {
	if t <= math.Log(100) {
		return math.Exp(t)
	}
	return 100 * math.Exp(math.Sqrt(1+2*(t-math.Log(100)))-1)
}

func flagged(pw *numeric.Piecewise) int {
	var n int
	for k, part := range pw.Parts() {
		for i := range len(part.Values()) - 1 {
			if pw.Exact(k, i) {
				n++
			}
		}
	}
	return n
}

func simpleTable(t *testing.T, cache *tablecache.Cache) *Interpolant {
	t.Helper()
	def := numeric.Definition1D{
		X:      numeric.Axis{Nodes: 50, Min: 1, Max: 1e4, Log: true, Order: 5},
		OrderY: 5,
	}
	ip, err := NewInterpolant(inverseE, TableSpec{Def: def}, tablestore.Key{Fingerprint: 7, Name: "inverse"}, cache)
	require.NoError(t, err)
	return ip
}

// #endregion fixtures

// #region integral
func TestIntegralConstant(t *testing.T) {
	u := NewIntegral(func(float64) float64 { return -1 }, 1)
	assert.InEpsilon(t, 6, u.Calculate(10, 4), 1e-6)
	assert.Equal(t, 0.0, u.Calculate(10, 10))
	assert.InEpsilon(t, 7, u.GetUpperLimit(10, 3), 1e-6)
	assert.Equal(t, 1.0, u.GetUpperLimit(10, 20))
	assert.Equal(t, 10.0, u.GetUpperLimit(10, 0))
}

func TestIntegralInverse(t *testing.T) {
	u := NewIntegral(inverseE, 1)
	assert.InEpsilon(t, math.Log(10), u.Calculate(100, 10), 1e-9)
	for _, rnd := range []float64{0.1, 0.5, 0.9, 2} {
		ef := u.GetUpperLimit(100, rnd)
		assert.InEpsilon(t, 100*math.Exp(-rnd), ef, 1e-9)
		assert.InEpsilon(t, rnd, u.Calculate(100, ef), 1e-9)
	}
}

func TestInvariantViolationsPanic(t *testing.T) {
	u := NewIntegral(inverseE, 1)
	assert.Panics(t, func() { u.Calculate(10, 20) })
	assert.Panics(t, func() { u.GetUpperLimit(10, -1) })

	ip := simpleTable(t, nil)
	assert.Panics(t, func() { ip.Calculate(10, 20) })
	assert.Panics(t, func() { ip.GetUpperLimit(10, -0.5) })
}

// #endregion integral

// #region interpolant
func TestInterpolantLogTable(t *testing.T) {
	ip := simpleTable(t, nil)
	assert.InEpsilon(t, math.Log(10), ip.Calculate(100, 10), 1e-9)
	assert.InEpsilon(t, 50, ip.GetUpperLimit(100, math.Ln2), 1e-9)
	assert.Equal(t, 1.0, ip.GetUpperLimit(100, 100))
	assert.Equal(t, 100.0, ip.GetUpperLimit(100, 0))
}

func TestInterpolantCloseEnergies(t *testing.T) {
	ip := simpleTable(t, nil)

	ef := 100 * (1 - 1e-8)
	assert.InEpsilon(t, math.Log(100/ef), ip.Calculate(100, ef), 1e-6)

	got := ip.GetUpperLimit(100, 1e-9)
	assert.InDelta(t, 100*math.Exp(-1e-9), got, 1e-12)
}

func TestInterpolantUpperLimitFirstOrder(t *testing.T) {
	ip := simpleTable(t, nil)
	ei, rnd := 1e3, 1e-7
	step := ei + 0.5*rnd/inverseE(ei)
	assert.Equal(t, ei+rnd/inverseE(step), ip.GetUpperLimit(ei, rnd))

	// a target beyond the table ends on the lower edge
	assert.Equal(t, 1.0, ip.GetUpperLimit(2, 5))
	assert.Equal(t, 1.0, ip.GetUpperLimit(1e4, 50))
}

func TestInterpolantInverseProperty(t *testing.T) {
	ip := simpleTable(t, nil)
	for _, ei := range []float64{5, 300, 7e3} {
		for _, rnd := range []float64{0.01, 0.2, 0.5, 0.8, 0.99} {
			ef := ip.GetUpperLimit(ei, rnd)
			require.Less(t, ef, ei)
			assert.InDelta(t, rnd, ip.Calculate(ei, ef), 1e-9, "ei=%g rnd=%g", ei, rnd)
		}
	}
}

func TestInterpolantCloneAndMemo(t *testing.T) {
	cache := tablecache.New(nil)
	ip := simpleTable(t, cache)
	again := simpleTable(t, cache)
	assert.Same(t, ip.Table().Parts()[0], again.Table().Parts()[0])
	assert.Equal(t, int64(2), cache.Stats().Builds, "table and cell mask")

	want := ip.GetUpperLimit(1e3, 0.7)
	assert.Equal(t, want, ip.GetUpperLimit(1e3, 0.7), "memoized energy")

	var wg sync.WaitGroup
	results := make([]float64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int, u Utility) {
			defer wg.Done()
			for k := 0; k < 50; k++ {
				u.Calculate(float64(100+k), 10)
			}
			results[i] = u.GetUpperLimit(1e3, 0.7)
		}(i, ip.Clone())
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestInterpolantKinkedIntegrand(t *testing.T) {
	def := numeric.Definition1D{
		X:      numeric.Axis{Nodes: 50, Min: 1, Max: 1e4, Log: true, Order: 5},
		OrderY: 5,
	}
	key := tablestore.Key{Fingerprint: 9, Name: "kinked"}
	whole, err := NewInterpolant(kinked, TableSpec{Def: def}, key, nil)
	require.NoError(t, err)
	split, err := NewInterpolant(kinked, TableSpec{Def: def, Kinks: []float64{100}}, key, nil)
	require.NoError(t, err)

	assert.Len(t, whole.Table().Parts(), 1)
	assert.Positive(t, flagged(whole.Table()), "cells around the bend")
	require.Len(t, split.Table().Parts(), 2)
	assert.Equal(t, 100.0, split.Table().Parts()[0].Definition().X.Max)
	assert.Zero(t, flagged(split.Table()))

	for name, u := range map[string]*Interpolant{"whole": whole, "split": split} {
		for _, ei := range []float64{50, 101, 130, 1e3, 9e3} {
			tol := 3e-5 * kinkedT(ei)
			for _, ef := range []float64{2, 60, 99.5, 100, 120} {
				if ef >= ei {
					continue
				}
				assert.InDelta(t, kinkedT(ei)-kinkedT(ef), u.Calculate(ei, ef), tol, "%s ei=%g ef=%g", name, ei, ef)
			}
			for _, rnd := range []float64{0.05, 0.5, 2} {
				want := kinkedInverse(kinkedT(ei) - rnd)
				assert.InEpsilon(t, want, u.GetUpperLimit(ei, rnd), 3e-4, "%s ei=%g rnd=%g", name, ei, rnd)
			}
		}
	}
}

// #endregion interpolant

// #region propagation
func TestNewRejectsBadDefinitions(t *testing.T) {
	def := muonWater(t)

	g := def
	g.Particle = particle.Gamma
	_, err := New(g, nil, nil)
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	empty := def
	empty.CrossSections = nil
	_, err = New(empty, nil, nil)
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	ice := def
	ice.Medium = medium.Ice()
	_, err = New(ice, nil, nil)
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	tau := def
	tau.Particle = particle.TauMinus
	_, err = New(tau, nil, nil)
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	moliere := def
	moliere.Scattering = "moliere"
	_, err = New(moliere, nil, nil)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestPropagationInverseProperty(t *testing.T) {
	def := muonWater(t)
	idef := testDef
	interp, err := New(def, &idef, fixtureCache)
	require.NoError(t, err)
	direct, err := New(def, nil, nil)
	require.NoError(t, err)

	ei := 1e6
	for name, u := range map[string]*PropagationUtility{"interpolant": interp, "integral": direct} {
		for _, rnd := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
			ef := u.interaction.GetUpperLimit(ei, rnd)
			require.Less(t, ef, ei, name)
			assert.InEpsilon(t, rnd, u.interaction.Calculate(ei, ef), 1e-6, "%s rnd=%g", name, rnd)
		}
		for _, dist := range []float64{100, 1e3, 1e4} {
			ef := u.EnergyDistance(ei, dist)
			assert.InEpsilon(t, dist, u.LengthContinuous(ei, ef), 1e-6, "%s dist=%g", name, dist)
		}
	}
}

func TestPropagationStrategiesAgree(t *testing.T) {
	def := muonWater(t)
	idef := testDef
	interp, err := New(def, &idef, fixtureCache)
	require.NoError(t, err)
	direct, err := New(def, nil, nil)
	require.NoError(t, err)

	assert.InEpsilon(t, direct.LengthContinuous(1e6, 1e4), interp.LengthContinuous(1e6, 1e4), 1e-3)
	assert.InEpsilon(t, direct.interaction.Calculate(1e7, 1e5), interp.interaction.Calculate(1e7, 1e5), 1e-3)
	assert.InEpsilon(t, direct.EnergyInteraction(1e6, 0.4), interp.EnergyInteraction(1e6, 0.4), 1e-3)
	assert.NotEqual(t, direct.Hash(), interp.Hash())

	// close to the lower limit, where dE/dx and the rates change fastest
	low := direct.Low()
	for _, ei := range []float64{150, 300, 1e3} {
		half := 0.5 * direct.LengthContinuous(ei, low)
		ef := interp.EnergyDistance(ei, half)
		assert.InEpsilon(t, half, direct.LengthContinuous(ei, ef), 1e-3, "distance from %g", ei)

		mid := 0.5 * (ei + low)
		assert.InEpsilon(t, direct.LengthContinuous(ei, mid), interp.LengthContinuous(ei, mid), 1e-3, "length from %g", ei)
		want, got := direct.interaction.Calculate(ei, mid), interp.interaction.Calculate(ei, mid)
		if want == 0 {
			assert.InDelta(t, 0, got, 1e-12, "interaction from %g", ei)
		} else {
			assert.InEpsilon(t, want, got, 1e-3, "interaction from %g", ei)
		}
	}
}

func TestDefinitionIntegral(t *testing.T) {
	def := muonWater(t)
	base, err := New(def, nil, nil)
	require.NoError(t, err)
	def.Integral = numeric.Integral{Order: 5, MaxSteps: 20, Precision: 1e-4}
	coarse, err := New(def, nil, nil)
	require.NoError(t, err)

	assert.NotEqual(t, base.Hash(), coarse.Hash())
	assert.Equal(t, numeric.DefaultIntegral(), base.displacement.(*Integral).q)
	assert.Equal(t, def.Integral, coarse.displacement.(*Integral).q)
	assert.InEpsilon(t, base.LengthContinuous(1e6, 1e4), coarse.LengthContinuous(1e6, 1e4), 1e-3)
}

func TestCloneRebuildsScattering(t *testing.T) {
	def := muonWater(t)
	def.Scattering = "highland"
	idef := testDef
	u, err := New(def, &idef, fixtureCache)
	require.NoError(t, err)
	require.NotNil(t, u.scatterIn)

	c := u.Clone()
	assert.NotSame(t, u.scatterIn, c.scatterIn)
	assert.NotSame(t, u.scatter, c.scatter)
	orig, ok := u.scatter.(*scattering.Highland)
	require.True(t, ok)
	cloned, ok := c.scatter.(*scattering.Highland)
	require.True(t, ok)
	assert.Equal(t, orig.Theta0(1e3, 1e6, 9e5), cloned.Theta0(1e3, 1e6, 9e5))

	dir := r3.Vec{X: 0, Y: 0, Z: 1}
	rnd := [4]float64{0.3, 0.8, 0.6, 0.1}
	m1, e1 := u.Scatter(1e3, 1e6, 9e5, dir, rnd)
	m2, e2 := c.Scatter(1e3, 1e6, 9e5, dir, rnd)
	assert.Equal(t, m1, m2)
	assert.Equal(t, e1, e2)

	plain := muonWater(t)
	plain.Scattering = "noscattering"
	n, err := New(plain, &idef, fixtureCache)
	require.NoError(t, err)
	assert.Nil(t, n.scatterIn)
	assert.Equal(t, n.scatter, n.Clone().scatter)
}

func TestStepperQuantities(t *testing.T) {
	def := muonWater(t)
	def.ExactTime = true
	def.Scattering = "highland"
	idef := testDef
	u, err := New(def, &idef, fixtureCache)
	require.NoError(t, err)
	low := u.Low()
	ei := 1e6

	e := u.EnergyInteraction(ei, 0.5)
	assert.Less(t, e, ei)
	assert.GreaterOrEqual(t, e, low)
	assert.Equal(t, low, u.EnergyInteraction(ei, 0), "no interaction before the lower limit")

	d := u.EnergyDecay(ei, 0.5)
	assert.GreaterOrEqual(t, d, low)
	assert.Less(t, d, ei)

	ef := u.EnergyDistance(ei, 1e3)
	length := u.LengthContinuous(ei, ef)
	assert.InEpsilon(t, length/SpeedOfLight, u.ElapsedTime(ei, ef, length), 1e-3)

	prev := low
	for _, rnd := range []float64{0.1, 0.5, 0.9} {
		x := u.EnergyRandomize(ei, ef, rnd)
		assert.GreaterOrEqual(t, x, prev)
		assert.LessOrEqual(t, x, ei)
		prev = x
	}
	assert.Equal(t, ei, u.EnergyRandomize(ei, ei, 0.3))

	idx := u.TypeInteraction(ei, 0.5)
	require.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, len(def.CrossSections))
	loss, j := u.EnergyStochasticloss(ei, 0.5, 0.5, 0.5)
	assert.Equal(t, idx, j)
	assert.Greater(t, loss, 0.0)
	assert.Less(t, loss, ei)

	dir := r3.Vec{X: 0, Y: 0, Z: 1}
	mid, end := u.Scatter(length, ei, ef, dir, [4]float64{0.3, 0.8, 0.6, 0.1})
	assert.InDelta(t, 1, r3.Norm(mid), 1e-12)
	assert.InDelta(t, 1, r3.Norm(end), 1e-12)
	assert.Less(t, r3.Dot(end, dir), 1.0)

	assert.Panics(t, func() { u.EnergyInteraction(ei, 1.5) })
}

func TestStableAndDeterministic(t *testing.T) {
	stable := particle.MuMinus
	stable.Lifetime = -1
	c := muonWaterCuts(t)
	c.ContRand = false
	cfg := crosssection.Config{Particle: stable, Medium: medium.Water(), Cuts: c, Multiplier: 1}
	xs, err := crosssection.NewFactory(nil).StandardCrossSections(cfg, nil)
	require.NoError(t, err)

	u, err := New(Definition{Particle: stable, Medium: medium.Water(), Cuts: c, CrossSections: xs, Scattering: "noscattering"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, u.Low(), u.EnergyDecay(1e6, 0.5))
	assert.Equal(t, 5e5, u.EnergyRandomize(1e6, 5e5, 0.9))
	assert.Equal(t, 2e3/SpeedOfLight, u.ElapsedTime(1e6, 5e5, 2e3))

	dir := r3.Vec{X: 1, Y: 0, Z: 0}
	mid, end := u.Scatter(100, 1e6, 9e5, dir, [4]float64{0.1, 0.2, 0.3, 0.4})
	assert.Equal(t, dir, mid)
	assert.Equal(t, dir, end)

	cp := u.Clone()
	assert.Equal(t, u.Hash(), cp.Hash())
	assert.Equal(t, u.LengthContinuous(1e5, 1e4), cp.LengthContinuous(1e5, 1e4))
}

// #endregion propagation
