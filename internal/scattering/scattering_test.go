package scattering

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/medium"
	"github.com/danielpatrickdp/eloss/internal/particle"
)

// constant integrates E^2/p^4 as if it were constant over the step.
type constant float64

func (c constant) Calculate(ei, ef float64) float64 { return float64(c) * (ei - ef) }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"highland", "noscattering"}, r.Names())

	ctor, err := r.Lookup("Highland")
	require.NoError(t, err)
	s, err := ctor(particle.MuMinus, medium.Water(), constant(1e-10))
	require.NoError(t, err)
	assert.Equal(t, "highland", s.Name())

	_, err = r.Lookup("moliere")
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestNoScattering(t *testing.T) {
	dir := r3.Vec{X: 0, Y: 0, Z: 1}
	a, b := NoScattering{}.Scatter(100, 1e5, 9e4, dir, [4]float64{0.1, 0.2, 0.3, 0.4})
	assert.Equal(t, dir, a)
	assert.Equal(t, dir, b)
}

func TestHighlandValidation(t *testing.T) {
	_, err := NewHighland(particle.Gamma, medium.Water(), constant(1))
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	_, err = NewHighland(particle.MuMinus, medium.Water(), nil)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestHighlandWidth(t *testing.T) {
	s, err := NewHighland(particle.MuMinus, medium.Water(), constant(1e-12))
	require.NoError(t, err)
	h := s.(*Highland)

	assert.Equal(t, 0.0, h.Theta0(0, 1e5, 1e5))
	short := h.Theta0(10, 1e5, 1e5-20)
	long := h.Theta0(100, 1e5, 1e5-200)
	assert.Greater(t, short, 0.0)
	assert.Greater(t, long, short)
}

func TestHighlandScatter(t *testing.T) {
	s, err := NewHighland(particle.MuMinus, medium.StandardRock(), constant(1e-9))
	require.NoError(t, err)
	dir := r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1})

	mid, end := s.Scatter(1000, 1e4, 9e3, dir, [4]float64{0.5, 0.5, 0.5, 0.5})
	assert.InDelta(t, 1, r3.Dot(mid, dir), 1e-12, "median draws keep the direction")
	assert.InDelta(t, 1, r3.Dot(end, dir), 1e-12)

	mid, end = s.Scatter(1000, 1e4, 9e3, dir, [4]float64{0.2, 0.9, 0.7, 0.1})
	assert.InDelta(t, 1, r3.Norm(mid), 1e-12)
	assert.InDelta(t, 1, r3.Norm(end), 1e-12)
	assert.Less(t, r3.Dot(end, dir), 1.0)
	assert.Greater(t, r3.Dot(end, dir), math.Cos(0.5))
}

func TestTransverseBasis(t *testing.T) {
	for _, d := range []r3.Vec{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, r3.Unit(r3.Vec{X: -1, Y: 2, Z: 0.5})} {
		u, v := transverse(d)
		assert.InDelta(t, 0, r3.Dot(u, d), 1e-12)
		assert.InDelta(t, 0, r3.Dot(v, d), 1e-12)
		assert.InDelta(t, 0, r3.Dot(u, v), 1e-12)
		assert.InDelta(t, 1, r3.Norm(v), 1e-12)
	}
}
