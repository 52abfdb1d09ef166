// Package scattering deflects a particle after a continuous step.
package scattering

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/fingerprint"
	"github.com/danielpatrickdp/eloss/internal/medium"
	"github.com/danielpatrickdp/eloss/internal/particle"
	"github.com/danielpatrickdp/eloss/internal/registry"
)

// #region scattering
// Scattering samples the deflection of one continuous step.
type Scattering interface {
	Name() string
	// Scatter returns the mean direction of the step, used for the
	// displacement, and the direction at its end. rnd are four uniform draws.
	Scatter(distance, ei, ef float64, direction r3.Vec, rnd [4]float64) (r3.Vec, r3.Vec)
	Hash() uint64
}

// Integrator is the cumulative integral of E^2/p^4 along the step. The
// propagation utility provides it.
type Integrator interface {
	Calculate(ei, ef float64) float64
}

// Model enumerates the registered scattering models.
type Model int

const (
	ModelNone Model = iota + 1
	ModelHighland
)

// Constructor builds a model for a particle in a medium.
type Constructor func(p particle.Definition, m medium.Medium, in Integrator) (Scattering, error)

// NewRegistry returns the registry with the built-in models.
func NewRegistry() *registry.Registry[Model, Constructor] {
	r := registry.New[Model, Constructor]("scattering")
	r.MustRegister("noscattering", ModelNone, func(particle.Definition, medium.Medium, Integrator) (Scattering, error) {
		return NoScattering{}, nil
	})
	r.MustRegister("highland", ModelHighland, NewHighland)
	return r
}

// #endregion scattering

// #region none
// NoScattering keeps the direction.
type NoScattering struct{}

func (NoScattering) Name() string { return "noscattering" }

func (NoScattering) Scatter(_, _, _ float64, direction r3.Vec, _ [4]float64) (r3.Vec, r3.Vec) {
	return direction, direction
}

func (NoScattering) Hash() uint64 { return fingerprint.New().String("noscattering").Sum64() }

// #endregion none

// #region highland
// highlandScale is the Highland constant in MeV.
const highlandScale = 13.6

// Highland is gaussian multiple scattering with the Highland width.
type Highland struct {
	particle particle.Definition
	medium   medium.Medium
	in       Integrator
}

// NewHighland builds the model. in must integrate E^2/p^4 over the step.
func NewHighland(p particle.Definition, m medium.Medium, in Integrator) (Scattering, error) {
	switch {
	case p.Mass <= 0:
		return nil, errs.Configuration("scattering.NewHighland", "needs a massive particle, got %s", p.Name)
	case !(m.RadiationLength > 0):
		return nil, errs.Configuration("scattering.NewHighland", "medium %q has no radiation length", m.Name)
	case in == nil:
		return nil, errs.Configuration("scattering.NewHighland", "no integrator")
	}
	return &Highland{particle: p, medium: m, in: in}, nil
}

func (h *Highland) Name() string { return "highland" }

func (h *Highland) Hash() uint64 {
	return fingerprint.New().String("highland").Uint64(h.particle.Hash()).Uint64(h.medium.Hash()).Sum64()
}

// Theta0 is the width of the projected angle distribution after distance
// cm between ei and ef.
func (h *Highland) Theta0(distance, ei, ef float64) float64 {
	x0 := h.medium.RadiationLengthCM()
	if !(distance > 0) {
		return 0
	}
	aux := h.in.Calculate(ei, ef)
	if !(aux > 0) {
		return 0
	}
	corr := math.Max(1+0.088*math.Log10(distance/x0), 0)
	return highlandScale * math.Abs(h.particle.Charge) * math.Sqrt(aux/x0) * corr
}

// Scatter implements Scattering.
func (h *Highland) Scatter(distance, ei, ef float64, direction r3.Vec, rnd [4]float64) (r3.Vec, r3.Vec) {
	theta0 := h.Theta0(distance, ei, ef)
	if theta0 == 0 {
		return direction, direction
	}
	g1 := gauss(theta0, rnd[0])
	g2 := gauss(theta0, rnd[1])
	g3 := gauss(theta0, rnd[2])
	g4 := gauss(theta0, rnd[3])

	sx := (g1/math.Sqrt(3) + g2) / 2
	tx := g2
	sy := (g3/math.Sqrt(3) + g4) / 2
	ty := g4
	return tilt(direction, sx, sy), tilt(direction, tx, ty)
}

// gauss maps a uniform draw onto a centred normal of width sigma.
func gauss(sigma, rnd float64) float64 {
	rnd = math.Min(math.Max(rnd, 1e-15), 1-1e-15)
	return math.Sqrt2 * sigma * math.Erfinv(2*rnd-1)
}

// tilt rotates dir by the projected angles ax, ay in its transverse plane.
func tilt(dir r3.Vec, ax, ay float64) r3.Vec {
	dir = r3.Unit(dir)
	u, v := transverse(dir)
	sx, sy := math.Sin(ax), math.Sin(ay)
	sz := math.Sqrt(math.Max(1-sx*sx-sy*sy, 0))
	out := r3.Add(r3.Add(r3.Scale(sx, u), r3.Scale(sy, v)), r3.Scale(sz, dir))
	return r3.Unit(out)
}

// transverse returns two unit vectors orthogonal to dir and each other.
func transverse(dir r3.Vec) (r3.Vec, r3.Vec) {
	ref := r3.Vec{X: 0, Y: 0, Z: 1}
	if math.Abs(dir.Z) > 0.9 {
		ref = r3.Vec{X: 1, Y: 0, Z: 0}
	}
	u := r3.Unit(r3.Cross(ref, dir))
	return u, r3.Cross(dir, u)
}

// #endregion highland
