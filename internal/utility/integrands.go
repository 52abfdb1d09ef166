package utility

import (
	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/particle"
)

// integrands sums the cross sections of one configuration. Every integrand
// is negative so that integrating downwards in energy gives a positive
// quantity.
type integrands struct {
	xs []crosssection.CrossSection
	p  particle.Definition
}

func (in integrands) dEdx(energy float64) float64 {
	var sum float64
	for _, cs := range in.xs {
		sum += cs.DEdx(energy)
	}
	if !(sum > 0) {
		errs.Fatal(errs.Invariant("utility.dEdx", "no continuous loss at E=%g", energy))
	}
	return sum
}

// displacement is -1/dEdx; its integral is the distance in cm.
func (in integrands) displacement(energy float64) float64 {
	return -1 / in.dEdx(energy)
}

// interaction is -dNdx/dEdx; its integral is the number of interaction
// lengths.
func (in integrands) interaction(energy float64) float64 {
	var rate float64
	for _, cs := range in.xs {
		rate += cs.DNdx(energy)
	}
	return -rate / in.dEdx(energy)
}

// decay is -m/(p c tau dEdx); its integral is the proper time in lifetimes.
func (in integrands) decay(energy float64) float64 {
	return -in.p.Mass / (in.p.Momentum(energy) * SpeedOfLight * in.p.Lifetime * in.dEdx(energy))
}

// time is -E/(p c dEdx); its integral is the elapsed time in s.
func (in integrands) time(energy float64) float64 {
	return -energy / (in.p.Momentum(energy) * SpeedOfLight * in.dEdx(energy))
}

// contRand is -dE2dx/dEdx; its integral is the variance of the continuous
// loss in MeV^2.
func (in integrands) contRand(energy float64) float64 {
	var sum float64
	for _, cs := range in.xs {
		sum += cs.DE2dx(energy)
	}
	return -sum / in.dEdx(energy)
}

// scattering is -E^2/(p^4 dEdx); its integral is the path length weighted
// by 1/(beta p)^2.
func (in integrands) scattering(energy float64) float64 {
	p := in.p.Momentum(energy)
	return -energy * energy / (p * p * p * p * in.dEdx(energy))
}
