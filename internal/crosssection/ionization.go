package crosssection

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/medium"
)

// IonizationBetheBlochRossi is knock-on electron production on the atomic
// electrons of a component.
type IonizationBetheBlochRossi struct {
	base
}

// NewIonizationBetheBlochRossi builds the parametrization.
func NewIonizationBetheBlochRossi(cfg Config) (Parametrization, error) {
	b, err := newBase(IonizBetheBlochRossi, cfg)
	if err != nil {
		return nil, err
	}
	return IonizationBetheBlochRossi{base: b}, nil
}

// LowerEnergyLimit implements Parametrization.
func (p IonizationBetheBlochRossi) LowerEnergyLimit() float64 {
	return p.particle.Mass
}

// IntegralLimits implements Parametrization. vMin is set by the mean
// excitation energy of the medium.
func (p IonizationBetheBlochRossi) IntegralLimits(_ medium.Component, energy float64) Limits {
	g, _ := p.gamma(energy)
	ratio := ME / p.particle.Mass
	vMax := 2 * ME * (g*g - 1) / (1 + 2*g*ratio + ratio*ratio) / energy
	vMin := p.medium.I / energy
	return p.cutLimits(vMin, vMax, energy)
}

// DifferentialCrossSection implements Parametrization.
func (p IonizationBetheBlochRossi) DifferentialCrossSection(comp medium.Component, energy, v float64) float64 {
	lim := p.IntegralLimits(comp, energy)
	if !inRange(lim, v) {
		return 0
	}
	g, beta2 := p.gamma(energy)
	spin := v / (1 + 1/g)
	shape := 1 - beta2*v/lim.VMax + 0.5*spin*spin
	return math.Max(0, 2*math.Pi*ElectronRad*ElectronRad*ME*comp.Z/(beta2*energy*v*v)*shape)
}

// Hash implements Parametrization.
func (p IonizationBetheBlochRossi) Hash() uint64 {
	return p.hasher().Sum64()
}
