package crosssection

import (
	"math"

	"github.com/danielpatrickdp/eloss/internal/medium"
)

// #region photonuclear
// photoM1Sq is the mass scale of the photon virtuality spectrum, MeV^2.
const photoM1Sq = 0.54e6

// PhotoRealPhoton is photonuclear scattering in the real photon
// approximation. The photon-nucleon cross section is the variant
// specific part.
type PhotoRealPhoton struct {
	base
	hard bool
}

// NewPhotoKokoulin builds the parametrization with the Kokoulin photon
// cross section.
func NewPhotoKokoulin(cfg Config) (Parametrization, error) {
	return newPhoto(PhotoKokoulin, cfg)
}

// NewPhotoZeus builds the parametrization with the ZEUS fit.
func NewPhotoZeus(cfg Config) (Parametrization, error) {
	return newPhoto(PhotoZeus, cfg)
}

func newPhoto(kind Kind, cfg Config) (Parametrization, error) {
	b, err := newBase(kind, cfg)
	if err != nil {
		return nil, err
	}
	return PhotoRealPhoton{base: b, hard: cfg.Options.HardComponent}, nil
}

func photoThreshold() float64 {
	return PionMass + PionMass*PionMass/(2*ProtonMass)
}

// LowerEnergyLimit implements Parametrization.
func (p PhotoRealPhoton) LowerEnergyLimit() float64 {
	return p.particle.Mass + photoThreshold()
}

// IntegralLimits implements Parametrization.
func (p PhotoRealPhoton) IntegralLimits(_ medium.Component, energy float64) Limits {
	return p.cutLimits(photoThreshold()/energy, 1-p.particle.Mass/energy, energy)
}

// DifferentialCrossSection implements Parametrization.
func (p PhotoRealPhoton) DifferentialCrossSection(comp medium.Component, energy, v float64) float64 {
	lim := p.IntegralLimits(comp, energy)
	if !inRange(lim, v) || v >= 1 {
		return 0
	}
	m := p.particle.Mass
	t := m * m * v * v / (1 - v)
	kappa := 1 - 2/v + 2/(v*v)
	sigma := p.photonNucleon(v*energy) * 1e-30
	res := Alpha / (2 * math.Pi) * comp.A * sigma * v * kappa * math.Log(1+photoM1Sq/t)
	if p.hard {
		res *= 1 + 0.01*math.Log(1+energy/1e5)*(1-v)
	}
	return math.Max(0, res)
}

// photonNucleon returns the photon-nucleon cross section in microbarn for a
// photon of energy eps MeV.
func (p PhotoRealPhoton) photonNucleon(eps float64) float64 {
	egev := eps * 1e-3
	switch p.kind {
	case PhotoZeus:
		s := 2 * ProtonMass * 1e-3 * egev
		return 63.5*math.Pow(s, 0.097) + 145/math.Sqrt(s)
	default:
		l := math.Log(0.0213 * egev)
		return 114.3 + 1.647*l*l
	}
}

// Hash implements Parametrization.
func (p PhotoRealPhoton) Hash() uint64 {
	return p.hasher().Bool(p.hard).Sum64()
}

// #endregion photonuclear
