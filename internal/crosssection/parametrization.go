// Package crosssection evaluates differential cross sections of the energy
// loss processes and integrates them into stopping powers, interaction rates
// and sampled stochastic losses. Every process comes with two evaluators,
// direct integration and table interpolation, which agree to 1e-3.
package crosssection

import (
	"math"
	"strings"

	"github.com/danielpatrickdp/eloss/internal/cuts"
	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/fingerprint"
	"github.com/danielpatrickdp/eloss/internal/medium"
	"github.com/danielpatrickdp/eloss/internal/particle"
)

// #region constants
const (
	ME           = particle.ElectronMass // MeV
	Alpha        = 1 / 137.035999084
	ElectronRad  = 2.8179403262e-13 // cm
	PionMass     = 139.57039        // MeV
	ProtonMass   = 938.272088       // MeV
	SqrtE        = 1.6487212707001282
	BremsScreenB = 184.15
)

// #endregion constants

// #region family
// Family groups the parametrizations of one physical process.
type Family int

const (
	Ionization Family = iota + 1
	Bremsstrahlung
	EpairProduction
	Photonuclear
	PhotoPairProduction
	WeakInteraction
)

var familyNames = map[Family]string{
	Ionization:          "ionization",
	Bremsstrahlung:      "bremsstrahlung",
	EpairProduction:     "epair",
	Photonuclear:        "photonuclear",
	PhotoPairProduction: "photopair",
	WeakInteraction:     "weak",
}

func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return "unknown"
}

// ParseFamily returns the family named name, ignoring case.
func ParseFamily(name string) (Family, error) {
	for f, s := range familyNames {
		if strings.EqualFold(s, strings.TrimSpace(name)) {
			return f, nil
		}
	}
	return 0, errs.Configuration("crosssection.ParseFamily", "unknown family %q", name)
}

// Families lists every family in a fixed order.
func Families() []Family {
	return []Family{Ionization, Bremsstrahlung, EpairProduction, Photonuclear, PhotoPairProduction, WeakInteraction}
}

// #endregion family

// #region kind
// Kind enumerates the registered parametrizations across all families.
type Kind int

const (
	KindUnknown Kind = iota
	IonizBetheBlochRossi
	BremsKelnerKokoulinPetrukhin
	BremsCompleteScreening
	EpairKelnerKokoulinPetrukhin
	PhotoKokoulin
	PhotoZeus
	PhotoPairTsai
	WeakCooperSarkarMertsch
)

var kindInfo = map[Kind]struct {
	name   string
	family Family
}{
	IonizBetheBlochRossi:         {"ionizationbetheblochrossi", Ionization},
	BremsKelnerKokoulinPetrukhin: {"bremskelnerkokoulinpetrukhin", Bremsstrahlung},
	BremsCompleteScreening:       {"bremscompletescreening", Bremsstrahlung},
	EpairKelnerKokoulinPetrukhin: {"epairkelnerkokoulinpetrukhin", EpairProduction},
	PhotoKokoulin:                {"photokokoulin", Photonuclear},
	PhotoZeus:                    {"photozeus", Photonuclear},
	PhotoPairTsai:                {"photopairtsai", PhotoPairProduction},
	WeakCooperSarkarMertsch:      {"weakcoopersarkarmertsch", WeakInteraction},
}

func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return "unknown"
}

// Family returns the process family of the kind.
func (k Kind) Family() Family {
	return kindInfo[k].family
}

// #endregion kind

// #region parametrization
// Limits are the kinematic bounds of the relative energy transfer v at one
// energy. VMin <= VUp <= VMax always holds.
type Limits struct {
	VMin float64
	VUp  float64 // continuous/stochastic split
	VMax float64
}

// Parametrization evaluates the differential cross section of one process.
// Implementations are immutable values and safe for concurrent use.
type Parametrization interface {
	Name() string
	Kind() Kind
	Family() Family
	Particle() particle.Definition
	Medium() medium.Medium
	Cuts() cuts.Settings
	Multiplier() float64
	// LowerEnergyLimit is the energy below which the process cannot occur.
	LowerEnergyLimit() float64
	// DifferentialCrossSection returns dsigma/dv per atom of comp in cm^2;
	// zero outside [VMin, VMax].
	DifferentialCrossSection(comp medium.Component, energy, v float64) float64
	IntegralLimits(comp medium.Component, energy float64) Limits
	// Hash covers kind, particle, medium, cuts, multiplier and options.
	Hash() uint64
}

// Options are the process specific switches.
type Options struct {
	LPM           bool   // Landau-Pomeranchuk-Migdal suppression (brems, epair)
	HardComponent bool   // hard component of photonuclear scattering
	PhotoAngle    string // photo-angle distribution of pair products (photopair)
}

// Config is everything a constructor needs.
type Config struct {
	Particle   particle.Definition
	Medium     medium.Medium
	Cuts       cuts.Settings
	Multiplier float64
	Options    Options
}

// Constructor builds a parametrization from a configuration.
type Constructor func(cfg Config) (Parametrization, error)

// #endregion parametrization

// #region base
// base carries the configuration shared by all parametrizations.
type base struct {
	kind       Kind
	particle   particle.Definition
	medium     medium.Medium
	cuts       cuts.Settings
	multiplier float64
}

func newBase(kind Kind, cfg Config) (base, error) {
	op := "crosssection." + kind.String()
	switch {
	case len(cfg.Medium.Components) == 0:
		return base{}, errs.Configuration(op, "medium %q has no components", cfg.Medium.Name)
	case math.IsNaN(cfg.Multiplier) || math.IsInf(cfg.Multiplier, 0):
		return base{}, errs.Configuration(op, "multiplier %g", cfg.Multiplier)
	case cfg.Cuts == (cuts.Settings{}):
		return base{}, errs.Configuration(op, "cuts not initialised")
	case kind.Family() == PhotoPairProduction && cfg.Particle.Mass != 0:
		return base{}, errs.Configuration(op, "needs a photon, got %s", cfg.Particle.Name)
	case kind.Family() != PhotoPairProduction && cfg.Particle.Mass <= 0:
		return base{}, errs.Configuration(op, "needs a massive particle, got %s", cfg.Particle.Name)
	}
	return base{
		kind:       kind,
		particle:   cfg.Particle,
		medium:     cfg.Medium,
		cuts:       cfg.Cuts,
		multiplier: cfg.Multiplier,
	}, nil
}

func (b base) Name() string { return b.kind.String() }
func (b base) Kind() Kind { return b.kind }
func (b base) Family() Family { return b.kind.Family() }
func (b base) Particle() particle.Definition { return b.particle }
func (b base) Medium() medium.Medium { return b.medium }
func (b base) Cuts() cuts.Settings { return b.cuts }
func (b base) Multiplier() float64 { return b.multiplier }

// hasher starts a fingerprint with the shared configuration; process
// options are appended by the caller.
func (b base) hasher() *fingerprint.Hasher {
	return fingerprint.New().
		String(b.kind.String()).
		Uint64(b.particle.Hash()).
		Uint64(b.medium.Hash()).
		Uint64(b.cuts.Hash()).
		Float64(b.multiplier)
}

// cutLimits places vUp from the cut settings inside [vMin, vMax]. Below
// threshold the interval collapses onto vMin.
func (b base) cutLimits(vMin, vMax, energy float64) Limits {
	vMin = math.Max(vMin, 0)
	if !(vMax > vMin) {
		return Limits{VMin: vMin, VUp: vMin, VMax: vMin}
	}
	vUp := math.Min(math.Max(b.cuts.Cut(energy), vMin), vMax)
	return Limits{VMin: vMin, VUp: vUp, VMax: vMax}
}

// inRange reports whether v lies inside the kinematic interval.
func inRange(lim Limits, v float64) bool {
	return v >= lim.VMin && v <= lim.VMax && lim.VMax > lim.VMin
}

// gamma returns the Lorentz factor and beta squared.
func (b base) gamma(energy float64) (float64, float64) {
	g := energy / b.particle.Mass
	return g, 1 - 1/(g*g)
}

// screeningVMax is the upper kinematic limit shared by bremsstrahlung and
// pair production.
func (b base) screeningVMax(comp medium.Component, energy float64) float64 {
	return 1 - 0.75*SqrtE*(b.particle.Mass/energy)*math.Cbrt(comp.Z)
}

// #endregion base
