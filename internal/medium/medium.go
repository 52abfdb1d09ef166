// Package medium describes the target material: its ordered components and
// bulk properties. Lengths are in cm, densities in g/cm^3.
package medium

import (
	"log"
	"math"
	"sort"
	"strings"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/fingerprint"
)

// Avogadro is the Avogadro constant in 1/mol.
const Avogadro = 6.02214076e23

// #region component
// Component is one element of a medium.
type Component struct {
	Name            string
	Z               float64 // atomic number
	A               float64 // atomic mass, g/mol
	AtomsInMolecule float64
	NumberDensity   float64 // atoms per cm^3, derived by New
}

// radiationLength is the Dahl approximation in g/cm^2.
func (c Component) radiationLength() float64 {
	return 716.4 * c.A / (c.Z * (c.Z + 1) * math.Log(287/math.Sqrt(c.Z)))
}

// #endregion component

// #region medium
// Medium is an immutable material description. Use Equal, not ==.
type Medium struct {
	Name            string
	MassDensity     float64 // g/cm^3
	I               float64 // mean excitation energy, MeV
	RadiationLength float64 // g/cm^2
	Components      []Component
}

// New builds a medium and derives the number density of every component and
// the radiation length. iEV is the mean excitation energy in eV.
func New(name string, massDensity, iEV float64, comps ...Component) (Medium, error) {
	if len(comps) == 0 {
		return Medium{}, errs.Configuration("medium.New", "%s: no components", name)
	}
	if massDensity <= 0 || iEV <= 0 {
		return Medium{}, errs.Configuration("medium.New", "%s: density %g and I %g must be positive", name, massDensity, iEV)
	}

	molMass := 0.0
	for _, c := range comps {
		if c.Z <= 0 || c.A <= 0 || c.AtomsInMolecule <= 0 {
			return Medium{}, errs.Configuration("medium.New", "%s: invalid component %+v", name, c)
		}
		molMass += c.A * c.AtomsInMolecule
	}
	molDensity := massDensity * Avogadro / molMass

	out := Medium{Name: name, MassDensity: massDensity, I: iEV * 1e-6, Components: make([]Component, len(comps))}
	invX0 := 0.0
	for i, c := range comps {
		c.NumberDensity = molDensity * c.AtomsInMolecule
		out.Components[i] = c
		invX0 += c.A * c.AtomsInMolecule / molMass / c.radiationLength()
	}
	out.RadiationLength = 1 / invX0
	return out, nil
}

// RadiationLengthCM returns the radiation length in cm.
func (m Medium) RadiationLengthCM() float64 {
	return m.RadiationLength / m.MassDensity
}

// Equal reports value equality.
func (m Medium) Equal(o Medium) bool {
	if m.Name != o.Name || m.MassDensity != o.MassDensity || m.I != o.I ||
		m.RadiationLength != o.RadiationLength || len(m.Components) != len(o.Components) {
		return false
	}
	for i := range m.Components {
		if m.Components[i] != o.Components[i] {
			return false
		}
	}
	return true
}

// Hash is the fingerprint of the medium.
func (m Medium) Hash() uint64 {
	h := fingerprint.New().
		String("medium").
		String(m.Name).
		Float64(m.MassDensity).
		Float64(m.I).
		Float64(m.RadiationLength).
		Int(len(m.Components))
	for _, c := range m.Components {
		h.String(c.Name).Float64(c.Z).Float64(c.A).Float64(c.AtomsInMolecule).Float64(c.NumberDensity)
	}
	return h.Sum64()
}

// #endregion medium

// #region predefined
var (
	hydrogen = Component{Name: "H", Z: 1, A: 1.00794, AtomsInMolecule: 2}
	oxygen   = Component{Name: "O", Z: 8, A: 15.9994, AtomsInMolecule: 1}
)

func must(m Medium, err error) Medium {
	if err != nil {
		panic(err)
	}
	return m
}

// Water is liquid H2O.
func Water() Medium {
	return must(New("water", 1.0, 75.0, hydrogen, oxygen))
}

// Ice is frozen H2O.
func Ice() Medium {
	return must(New("ice", 0.917, 75.0, hydrogen, oxygen))
}

// StandardRock is the single-element reference rock.
func StandardRock() Medium {
	return must(New("standardrock", 2.65, 136.4, Component{Name: "StandardRock", Z: 11, A: 22, AtomsInMolecule: 1}))
}

// Air is dry air at sea level.
func Air() Medium {
	return must(New("air", 1.205e-3, 85.7,
		Component{Name: "N", Z: 7, A: 14.0067, AtomsInMolecule: 1.5617},
		Component{Name: "O", Z: 8, A: 15.9994, AtomsInMolecule: 0.4191},
		Component{Name: "Ar", Z: 18, A: 39.948, AtomsInMolecule: 0.0093},
	))
}

// Iron is elemental Fe.
func Iron() Medium {
	return must(New("iron", 7.874, 286.0, Component{Name: "Fe", Z: 26, A: 55.845, AtomsInMolecule: 1}))
}

var byName = map[string]func() Medium{
	"water":        Water,
	"ice":          Ice,
	"standardrock": StandardRock,
	"air":          Air,
	"iron":         Iron,
}

// ByName looks up a predefined medium, ignoring case.
func ByName(name string) (Medium, error) {
	f, ok := byName[strings.ToLower(name)]
	if !ok {
		err := errs.Configuration("medium.ByName", "unknown medium %q", name)
		log.Printf("%v", err)
		return Medium{}, err
	}
	return f(), nil
}

// Names lists the predefined media, sorted.
func Names() []string {
	out := make([]string, 0, len(byName))
	for k := range byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// #endregion predefined
