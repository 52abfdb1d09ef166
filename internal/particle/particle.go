// Package particle holds immutable particle definitions. Energies are in
// MeV, lifetimes in seconds.
package particle

import (
	"log"
	"math"
	"sort"
	"strings"

	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/fingerprint"
)

// #region definition
// Definition describes a particle species. Values are compared by ==.
type Definition struct {
	Name     string
	Mass     float64 // MeV
	Charge   float64 // units of e
	Lifetime float64 // s; negative means stable
	Low      float64 // lowest tracked total energy, MeV
	Type     int     // PDG code
}

// Stable reports whether the particle never decays.
func (d Definition) Stable() bool {
	return d.Lifetime < 0
}

// Momentum returns p = sqrt(E^2 - m^2), zero below the rest mass.
func (d Definition) Momentum(energy float64) float64 {
	if energy <= d.Mass {
		return 0
	}
	return math.Sqrt((energy - d.Mass) * (energy + d.Mass))
}

// Hash is the fingerprint of the definition.
func (d Definition) Hash() uint64 {
	return fingerprint.New().
		String("particle").
		String(d.Name).
		Float64(d.Mass).
		Float64(d.Charge).
		Float64(d.Lifetime).
		Float64(d.Low).
		Int(d.Type).
		Sum64()
}

// #endregion definition

// #region predefined
const (
	MuonMass     = 105.6583755
	TauMass      = 1776.86
	ElectronMass = 0.51099895
)

// lowFactor keeps the lowest tracked energy above the rest mass so that
// momentum and stopping power stay positive.
const lowFactor = 1.05

var (
	MuMinus  = Definition{Name: "MuMinus", Mass: MuonMass, Charge: -1, Lifetime: 2.1969811e-6, Low: lowFactor * MuonMass, Type: 13}
	MuPlus   = Definition{Name: "MuPlus", Mass: MuonMass, Charge: 1, Lifetime: 2.1969811e-6, Low: lowFactor * MuonMass, Type: -13}
	TauMinus = Definition{Name: "TauMinus", Mass: TauMass, Charge: -1, Lifetime: 290.3e-15, Low: lowFactor * TauMass, Type: 15}
	TauPlus  = Definition{Name: "TauPlus", Mass: TauMass, Charge: 1, Lifetime: 290.3e-15, Low: lowFactor * TauMass, Type: -15}
	EMinus   = Definition{Name: "EMinus", Mass: ElectronMass, Charge: -1, Lifetime: -1, Low: lowFactor * ElectronMass, Type: 11}
	EPlus    = Definition{Name: "EPlus", Mass: ElectronMass, Charge: 1, Lifetime: -1, Low: lowFactor * ElectronMass, Type: -11}
	Gamma    = Definition{Name: "Gamma", Mass: 0, Charge: 0, Lifetime: -1, Low: 0, Type: 22}
)

var byName = map[string]Definition{}

func init() {
	for _, d := range []Definition{MuMinus, MuPlus, TauMinus, TauPlus, EMinus, EPlus, Gamma} {
		byName[strings.ToLower(d.Name)] = d
	}
}

// ByName looks up a predefined particle, ignoring case.
func ByName(name string) (Definition, error) {
	d, ok := byName[strings.ToLower(name)]
	if !ok {
		err := errs.Configuration("particle.ByName", "unknown particle %q", name)
		log.Printf("%v", err)
		return Definition{}, err
	}
	return d, nil
}

// Names lists the predefined particles in lowercase, sorted.
func Names() []string {
	out := make([]string, 0, len(byName))
	for k := range byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// #endregion predefined
