package crosssection

import (
	"github.com/danielpatrickdp/eloss/internal/errs"
	"github.com/danielpatrickdp/eloss/internal/fingerprint"
	"github.com/danielpatrickdp/eloss/internal/numeric"
)

// InterpolationDef selects the interpolation strategy and sizes its tables.
// A nil *InterpolationDef selects direct integration.
type InterpolationDef struct {
	NodesCrossSection            int     // energy nodes of cross section tables
	NodesCrossSectionV           int     // v nodes of the sampling tables
	NodesPropagate               int     // energy nodes of utility tables
	NodesContinuousRandomization int     // energy nodes of the randomization table
	MaxNodeEnergy                float64 // upper table bound, MeV
	OrderOfInterpolation         int
}

// DefaultInterpolationDef returns the production table sizes.
func DefaultInterpolationDef() *InterpolationDef {
	return &InterpolationDef{
		NodesCrossSection:            100,
		NodesCrossSectionV:           50,
		NodesPropagate:               200,
		NodesContinuousRandomization: 100,
		MaxNodeEnergy:                1e14,
		OrderOfInterpolation:         5,
	}
}

// Validate checks the node counts and bounds.
func (d InterpolationDef) Validate() error {
	o := d.OrderOfInterpolation
	for name, n := range map[string]int{
		"NodesCrossSection":            d.NodesCrossSection,
		"NodesCrossSectionV":           d.NodesCrossSectionV,
		"NodesPropagate":               d.NodesPropagate,
		"NodesContinuousRandomization": d.NodesContinuousRandomization,
	} {
		if n < o {
			return errs.Configuration("crosssection.InterpolationDef", "%s=%d below interpolation order %d", name, n, o)
		}
	}
	if o < 2 {
		return errs.Configuration("crosssection.InterpolationDef", "interpolation order %d", o)
	}
	if !(d.MaxNodeEnergy > 0) {
		return errs.Configuration("crosssection.InterpolationDef", "max node energy %g", d.MaxNodeEnergy)
	}
	return nil
}

// Hash is the fingerprint of the definition.
func (d InterpolationDef) Hash() uint64 {
	return fingerprint.New().
		String("interpolationdef").
		Int(d.NodesCrossSection).
		Int(d.NodesCrossSectionV).
		Int(d.NodesPropagate).
		Int(d.NodesContinuousRandomization).
		Float64(d.MaxNodeEnergy).
		Int(d.OrderOfInterpolation).
		Sum64()
}

// EnergyTable returns a log-energy table definition over [low, MaxNodeEnergy]
// with nodes points and log substituted values.
func (d InterpolationDef) EnergyTable(low float64, nodes int) numeric.Definition1D {
	return numeric.Definition1D{
		X:        numeric.Axis{Nodes: nodes, Min: low, Max: d.MaxNodeEnergy, Log: true, Order: d.OrderOfInterpolation},
		LogSubst: true,
		OrderY:   d.OrderOfInterpolation,
	}
}

// samplingTable is the (E, t) definition of the cumulative sampling tables.
func (d InterpolationDef) samplingTable(low float64) numeric.Definition2D {
	return numeric.Definition2D{
		X: numeric.Axis{Nodes: d.NodesCrossSection, Min: low, Max: d.MaxNodeEnergy, Log: true, Order: d.OrderOfInterpolation},
		Y: numeric.Axis{Nodes: d.NodesCrossSectionV, Min: 0, Max: 1, Order: d.OrderOfInterpolation},
	}
}
