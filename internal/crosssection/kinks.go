package crosssection

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/danielpatrickdp/eloss/internal/numeric"
)

const (
	// kinkScan is the number of log spaced energies searched for onsets.
	kinkScan = 400
	// kinkSteps halves the bracket of an onset this many times in ln E.
	kinkSteps = 48
	// cellTolerance is the relative miss of a table cell against direct
	// integration above which the cell is integrated directly.
	cellTolerance = 1e-4
)

// #region kinks
// KinkEnergies returns the energies in (lo, hi) where the integrated
// quantities of p are not smooth in E: the lower energy limit, the switch
// from the relative to the absolute cut, and per component the onsets of the
// continuous range (VUp > VMin) and the stochastic range (VMax > VUp).
// Tables split at these energies so that no interpolation stencil spans a
// kink.
func KinkEnergies(p Parametrization, lo, hi float64) []float64 {
	if !(lo > 0 && lo < hi) {
		return nil
	}
	var out []float64
	if e := p.LowerEnergyLimit(); e > lo && e < hi {
		out = append(out, e)
	}
	if c := p.Cuts(); !math.IsInf(c.Ecut, 1) && c.Vcut < 1 {
		if e := c.Ecut / c.Vcut; e > lo && e < hi {
			out = append(out, e)
		}
	}
	for _, comp := range p.Medium().Components {
		continuous := func(energy float64) bool {
			lim := p.IntegralLimits(comp, energy)
			return lim.VUp > lim.VMin
		}
		stochastic := func(energy float64) bool {
			lim := p.IntegralLimits(comp, energy)
			return lim.VMax > lim.VUp
		}
		out = append(out, onsets(lo, hi, continuous)...)
		out = append(out, onsets(lo, hi, stochastic)...)
	}
	return out
}

// onsets scans [lo, hi] on a log grid and returns the energies where pred
// changes value, each refined by bisection in ln E to the first energy of
// the new value.
func onsets(lo, hi float64, pred func(float64) bool) []float64 {
	es := floats.LogSpan(make([]float64, kinkScan), lo, hi)
	var out []float64
	prev := pred(es[0])
	for i := 1; i < len(es); i++ {
		cur := pred(es[i])
		if cur == prev {
			continue
		}
		a, b := math.Log(es[i-1]), math.Log(es[i])
		for range kinkSteps {
			m := 0.5 * (a + b)
			if pred(math.Exp(m)) == prev {
				a = m
			} else {
				b = m
			}
		}
		out = append(out, math.Exp(b))
		prev = cur
	}
	return out
}

// #endregion kinks

// #region energy-table
// energyTable is a quantity tabulated between kinks. Cells flagged at build
// time evaluate f.
type energyTable struct {
	pw *numeric.Piecewise
	f  func(float64) float64
}

func (t energyTable) at(energy float64) float64 {
	k, i := t.pw.Locate(energy)
	if t.pw.Exact(k, i) {
		return t.f(energy)
	}
	return t.pw.Parts()[k].Interpolate(energy)
}

// directCells counts the flagged cells.
func (t energyTable) directCells() int {
	var n int
	for k, part := range t.pw.Parts() {
		for i := range len(part.Values()) - 1 {
			if t.pw.Exact(k, i) {
				n++
			}
		}
	}
	return n
}

// #endregion energy-table
