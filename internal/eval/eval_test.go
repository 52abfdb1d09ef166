package eval

import (
	"math"
	"strings"
	"testing"

	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/cuts"
	"github.com/danielpatrickdp/eloss/internal/medium"
	"github.com/danielpatrickdp/eloss/internal/particle"
	"github.com/danielpatrickdp/eloss/internal/tablecache"
)

var testDef = crosssection.InterpolationDef{
	NodesCrossSection:            60,
	NodesCrossSectionV:           20,
	NodesPropagate:               60,
	NodesContinuousRandomization: 30,
	MaxNodeEnergy:                1e10,
	OrderOfInterpolation:         5,
}

func makePair(t *testing.T, kind crosssection.Kind, multiplier float64) (crosssection.CrossSection, crosssection.CrossSection) {
	t.Helper()
	c, err := cuts.New(-1, 0.05, false)
	if err != nil {
		t.Fatalf("cuts: %v", err)
	}
	f := crosssection.NewFactory(tablecache.New(nil))
	p, err := f.CreateParametrizationKind(kind, crosssection.Config{
		Particle:   particle.MuMinus,
		Medium:     medium.Water(),
		Cuts:       c,
		Multiplier: multiplier,
	})
	if err != nil {
		t.Fatalf("create %s: %v", kind, err)
	}
	ip, err := crosssection.NewInterpolant(p, testDef, f.Cache())
	if err != nil {
		t.Fatalf("interpolant: %v", err)
	}
	return crosssection.NewIntegral(p), ip
}

func TestEvalPassesOnAgreeingStrategies(t *testing.T) {
	direct, interp := makePair(t, crosssection.IonizBetheBlochRossi, 1)
	config := DefaultEvalConfig()
	config.Energies = []float64{1e5, 1e6}
	h := NewEvalHarness(config)

	result := h.Run(direct, interp)

	if !result.Passed {
		t.Fatalf("expected pass, got fail: %s", result.Reason)
	}
	if len(result.Metrics) != 6 {
		t.Fatalf("expected 6 metrics, got %d", len(result.Metrics))
	}
	for _, m := range result.Metrics {
		if m.Reference <= 0 {
			t.Errorf("%s at %g: expected positive direct value, got %g", m.Name, m.Energy, m.Reference)
		}
	}
}

func TestEvalFailsBeyondTolerance(t *testing.T) {
	direct, interp := makePair(t, crosssection.IonizBetheBlochRossi, 1)
	config := DefaultEvalConfig()
	config.Energies = []float64{1e5}
	config.Tolerance = -1
	h := NewEvalHarness(config)

	result := h.Run(direct, interp)

	if result.Passed {
		t.Fatal("expected fail with negative tolerance")
	}
	if !strings.Contains(result.Reason, "3 checks") {
		t.Errorf("expected reason to count 3 failures, got %q", result.Reason)
	}
}

func TestEvalRejectsDifferentParametrizations(t *testing.T) {
	direct, _ := makePair(t, crosssection.IonizBetheBlochRossi, 1)
	_, interp := makePair(t, crosssection.IonizBetheBlochRossi, 2)
	h := NewEvalHarness(DefaultEvalConfig())

	result := h.Run(direct, interp)

	if result.Passed {
		t.Fatal("expected fail for different multipliers")
	}
	if len(result.Metrics) != 0 {
		t.Errorf("expected no metrics, got %d", len(result.Metrics))
	}
}

func TestEvalDisabledProcessAgrees(t *testing.T) {
	direct, interp := makePair(t, crosssection.EpairKelnerKokoulinPetrukhin, 0)
	h := NewEvalHarness(DefaultEvalConfig())

	result := h.Run(direct, interp)

	if !result.Passed {
		t.Fatalf("expected pass for zero multiplier: %s", result.Reason)
	}
	for _, m := range result.Metrics {
		if m.Reference != 0 || m.Candidate != 0 {
			t.Errorf("%s at %g: expected zeros, got %g / %g", m.Name, m.Energy, m.Reference, m.Candidate)
		}
	}
}

func TestRelDiff(t *testing.T) {
	cases := []struct {
		a, b, want float64
	}{
		{0, 0, 0},
		{1, 1, 0},
		{1, 1.001, 0.001 / 1.001},
		{0, 1, 1},
		{-2, 2, 2},
	}
	for _, c := range cases {
		if got := RelDiff(c.a, c.b); math.Abs(got-c.want) > 1e-15 {
			t.Errorf("RelDiff(%g, %g) = %g, want %g", c.a, c.b, got, c.want)
		}
	}
	if !math.IsInf(RelDiff(math.NaN(), 1), 1) {
		t.Error("expected +Inf for NaN input")
	}
}
