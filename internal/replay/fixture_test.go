package replay

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danielpatrickdp/eloss/internal/crosssection"
)

// #region fixture-tests

// TestFixture_RoundTrip exports a fixture from direct integration, writes it
// and reads it back unchanged.
func TestFixture_RoundTrip(t *testing.T) {
	f := exportFixture(t, []float64{1e5, 1e6})
	if len(f.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(f.Cases))
	}
	if f.Cases[0].Family != "ionization" || f.Cases[0].Parametrization != "ionizationbetheblochrossi" {
		t.Errorf("unexpected case names %s/%s", f.Cases[0].Family, f.Cases[0].Parametrization)
	}
	if f.Cases[0].DEdx <= 0 || f.Cases[0].DNdx <= 0 {
		t.Errorf("expected positive reference values, got dEdx=%g dNdx=%g", f.Cases[0].DEdx, f.Cases[0].DNdx)
	}

	path := filepath.Join(t.TempDir(), "ionization.json")
	if err := SaveFixture(path, f); err != nil {
		t.Fatalf("SaveFixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if !reflect.DeepEqual(f, loaded) {
		t.Errorf("fixture changed on round trip:\nwant %+v\ngot  %+v", f, loaded)
	}
}

// TestToCrossSectionConfig resolves names and rejects unknown ones.
func TestToCrossSectionConfig(t *testing.T) {
	fc := testFixtureConfig()
	cfg, err := fc.ToCrossSectionConfig()
	if err != nil {
		t.Fatalf("ToCrossSectionConfig: %v", err)
	}
	if cfg.Medium.Name != "water" || cfg.Particle.Name != "MuMinus" {
		t.Errorf("unexpected config %s in %s", cfg.Particle.Name, cfg.Medium.Name)
	}

	for _, mutate := range []func(*FixtureConfig){
		func(c *FixtureConfig) { c.Particle = "pion" },
		func(c *FixtureConfig) { c.Medium = "lava" },
		func(c *FixtureConfig) { c.Ecut, c.Vcut = -1, -1 },
	} {
		bad := testFixtureConfig()
		mutate(&bad)
		if _, err := bad.ToCrossSectionConfig(); err == nil {
			t.Errorf("expected error for %+v", bad)
		}
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

// #endregion fixture-tests

// #region helpers

func testFixtureConfig() FixtureConfig {
	return FixtureConfig{
		Particle:   "MuMinus",
		Medium:     "water",
		Ecut:       -1,
		Vcut:       0.05,
		Multiplier: 1,
		Tolerance:  1e-3,
	}
}

// exportFixture records direct-integration ionization values at energies.
func exportFixture(t *testing.T, energies []float64) *Fixture {
	t.Helper()
	fc := testFixtureConfig()
	cfg, err := fc.ToCrossSectionConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cs, err := crosssection.NewFactory(nil).CreateCrossSection(crosssection.Ionization, "ionizationbetheblochrossi", cfg, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return Export("muon ionization in water", fc, []crosssection.CrossSection{cs}, energies)
}

// #endregion helpers
