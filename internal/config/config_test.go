package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/danielpatrickdp/eloss/internal/crosssection"
	"github.com/danielpatrickdp/eloss/internal/errs"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TableDB != "" {
		t.Fatalf("expected memory-only tables, got %q", cfg.TableDB)
	}
	def := cfg.InterpolationDef()
	if def == nil {
		t.Fatal("expected interpolation by default")
	}
	if *def != *crosssection.DefaultInterpolationDef() {
		t.Fatalf("expected default table sizes, got %+v", *def)
	}
	if cfg.Integral().Precision != 1e-6 {
		t.Fatalf("expected precision 1e-6, got %g", cfg.Integral().Precision)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ELOSS_INTERPOLATE", "false")
	t.Setenv("ELOSS_TABLE_DB", "/tmp/tables.db")
	t.Setenv("ELOSS_INTEGRATION_PRECISION", "1e-8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.InterpolationDef() != nil {
		t.Fatal("expected direct integration")
	}
	if cfg.TableDB != "/tmp/tables.db" {
		t.Fatalf("unexpected table db %q", cfg.TableDB)
	}
	if cfg.Integral().Precision != 1e-8 {
		t.Fatalf("expected precision 1e-8, got %g", cfg.Integral().Precision)
	}
}

func TestLoadRejectsSmallTables(t *testing.T) {
	t.Setenv("ELOSS_NODES_PROPAGATE", "3")

	_, err := Load()
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("ELOSS_NODES_CROSS_SECTION", "many")

	var cfg Config
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
