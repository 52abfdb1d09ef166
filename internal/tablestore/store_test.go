package tablestore

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/eloss/internal/logging"
	"github.com/danielpatrickdp/eloss/internal/numeric"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "tables.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testTable(t *testing.T) *numeric.Interpolant {
	t.Helper()
	def := numeric.Definition1D{
		X:        numeric.Axis{Nodes: 30, Min: 1, Max: 1e6, Log: true, Order: 5},
		LogSubst: true,
		OrderY:   5,
	}
	ip, err := numeric.Build1D(def, func(x float64) float64 { return math.Sqrt(x) * math.Log(1+x) })
	if err != nil {
		t.Fatalf("Build1D: %v", err)
	}
	return ip
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := tempDB(t)
	ip := testTable(t)
	key := Key{Fingerprint: 0xdeadbeef, Name: "dEdx"}

	rec, err := s.Save(key, ip.Snapshot())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.BuildID == "" {
		t.Fatal("expected non-empty build ID")
	}

	snap, ok, err := s.Load(key)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	back, err := numeric.FromSnapshot(snap)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	for _, x := range []float64{1.5, 77, 12345, 999999} {
		if got, want := back.Interpolate(x), ip.Interpolate(x); got != want {
			t.Fatalf("x=%g: loaded %v, built %v", x, got, want)
		}
	}
	if snap.Def.Hash() != ip.Definition().Hash() {
		t.Fatal("definition changed in round trip")
	}
}

func TestSave2DLoad2D(t *testing.T) {
	s := tempDB(t)
	def := numeric.Definition2D{
		X: numeric.Axis{Nodes: 8, Min: 1, Max: 100, Log: true, Order: 3},
		Y: numeric.Axis{Nodes: 6, Min: 0, Max: 1, Order: 3},
	}
	ip, err := numeric.Build2D(def, func(x, y float64) float64 { return x * y })
	if err != nil {
		t.Fatalf("Build2D: %v", err)
	}
	key := Key{Fingerprint: 42, Name: "dNdx_cdf_0"}
	if _, err := s.Save2D(key, ip.Snapshot()); err != nil {
		t.Fatalf("Save2D: %v", err)
	}

	snap, ok, err := s.Load2D(key)
	if err != nil || !ok {
		t.Fatalf("Load2D: ok=%v err=%v", ok, err)
	}
	back, err := numeric.FromSnapshot2D(snap)
	if err != nil {
		t.Fatalf("FromSnapshot2D: %v", err)
	}
	if back.Interpolate(3.3, 0.25) != ip.Interpolate(3.3, 0.25) {
		t.Fatal("2D round trip differs")
	}

	// dimension mismatch is an error, not a miss
	if _, _, err := s.Load(key); err == nil {
		t.Fatal("expected error loading a 2D table as 1D")
	}
}

func TestLoadMissing(t *testing.T) {
	s := tempDB(t)
	_, ok, err := s.Load(Key{Fingerprint: 1, Name: "nothing"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}

func TestSaveReplaces(t *testing.T) {
	s := tempDB(t)
	ip := testTable(t)
	key := Key{Fingerprint: 7, Name: "dEdx"}

	first, err := s.Save(key, ip.Snapshot())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := s.Save(key, ip.Snapshot())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.BuildID == second.BuildID {
		t.Fatal("expected a new build ID")
	}

	records, err := s.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 table, got %d", len(records))
	}
	if records[0].Key != key || records[0].Nodes != 30 || records[0].BuildID != second.BuildID {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestDelete(t *testing.T) {
	s := tempDB(t)
	key := Key{Fingerprint: 9, Name: "dEdx"}
	if _, err := s.Save(key, testTable(t).Snapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(key); err == nil {
		t.Fatal("expected error deleting a missing table")
	}
}

func TestBuildLogSharesDatabase(t *testing.T) {
	s := tempDB(t)
	if err := logging.LogBuild(s.DB(), logging.BuildEntry{
		BuildID: "b", Fingerprint: Key{Fingerprint: 5}.Hex(), Name: "dEdx", Source: logging.SourceBuilt, Nodes: 30,
	}); err != nil {
		t.Fatalf("LogBuild: %v", err)
	}
	entries, err := logging.ListBuilds(s.DB(), 5)
	if err != nil {
		t.Fatalf("ListBuilds: %v", err)
	}
	if len(entries) != 1 || entries[0].Fingerprint != "0000000000000005" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	original := []float64{0, -1.5, math.Pi, 1e-300, math.MaxFloat64}
	decoded := decodeFloats(encodeFloats(original))
	for i := range original {
		if original[i] != decoded[i] {
			t.Fatalf("mismatch at %d: %v != %v", i, original[i], decoded[i])
		}
	}
}

func TestNewStoreInvalidPath(t *testing.T) {
	_, err := NewStore(filepath.Join(string(os.PathSeparator), "nonexistent", "deep", "path", "test.db"))
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}
