package tablecache

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/eloss/internal/logging"
	"github.com/danielpatrickdp/eloss/internal/numeric"
	"github.com/danielpatrickdp/eloss/internal/tablestore"
)

var testDef = numeric.Definition1D{
	X:        numeric.Axis{Nodes: 20, Min: 1, Max: 1e4, Log: true, Order: 5},
	LogSubst: true,
	OrderY:   5,
}

func counted(n *atomic.Int64, def numeric.Definition1D) func() (*numeric.Interpolant, error) {
	return func() (*numeric.Interpolant, error) {
		n.Add(1)
		return numeric.Build1D(def, func(x float64) float64 { return x * x })
	}
}

func TestMemoryHit(t *testing.T) {
	c := New(nil)
	key := tablestore.Key{Fingerprint: 1, Name: "dEdx"}
	var n atomic.Int64

	a, err := c.Get1D(key, testDef, counted(&n, testDef))
	require.NoError(t, err)
	b, err := c.Get1D(key, testDef, counted(&n, testDef))
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, int64(1), n.Load())
	assert.Equal(t, Stats{Hits: 1, Builds: 1}, c.Stats())
	assert.Equal(t, 1, c.Len())
}

func TestSingleBuilderUnderConcurrency(t *testing.T) {
	c := New(nil)
	key := tablestore.Key{Fingerprint: 2, Name: "dEdx"}
	var n atomic.Int64

	var wg sync.WaitGroup
	results := make([]*numeric.Interpolant, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ip, err := c.Get1D(key, testDef, counted(&n, testDef))
			assert.NoError(t, err)
			results[i] = ip
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), n.Load())
	for _, ip := range results {
		assert.Same(t, results[0], ip)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := tablestore.NewStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	key := tablestore.Key{Fingerprint: 3, Name: "dEdx"}
	var n atomic.Int64

	built, err := New(store).Get1D(key, testDef, counted(&n, testDef))
	require.NoError(t, err)

	fresh := New(store)
	loaded, err := fresh.Get1D(key, testDef, counted(&n, testDef))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.Load())
	assert.Equal(t, Stats{Loads: 1}, fresh.Stats())
	assert.Equal(t, built.Interpolate(123.4), loaded.Interpolate(123.4))

	entries, err := logging.ListBuilds(store.DB(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, logging.SourceLoaded, entries[0].Source)
	assert.Equal(t, logging.SourceBuilt, entries[1].Source)
}

func TestStoredDefinitionMismatchRebuilds(t *testing.T) {
	store, err := tablestore.NewStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	key := tablestore.Key{Fingerprint: 4, Name: "dEdx"}
	var n atomic.Int64
	_, err = New(store).Get1D(key, testDef, counted(&n, testDef))
	require.NoError(t, err)

	other := testDef
	other.X.Nodes = 25
	_, err = New(store).Get1D(key, other, counted(&n, other))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n.Load())
}

func TestBuildErrorNotCached(t *testing.T) {
	c := New(nil)
	key := tablestore.Key{Fingerprint: 5, Name: "dEdx"}
	boom := errors.New("boom")

	_, err := c.Get1D(key, testDef, func() (*numeric.Interpolant, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	var n atomic.Int64
	_, err = c.Get1D(key, testDef, counted(&n, testDef))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.Load())
}

func TestGet2D(t *testing.T) {
	c := New(nil)
	def := numeric.Definition2D{
		X: numeric.Axis{Nodes: 6, Min: 1, Max: 10, Log: true, Order: 3},
		Y: numeric.Axis{Nodes: 5, Min: 0, Max: 1, Order: 3},
	}
	key := tablestore.Key{Fingerprint: 6, Name: "dNdx_cdf_0"}
	build := func() (*numeric.Interpolant2D, error) {
		return numeric.Build2D(def, func(x, y float64) float64 { return x + y })
	}
	a, err := c.Get2D(key, def, build)
	require.NoError(t, err)
	b, err := c.Get2D(key, def, build)
	require.NoError(t, err)
	assert.Same(t, a, b)

	// the same key in 1D is a separate entry
	_, err = c.Get1D(key, testDef, counted(new(atomic.Int64), testDef))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}
