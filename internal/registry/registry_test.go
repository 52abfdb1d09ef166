package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/eloss/internal/errs"
)

type color int

const (
	red color = iota + 1
	green
	blue
)

func newTestRegistry(t *testing.T) *Registry[color, func() string] {
	t.Helper()
	r := New[color, func() string]("color")
	require.NoError(t, r.Register("Red", red, func() string { return "r" }))
	require.NoError(t, r.Register("green", green, func() string { return "g" }))
	return r
}

func TestLookupIgnoresCase(t *testing.T) {
	r := newTestRegistry(t)

	ctor, err := r.Lookup("RED")
	require.NoError(t, err)
	assert.Equal(t, "r", ctor())

	ctor, err = r.LookupEnum(green)
	require.NoError(t, err)
	assert.Equal(t, "g", ctor())
}

func TestBidirectionalNames(t *testing.T) {
	r := newTestRegistry(t)

	e, err := r.EnumFromString("Green")
	require.NoError(t, err)
	assert.Equal(t, green, e)

	name, err := r.StringFromEnum(red)
	require.NoError(t, err)
	assert.Equal(t, "red", name)

	assert.Equal(t, []string{"green", "red"}, r.Names())
}

func TestMissIsConfigurationError(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Lookup("purple")
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	_, err = r.LookupEnum(blue)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	_, err = r.EnumFromString("purple")
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	_, err = r.StringFromEnum(blue)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestDuplicateRegistration(t *testing.T) {
	r := newTestRegistry(t)

	assert.ErrorIs(t, r.Register("RED", blue, nil), errs.ErrConfiguration)
	assert.ErrorIs(t, r.Register("blue", red, nil), errs.ErrConfiguration)
	assert.ErrorIs(t, r.Register("  ", blue, nil), errs.ErrConfiguration)
	assert.Panics(t, func() { r.MustRegister("red", blue, nil) })
}

func TestConcurrentReads(t *testing.T) {
	r := newTestRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Lookup("red")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
