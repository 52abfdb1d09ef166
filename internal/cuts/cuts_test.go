package cuts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/eloss/internal/errs"
)

func TestNormalisation(t *testing.T) {
	s, err := New(-1, 0.05, false)
	require.NoError(t, err)
	assert.True(t, math.IsInf(s.Ecut, 1))
	assert.Equal(t, 0.05, s.Vcut)

	s, err = New(500, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Vcut)
	assert.True(t, s.ContRand)
}

func TestBothTrivialRejected(t *testing.T) {
	_, err := New(0, 1, false)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	_, err = New(-5, -1, false)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	_, err = New(math.NaN(), 0.1, false)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestCut(t *testing.T) {
	s, err := New(500, 0.05, false)
	require.NoError(t, err)
	assert.Equal(t, 0.05, s.Cut(1e3))
	assert.InEpsilon(t, 5e-3, s.Cut(1e5), 1e-12)
}

func TestHash(t *testing.T) {
	a, _ := New(500, 0.05, false)
	b, _ := New(500, 0.05, false)
	c, _ := New(500, 0.05, true)
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}
