package particle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/eloss/internal/errs"
)

func TestByNameIgnoresCase(t *testing.T) {
	d, err := ByName("mUmInUs")
	require.NoError(t, err)
	assert.Equal(t, MuMinus, d)

	_, err = ByName("graviton")
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestStableAndMomentum(t *testing.T) {
	assert.False(t, MuMinus.Stable())
	assert.True(t, EMinus.Stable())
	assert.Equal(t, 0.0, MuMinus.Momentum(MuonMass))
	assert.InEpsilon(t, 1e5, MuMinus.Momentum(1e5), 1e-6)
	assert.Greater(t, MuMinus.Momentum(MuMinus.Low), 0.0)
}

func TestHashDistinguishesCharge(t *testing.T) {
	assert.NotEqual(t, MuMinus.Hash(), MuPlus.Hash())
	assert.Equal(t, MuMinus.Hash(), MuMinus.Hash())
	assert.Len(t, Names(), 7)
}
