package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	err := Configuration("registry.Lookup", "bremsstrahlung %q not registered", "foo")
	wrapped := fmt.Errorf("create: %w", err)

	assert.ErrorIs(t, wrapped, ErrConfiguration)
	assert.NotErrorIs(t, wrapped, ErrNumeric)
	assert.Contains(t, err.Error(), "registry.Lookup")
	assert.Contains(t, err.Error(), "foo")
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindNumeric, "integral", cause)

	assert.ErrorIs(t, err, ErrNumeric)
	assert.ErrorIs(t, err, cause)
}

func TestFatalPanicsWithTypedError(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrInvariant)
	}()
	Fatal(Invariant("utility.Calculate", "ef > ei"))
}

func TestCheckNil(t *testing.T) {
	assert.NotPanics(t, func() { Check(nil) })
}
