package fingerprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministic(t *testing.T) {
	a := New().String("water").Float64(1.0).Int(3).Bool(true).Sum64()
	b := New().String("water").Float64(1.0).Int(3).Bool(true).Sum64()
	assert.Equal(t, a, b)
}

func TestFieldBoundaries(t *testing.T) {
	a := New().String("ab").String("c").Sum64()
	b := New().String("a").String("bc").Sum64()
	assert.NotEqual(t, a, b)
}

func TestTypeTags(t *testing.T) {
	a := New().Int(1).Sum64()
	b := New().Uint64(1).Sum64()
	c := New().Bool(true).Sum64()
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSignedZero(t *testing.T) {
	a := New().Float64(0).Sum64()
	b := New().Float64(math.Copysign(0, -1)).Sum64()
	assert.Equal(t, a, b)
}

func TestCombineOrder(t *testing.T) {
	assert.NotEqual(t, Combine(1, 2), Combine(2, 1))
	assert.Equal(t, Combine(1, 2), Combine(1, 2))
	assert.NotEqual(t, Combine(1), Combine(1, 0))
}
