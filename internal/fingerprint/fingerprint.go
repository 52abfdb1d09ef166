// Package fingerprint derives deterministic identities for evaluator
// configurations. Equal fingerprints are used as cache keys for tables in
// memory and on disk, so every field that changes behavior must be written.
package fingerprint

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// #region hasher

// Hasher accumulates typed fields into a 64-bit xxhash digest.
// Each writer prefixes a type tag so that ("ab", "c") and ("a", "bc") differ.
type Hasher struct {
	d   *xxhash.Digest
	buf [9]byte
}

// New returns an empty Hasher.
func New() *Hasher {
	return &Hasher{d: xxhash.New()}
}

func (h *Hasher) word(tag byte, v uint64) *Hasher {
	h.buf[0] = tag
	binary.LittleEndian.PutUint64(h.buf[1:], v)
	h.d.Write(h.buf[:])
	return h
}

// String writes a length-prefixed string.
func (h *Hasher) String(s string) *Hasher {
	h.word('s', uint64(len(s)))
	h.d.WriteString(s)
	return h
}

// Float64 writes the IEEE bits of f. -0 and +0 are folded together.
func (h *Hasher) Float64(f float64) *Hasher {
	if f == 0 {
		f = 0
	}
	return h.word('f', math.Float64bits(f))
}

// Int writes a signed integer.
func (h *Hasher) Int(i int) *Hasher {
	return h.word('i', uint64(int64(i)))
}

// Uint64 writes an unsigned integer, typically a nested fingerprint.
func (h *Hasher) Uint64(u uint64) *Hasher {
	return h.word('u', u)
}

// Bool writes a boolean.
func (h *Hasher) Bool(b bool) *Hasher {
	var v uint64
	if b {
		v = 1
	}
	return h.word('b', v)
}

// Sum64 returns the fingerprint.
func (h *Hasher) Sum64() uint64 {
	return h.d.Sum64()
}

// #endregion hasher

// #region combine

// Combine folds several fingerprints into one, order-sensitive.
func Combine(parts ...uint64) uint64 {
	h := New()
	h.Int(len(parts))
	for _, p := range parts {
		h.Uint64(p)
	}
	return h.Sum64()
}

// #endregion combine
