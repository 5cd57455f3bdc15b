package anonymizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashKnownVectors(t *testing.T) {
	h := NewHasher("acme")

	assert.Equal(t, "c66d303ac065d2625b44490d8a5bc1060f98384af9defe03206c2a924b396b6a", h.Hash("alice@example.com"))
	assert.Equal(t, "5f79aa4314f69fa5526e24f99bdbfe847cb65d298e5d0b8b3e3d85750b830e0d", h.Hash(42))
}

func TestHashDeterministic(t *testing.T) {
	h := NewHasher("k")

	first := h.Hash("value")
	assert.Equal(t, first, h.Hash("value"))
	assert.Len(t, first, 64)
}

func TestHashVariesByKeyAndValue(t *testing.T) {
	a := NewHasher("key-a")
	b := NewHasher("key-b")

	assert.NotEqual(t, a.Hash("v"), b.Hash("v"))
	assert.NotEqual(t, a.Hash("v1"), a.Hash("v2"))
}

func TestHashNeverContainsKey(t *testing.T) {
	h := NewHasher("supersecret")

	assert.NotContains(t, h.Hash("value"), "supersecret")
}
