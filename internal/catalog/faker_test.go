package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvidersSortedAndKnown(t *testing.T) {
	names := Providers()

	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "email")
	assert.Contains(t, names, "ipv4")
	assert.Contains(t, names, "user_name")
}

func TestExamplesCount(t *testing.T) {
	f := NewFaker(1)

	values, err := f.Examples("email", 5)
	require.NoError(t, err)
	assert.Len(t, values, 5)
	for _, v := range values {
		assert.NotEmpty(t, v)
	}
}

func TestExamplesUnknownProvider(t *testing.T) {
	f := NewFaker(1)

	_, err := f.Examples("nope", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestExamplesSeededReproducible(t *testing.T) {
	a, err := NewFaker(42).Examples("name", 3)
	require.NoError(t, err)
	b, err := NewFaker(42).Examples("name", 3)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestExamplesMinimumCount(t *testing.T) {
	f := NewFaker(1)

	values, err := f.Examples("word", 0)
	require.NoError(t, err)
	assert.Len(t, values, 1)
}
