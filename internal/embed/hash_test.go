package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestor-labs/ingest-cli/internal/config"
)

func TestHashGenerator_Deterministic(t *testing.T) {
	g := NewHashGenerator("", 0)

	a, err := g.Embed(context.Background(), "We invest in seed-stage SaaS.")
	require.NoError(t, err)
	b, err := g.Embed(context.Background(), "We invest in seed-stage SaaS.")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashGenerator_DimensionsAndModel(t *testing.T) {
	g := NewHashGenerator("", 0)
	assert.Equal(t, DefaultModel, g.Model())
	assert.Equal(t, DefaultDimensions, g.Dimensions())

	vec, err := g.Embed(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, vec, DefaultDimensions)
}

func TestHashGenerator_UnitNorm(t *testing.T) {
	g := NewHashGenerator("", 64)

	for _, text := range []string{"", "short", "a much longer piece of investor thesis text"} {
		vec, err := g.Embed(context.Background(), text)
		require.NoError(t, err)

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5, "text %q", text)
	}
}

func TestHashGenerator_DifferentTextsDiffer(t *testing.T) {
	g := NewHashGenerator("", 32)

	a, err := g.Embed(context.Background(), "first")
	require.NoError(t, err)
	b, err := g.Embed(context.Background(), "second")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashGenerator_DifferentModelsDiffer(t *testing.T) {
	a, err := NewHashGenerator("model-a", 32).Embed(context.Background(), "same text")
	require.NoError(t, err)
	b, err := NewHashGenerator("model-b", 32).Embed(context.Background(), "same text")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashGenerator_EmbedBatch(t *testing.T) {
	g := NewHashGenerator("", 16)

	vecs, err := g.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	single, err := g.Embed(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, single, vecs[1])
}

func TestNew_ProviderSelection(t *testing.T) {
	g, err := New(config.EmbedConfig{Provider: "hash", Dimensions: 8})
	require.NoError(t, err)
	assert.IsType(t, &HashGenerator{}, g)

	_, err = New(config.EmbedConfig{Provider: "watsonx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
