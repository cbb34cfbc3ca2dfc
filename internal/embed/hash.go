package embed

import (
	"context"
	"hash/fnv"
	"math"
)

const (
	DefaultModel      = "text-embedding-stub"
	DefaultDimensions = 1536
)

// HashGenerator derives vectors from a hash of the input text. The vectors
// carry no semantic meaning, but they are stable across runs and platforms
// and unit-length, which is all local development and tests need.
type HashGenerator struct {
	model string
	dims  int
}

func NewHashGenerator(model string, dims int) *HashGenerator {
	if model == "" {
		model = DefaultModel
	}
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashGenerator{model: model, dims: dims}
}

func (g *HashGenerator) Model() string   { return g.model }
func (g *HashGenerator) Dimensions() int { return g.dims }

func (g *HashGenerator) Embed(_ context.Context, text string) ([]float32, error) {
	// Seed from model and text so distinct models give distinct vectors.
	h := fnv.New64a()
	h.Write([]byte(g.model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	state := h.Sum64()
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}

	vec := make([]float32, g.dims)
	var norm float64
	for i := range vec {
		state = xorshift64(state)
		// Map to [-0.5, 0.5).
		v := float64(state>>11)/float64(1<<53) - 0.5
		vec[i] = float32(v)
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

func (g *HashGenerator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := g.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func xorshift64(x uint64) uint64 {
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	return x
}
