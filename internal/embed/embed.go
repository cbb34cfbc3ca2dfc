// Package embed turns chunk and profile text into fixed-dimension vectors.
// Two generators are provided: a deterministic hash-based one for offline
// and test use, and an Ollama-backed one for real semantic embeddings.
package embed

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/vestor-labs/ingest-cli/internal/config"
)

// Generator produces embedding vectors for text. Implementations must be
// deterministic for a given model: the same text yields the same vector.
type Generator interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimensions() int
}

// New builds the generator named by config.
func New(cfg config.EmbedConfig) (Generator, error) {
	switch cfg.Provider {
	case "", "hash":
		return NewHashGenerator(cfg.Model, cfg.Dimensions), nil
	case "ollama":
		return NewOllamaGenerator(cfg)
	default:
		return nil, eris.New(fmt.Sprintf("embed: unknown provider %q", cfg.Provider))
	}
}
