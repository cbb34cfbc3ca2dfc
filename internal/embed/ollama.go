package embed

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/vestor-labs/ingest-cli/internal/config"
)

const defaultOllamaModel = "nomic-embed-text:latest"

// OllamaGenerator embeds text via a local Ollama server.
type OllamaGenerator struct {
	llm   *ollama.LLM
	model string
	dims  int
}

func NewOllamaGenerator(cfg config.EmbedConfig) (*OllamaGenerator, error) {
	model := cfg.Model
	if model == "" || model == DefaultModel {
		model = defaultOllamaModel
	}

	opts := []ollama.Option{ollama.WithModel(model)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, eris.Wrap(err, "embed: init ollama client")
	}

	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &OllamaGenerator{llm: llm, model: model, dims: dims}, nil
}

func (g *OllamaGenerator) Model() string   { return g.model }
func (g *OllamaGenerator) Dimensions() int { return g.dims }

func (g *OllamaGenerator) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (g *OllamaGenerator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := g.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, eris.Wrap(err, "embed: ollama embedding")
	}
	if len(vecs) != len(texts) {
		return nil, eris.New("embed: ollama returned wrong number of vectors")
	}
	return vecs, nil
}
