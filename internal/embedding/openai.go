package embedding

import (
	"context"
	"fmt"

	eopenai "github.com/cloudwego/eino-ext/components/embedding/openai"

	"github.com/hikarile/ToyoAgent/config"
)

// openAIDimensions is the output dimension requested from the embedding
// endpoint. Index files are only compatible across runs when this stays fixed.
const openAIDimensions = 1536

// OpenAIEmbedder wraps the eino openai embedding component behind the
// Embedder interface, converting to float32 vectors.
type OpenAIEmbedder struct {
	client     *eopenai.Embedder
	dimensions int
}

// NewOpenAIEmbedder creates an embedder talking to the configured
// openai-compatible embedding endpoint.
func NewOpenAIEmbedder(ctx context.Context, cfg *config.Config) (*OpenAIEmbedder, error) {
	dims := openAIDimensions
	client, err := eopenai.NewEmbedder(ctx, &eopenai.EmbeddingConfig{
		BaseURL:    cfg.OpenAIBaseURL,
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.EmbeddingModel,
		Dimensions: &dims,
		Timeout:    cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai embedder: %w", err)
	}
	return &OpenAIEmbedder{client: client, dimensions: dims}, nil
}

// Embed returns the embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one request.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	raw, err := e.client.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(raw), len(texts))
	}
	out := make([][]float32, len(raw))
	for i, v := range raw {
		vec := make([]float32, len(v))
		for j, x := range v {
			vec[j] = float32(x)
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}
