package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultGeminiEmbedModel = "text-embedding-004"
	geminiChunkSize         = 8000
	geminiChunkOverlap      = 200
)

type geminiEmbedder struct {
	client     *genai.Client
	embedModel string
	chunker    TextChunker
	log        *zap.Logger
}

// NewGeminiEmbedder embeds text with the Gemini API. Texts longer than one
// request allows are chunked and the chunk vectors averaged.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, log *zap.Logger) (Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedder requires GEMINI_API_KEY")
	}
	if model == "" {
		model = defaultGeminiEmbedModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiEmbedder{
		client:     client,
		embedModel: model,
		chunker:    NewTextChunker(),
		log:        log,
	}, nil
}

func (g *geminiEmbedder) Model() string {
	return "gemini/" + g.embedModel
}

// Embed implements Embedder.
func (g *geminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	chunks := g.chunker.ChunkText(text, geminiChunkSize, geminiChunkOverlap)
	if len(chunks) == 0 {
		chunks = []string{text}
	}

	var contents []*genai.Content
	for _, chunk := range chunks {
		contents = append(contents, genai.Text(chunk)...)
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		if e != nil && len(e.Values) > 0 {
			vectors = append(vectors, e.Values)
		}
	}
	if len(chunks) > 1 {
		g.log.Debug("gemini embedding pooled", zap.Int("chunks", len(chunks)), zap.Int("vectors", len(vectors)))
	}

	return meanPool(vectors)
}

// meanPool averages equally sized vectors and re-normalizes the result.
func meanPool(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	if len(vectors) == 1 {
		return vectors[0], nil
	}

	dims := len(vectors[0])
	pooled := make([]float32, dims)
	for _, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("embedding dimensions differ: %d != %d", len(v), dims)
		}
		for i, x := range v {
			pooled[i] += x
		}
	}
	for i := range pooled {
		pooled[i] /= float32(len(vectors))
	}
	normalize(pooled)
	return pooled, nil
}
