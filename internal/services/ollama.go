package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "nomic-embed-text"
)

type ollamaEmbedder struct {
	client *resty.Client
	model  string
}

// NewOllamaEmbedder embeds text through a self-hosted Ollama server.
func NewOllamaEmbedder(baseURL, model string, timeout time.Duration) Embedder {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &ollamaEmbedder{client: client, model: model}
}

func (o *ollamaEmbedder) Model() string {
	return "ollama/" + o.model
}

// Embed implements Embedder.
func (o *ollamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"model":  o.model,
			"prompt": text,
		}).
		Post("/api/embeddings")
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode(), resp.String())
	}

	values := gjson.GetBytes(resp.Body(), "embedding").Array()
	if len(values) == 0 {
		return nil, fmt.Errorf("empty embedding from ollama")
	}

	embedding := make([]float32, len(values))
	for i, v := range values {
		embedding[i] = float32(v.Float())
	}

	return embedding, nil
}
