package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"go.uber.org/zap"
)

// Embedder maps preprocessed text to a dense vector. Implementations must be
// deterministic for a fixed Model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

type localEmbedder struct {
	dimensions int
}

// NewLocalEmbedder returns an in-process embedder based on signed feature
// hashing of word unigrams, bigrams and character trigrams. It needs no model
// download, which makes it the default for development and tests.
func NewLocalEmbedder(dimensions int) Embedder {
	if dimensions <= 0 {
		dimensions = 768
	}
	return &localEmbedder{dimensions: dimensions}
}

func (l *localEmbedder) Model() string {
	return fmt.Sprintf("local-hash-%d", l.dimensions)
}

// Embed implements Embedder.
func (l *localEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, l.dimensions)
	words := strings.Fields(text)
	for i, w := range words {
		l.add(vec, "w:"+w, 1.0)
		if i > 0 {
			l.add(vec, "b:"+words[i-1]+" "+w, 0.5)
		}
		runes := []rune("^" + w + "$")
		for j := 0; j+3 <= len(runes); j++ {
			l.add(vec, "c:"+string(runes[j:j+3]), 0.25)
		}
	}

	normalize(vec)
	return vec, nil
}

func (l *localEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(l.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

func normalize(vec []float32) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

// cosine returns the cosine similarity of two vectors, 0 when either is zero.
func cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimensions differ: %d != %d", len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

type cachedEmbedder struct {
	inner Embedder
	cache VectorCache
	log   *zap.Logger
}

// NewCachedEmbedder puts a vector cache in front of an embedder. Cache failures
// are logged and fall through to the wrapped embedder.
func NewCachedEmbedder(inner Embedder, cache VectorCache, log *zap.Logger) Embedder {
	return &cachedEmbedder{inner: inner, cache: cache, log: log}
}

func (c *cachedEmbedder) Model() string {
	return c.inner.Model()
}

// Embed implements Embedder.
func (c *cachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	model := c.inner.Model()

	vec, ok, err := c.cache.Get(ctx, model, text)
	if err != nil {
		c.log.Warn("vector cache lookup failed", zap.String("model", model), zap.Error(err))
	} else if ok {
		return vec, nil
	}

	vec, err = c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, model, text, vec); err != nil {
		c.log.Warn("vector cache store failed", zap.String("model", model), zap.Error(err))
	}
	return vec, nil
}
