package services

import (
	"context"
	"math"

	"go.uber.org/zap"
)

// SimilarityEngine scores how close two free texts are, from 0 to 100.
type SimilarityEngine interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
	Preprocess(text string) string
	Model() string
}

type similarityEngine struct {
	pre      *Preprocessor
	embedder Embedder
	log      *zap.Logger
}

// NewSimilarityEngine builds an engine over an already constructed embedder.
// The engine holds no global state; construct it once and share it.
func NewSimilarityEngine(pre *Preprocessor, embedder Embedder, log *zap.Logger) SimilarityEngine {
	return &similarityEngine{pre: pre, embedder: embedder, log: log}
}

func (e *similarityEngine) Model() string {
	return e.embedder.Model()
}

func (e *similarityEngine) Preprocess(text string) string {
	return e.pre.Normalize(text)
}

// Similarity implements SimilarityEngine. A text that preprocesses to nothing
// scores 0 against anything. Identical normalized texts score 100 without
// calling the embedder.
func (e *similarityEngine) Similarity(ctx context.Context, a, b string) (float64, error) {
	na, nb := e.pre.Normalize(a), e.pre.Normalize(b)
	if na == "" || nb == "" {
		return 0, nil
	}
	if na == nb {
		return 100, nil
	}

	va, err := e.embedder.Embed(ctx, na)
	if err != nil {
		return 0, e.fail(ctx, err)
	}
	vb, err := e.embedder.Embed(ctx, nb)
	if err != nil {
		return 0, e.fail(ctx, err)
	}

	cos, err := cosine(va, vb)
	if err != nil {
		return 0, e.fail(ctx, err)
	}

	return clampScore(cos * 100), nil
}

// fail reports an embedder failure. A cancelled or expired ctx is returned
// as is so callers can tell a timeout from a broken model.
func (e *similarityEngine) fail(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		e.log.Debug("similarity computation interrupted", zap.Error(err))
		return ctxErr
	}
	e.log.Error("similarity computation failed", zap.String("model", e.embedder.Model()), zap.Error(err))
	return &SimilarityComputeError{Model: e.embedder.Model(), Err: err}
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(100, score))
}
