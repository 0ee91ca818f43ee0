package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"alfredoptarigan/skill-scout/internal/logger"
	"alfredoptarigan/skill-scout/internal/models"
	"alfredoptarigan/skill-scout/internal/repositories"
)

// MatchCache memoizes candidate/position scores keyed by the exact texts they
// were computed from. Entries are never evicted.
type MatchCache interface {
	GetOrCompute(ctx context.Context, candidate models.Candidate, position models.Position) (float64, error)
}

type matchCache struct {
	repo   repositories.SimilarityRepository
	engine SimilarityEngine
	group  singleflight.Group
	log    *zap.Logger
}

func NewMatchCache(repo repositories.SimilarityRepository, engine SimilarityEngine, log *zap.Logger) MatchCache {
	return &matchCache{repo: repo, engine: engine, log: log}
}

// GetOrCompute implements MatchCache. Concurrent misses on the same key share
// one computation. The shared computation ignores any single caller's
// cancellation; each caller stops waiting when its own ctx ends.
func (m *matchCache) GetOrCompute(ctx context.Context, candidate models.Candidate, position models.Position) (float64, error) {
	key := models.NewSimilarityKey(candidate, position)
	shared := context.WithoutCancel(ctx)

	ch := m.group.DoChan(key.String(), func() (interface{}, error) {
		return m.compute(shared, key)
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(float64), nil
	}
}

func (m *matchCache) compute(ctx context.Context, key models.SimilarityKey) (float64, error) {
	entry, err := m.repo.Find(ctx, key)
	if err == nil {
		return entry.Score, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	score, err := m.engine.Similarity(ctx, key.CandidateInfo, key.PositionInfo)
	if err != nil {
		return 0, err
	}

	entry = &models.SimilarityScore{
		CandidateName: key.CandidateName,
		CandidateInfo: key.CandidateInfo,
		PositionInfo:  key.PositionInfo,
		Score:         score,
	}
	if err := m.repo.Create(ctx, entry); err != nil {
		m.log.Warn("failed to store similarity score",
			zap.String("candidate", key.CandidateName),
			zap.String("position", logger.TruncateForLog(key.PositionInfo, 80)),
			zap.Error(err))
	}
	return score, nil
}
