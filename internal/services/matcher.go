package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/skill-scout/internal/models"
	"alfredoptarigan/skill-scout/internal/repositories"
)

type MatcherOptions struct {
	Timeout     time.Duration
	Concurrency int
}

type Matcher interface {
	RankPositionsForCandidate(ctx context.Context, candidateID uuid.UUID) ([]models.PositionMatch, error)
	RankCandidatesForPosition(ctx context.Context, positionID uuid.UUID) ([]models.CandidateMatch, error)
	SearchOpenPositions(ctx context.Context, taskOrderID, positionNumber string) ([]models.Position, error)
}

type matcher struct {
	positions  repositories.PositionRepository
	statuses   repositories.StatusRepository
	candidates repositories.CandidateRepository
	cache      MatchCache
	opts       MatcherOptions
	log        *zap.Logger
}

func NewMatcher(
	positions repositories.PositionRepository,
	statuses repositories.StatusRepository,
	candidates repositories.CandidateRepository,
	cache MatchCache,
	opts MatcherOptions,
	log *zap.Logger,
) Matcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &matcher{
		positions:  positions,
		statuses:   statuses,
		candidates: candidates,
		cache:      cache,
		opts:       opts,
		log:        log,
	}
}

// RankPositionsForCandidate implements Matcher. Only positions with an open
// status record are ranked.
func (m *matcher) RankPositionsForCandidate(ctx context.Context, candidateID uuid.UUID) ([]models.PositionMatch, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	candidate, err := m.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	positions, err := m.openPositions(ctx, repositories.StatusFilter{})
	if err != nil {
		return nil, err
	}

	scores, err := m.score(ctx, len(positions), func(ctx context.Context, i int) (float64, error) {
		return m.cache.GetOrCompute(ctx, *candidate, positions[i])
	})
	if err != nil {
		return nil, err
	}

	matches := make([]models.PositionMatch, len(positions))
	for i, p := range positions {
		matches[i] = models.PositionMatch{Position: p, Score: scores[i]}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	m.log.Info("ranked positions for candidate",
		zap.String("candidate_id", candidateID.String()),
		zap.Int("positions", len(matches)))
	return matches, nil
}

// RankCandidatesForPosition implements Matcher. Every stored candidate is
// ranked, in storage order before sorting.
func (m *matcher) RankCandidatesForPosition(ctx context.Context, positionID uuid.UUID) ([]models.CandidateMatch, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	position, err := m.positions.FindByID(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if err := m.attachStatus(ctx, position); err != nil {
		return nil, err
	}

	candidates, err := m.candidates.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	scores, err := m.score(ctx, len(candidates), func(ctx context.Context, i int) (float64, error) {
		return m.cache.GetOrCompute(ctx, candidates[i], *position)
	})
	if err != nil {
		return nil, err
	}

	matches := make([]models.CandidateMatch, len(candidates))
	for i, c := range candidates {
		matches[i] = models.CandidateMatch{Candidate: c, Score: scores[i]}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	m.log.Info("ranked candidates for position",
		zap.String("position_id", positionID.String()),
		zap.Int("candidates", len(matches)))
	return matches, nil
}

// SearchOpenPositions implements Matcher. Empty filters match anything.
func (m *matcher) SearchOpenPositions(ctx context.Context, taskOrderID, positionNumber string) ([]models.Position, error) {
	return m.openPositions(ctx, repositories.StatusFilter{
		TaskOrderID:    taskOrderID,
		PositionNumber: positionNumber,
	})
}

func (m *matcher) openPositions(ctx context.Context, filter repositories.StatusFilter) ([]models.Position, error) {
	filter.State = models.StateOpen
	statuses, err := m.statuses.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	keys := make([]models.PositionKey, 0, len(statuses))
	for _, s := range statuses {
		keys = append(keys, s.Key())
	}

	positions, err := m.positions.FindByKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	for i := range positions {
		positions[i].Status = models.StateOpen
	}

	return positions, nil
}

func (m *matcher) attachStatus(ctx context.Context, position *models.Position) error {
	statuses, err := m.statuses.Find(ctx, repositories.StatusFilter{
		TaskOrderID:    position.TaskOrderID,
		PositionNumber: position.PositionNumber,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	position.Status = models.StateUnknown
	if len(statuses) > 0 {
		position.Status = statuses[0].State
	}
	return nil
}

// score runs fn for indexes [0, n) with bounded parallelism. Results keep the
// input order.
func (m *matcher) score(ctx context.Context, n int, fn func(ctx context.Context, i int) (float64, error)) ([]float64, error) {
	scores := make([]float64, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			score, err := fn(gctx, i)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (m *matcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.opts.Timeout)
}
