package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/models"
	"alfredoptarigan/skill-scout/internal/repositories"
)

// scriptedCache returns a fixed score per position description or candidate
// name and counts lookups.
type scriptedCache struct {
	mu          sync.Mutex
	byPosition  map[string]float64
	byCandidate map[string]float64
	lookups     int
}

func (s *scriptedCache) GetOrCompute(_ context.Context, c models.Candidate, p models.Position) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if score, ok := s.byPosition[p.DescriptionText]; ok {
		return score, nil
	}
	return s.byCandidate[c.Name], nil
}

type matcherFixture struct {
	positions  *fakePositionRepo
	statuses   *fakeStatusRepo
	candidates *fakeCandidateRepo
	cache      *scriptedCache
	matcher    Matcher
}

func newMatcherFixture(t *testing.T) *matcherFixture {
	t.Helper()

	f := &matcherFixture{
		positions:  &fakePositionRepo{},
		statuses:   &fakeStatusRepo{},
		candidates: &fakeCandidateRepo{},
		cache:      &scriptedCache{byPosition: map[string]float64{}, byCandidate: map[string]float64{}},
	}

	for _, p := range []models.Position{
		{PositionID: "PID-1-1", TaskOrderID: "1", PositionNumber: "1", DescriptionText: "low"},
		{PositionID: "PID-1-2", TaskOrderID: "1", PositionNumber: "2", DescriptionText: "tie-a"},
		{PositionID: "PID-1-3", TaskOrderID: "1", PositionNumber: "3", DescriptionText: "closed"},
		{PositionID: "PID-2-4", TaskOrderID: "2", PositionNumber: "4", DescriptionText: "tie-b"},
		{PositionID: "PID-2-5", TaskOrderID: "2", PositionNumber: "5", DescriptionText: "high"},
	} {
		_, err := f.positions.Upsert(context.Background(), &p)
		require.NoError(t, err)
	}

	for _, s := range []models.PositionStatus{
		{TaskOrderID: "1", PositionNumber: "1", State: models.StateOpen},
		{TaskOrderID: "1", PositionNumber: "2", State: models.StateOpen},
		{TaskOrderID: "1", PositionNumber: "3", State: models.StateClosed},
		{TaskOrderID: "2", PositionNumber: "4", State: models.StateOpen},
		{TaskOrderID: "2", PositionNumber: "5", State: models.StateOpen},
	} {
		_, err := f.statuses.Upsert(context.Background(), &s)
		require.NoError(t, err)
	}

	f.cache.byPosition = map[string]float64{"low": 10, "tie-a": 50, "closed": 99, "tie-b": 50, "high": 90}
	f.matcher = NewMatcher(f.positions, f.statuses, f.candidates, f.cache, MatcherOptions{Concurrency: 3}, zap.NewNop())
	return f
}

func TestMatcher_RankPositionsForCandidate(t *testing.T) {
	f := newMatcherFixture(t)
	candidate := models.Candidate{Name: "Ada", Skills: "Go"}
	require.NoError(t, f.candidates.Create(context.Background(), &candidate))

	matches, err := f.matcher.RankPositionsForCandidate(context.Background(), candidate.ID)
	require.NoError(t, err)

	var order []string
	for _, m := range matches {
		order = append(order, m.Position.DescriptionText)
		assert.Equal(t, models.StateOpen, m.Position.Status)
	}
	assert.Equal(t, []string{"high", "tie-a", "tie-b", "low"}, order)

	again, err := f.matcher.RankPositionsForCandidate(context.Background(), candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, matches, again)
}

func TestMatcher_RankingIsStableAcrossCalls(t *testing.T) {
	positions := &fakePositionRepo{}
	statuses := &fakeStatusRepo{}
	candidates := &fakeCandidateRepo{}
	similarity := newFakeSimilarityRepo()

	descriptions := []string{
		"Backend engineer building Go services on PostgreSQL",
		"Data analyst reporting with SQL and Python",
		"Backend engineer building Go services on PostgreSQL",
		"Welder for structural steel",
		"Site reliability engineer running Kubernetes",
		"Data analyst reporting with SQL and Python",
	}
	for i, text := range descriptions {
		p := models.Position{
			PositionID:      fmt.Sprintf("PID-7-%d", i+1),
			TaskOrderID:     "7",
			PositionNumber:  fmt.Sprint(i + 1),
			DescriptionText: text,
		}
		_, err := positions.Upsert(context.Background(), &p)
		require.NoError(t, err)
		_, err = statuses.Upsert(context.Background(), &models.PositionStatus{
			TaskOrderID:    "7",
			PositionNumber: p.PositionNumber,
			State:          models.StateOpen,
		})
		require.NoError(t, err)
	}

	candidate := models.Candidate{Name: "Ada", Skills: "Go, PostgreSQL, Kubernetes", Education: "BSc Computer Science"}
	require.NoError(t, candidates.Create(context.Background(), &candidate))

	cache := NewMatchCache(similarity, newTestEngine(), zap.NewNop())
	matcher := NewMatcher(positions, statuses, candidates, cache, MatcherOptions{Concurrency: 4}, zap.NewNop())

	first, err := matcher.RankPositionsForCandidate(context.Background(), candidate.ID)
	require.NoError(t, err)
	require.Len(t, first, len(descriptions))
	stored := similarity.creates

	for i := 0; i < 3; i++ {
		again, err := matcher.RankPositionsForCandidate(context.Background(), candidate.ID)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, stored, similarity.creates)

	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}
}

func TestMatcher_RankPositionsUnknownCandidate(t *testing.T) {
	f := newMatcherFixture(t)

	_, err := f.matcher.RankPositionsForCandidate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMatcher_RankCandidatesForPosition(t *testing.T) {
	f := newMatcherFixture(t)
	f.cache.byPosition = map[string]float64{}
	f.cache.byCandidate = map[string]float64{"first": 20, "second": 80, "third": 20}
	for _, name := range []string{"first", "second", "third"} {
		c := models.Candidate{Name: name}
		require.NoError(t, f.candidates.Create(context.Background(), &c))
	}

	closed := f.positions.positions[2]
	matches, err := f.matcher.RankCandidatesForPosition(context.Background(), closed.ID)
	require.NoError(t, err)

	var names []string
	for _, m := range matches {
		names = append(names, m.Candidate.Name)
	}
	assert.Equal(t, []string{"second", "first", "third"}, names)
	assert.Equal(t, 3, f.cache.lookups)
}

func TestMatcher_SearchOpenPositions(t *testing.T) {
	f := newMatcherFixture(t)

	tests := []struct {
		name           string
		taskOrder      string
		positionNumber string
		want           []string
	}{
		{name: "no filter", want: []string{"PID-1-1", "PID-1-2", "PID-2-4", "PID-2-5"}},
		{name: "task order", taskOrder: "1", want: []string{"PID-1-1", "PID-1-2"}},
		{name: "both", taskOrder: "2", positionNumber: "5", want: []string{"PID-2-5"}},
		{name: "closed only", taskOrder: "1", positionNumber: "3", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions, err := f.matcher.SearchOpenPositions(context.Background(), tt.taskOrder, tt.positionNumber)
			require.NoError(t, err)

			var ids []string
			for _, p := range positions {
				ids = append(ids, p.PositionID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
