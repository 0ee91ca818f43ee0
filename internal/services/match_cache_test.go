package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/models"
)

func TestMatchCache_SecondCallIsHit(t *testing.T) {
	repo := newFakeSimilarityRepo()
	engine := &countingEngine{score: 73.5}
	cache := NewMatchCache(repo, engine, zap.NewNop())

	candidate := models.Candidate{Name: "Ada", Skills: "Python, SQL", Education: "BSc"}
	position := models.Position{DescriptionText: "We need Python and SQL"}

	first, err := cache.GetOrCompute(context.Background(), candidate, position)
	require.NoError(t, err)
	second, err := cache.GetOrCompute(context.Background(), candidate, position)
	require.NoError(t, err)

	assert.Equal(t, 73.5, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, 1, repo.creates)
}

func TestMatchCache_KeyIsExactText(t *testing.T) {
	repo := newFakeSimilarityRepo()
	engine := &countingEngine{score: 10}
	cache := NewMatchCache(repo, engine, zap.NewNop())

	candidate := models.Candidate{Name: "Ada", Skills: "Python"}
	_, err := cache.GetOrCompute(context.Background(), candidate, models.Position{DescriptionText: "Python"})
	require.NoError(t, err)

	candidate.Skills = "Python "
	_, err = cache.GetOrCompute(context.Background(), candidate, models.Position{DescriptionText: "Python"})
	require.NoError(t, err)

	assert.Equal(t, 2, engine.calls)
	assert.Len(t, repo.entries, 2)
}

func TestMatchCache_ConcurrentMissesStoreOnce(t *testing.T) {
	repo := newFakeSimilarityRepo()
	engine := &countingEngine{score: 50}
	cache := NewMatchCache(repo, engine, zap.NewNop())

	candidate := models.Candidate{Name: "Ada", Skills: "Go"}
	position := models.Position{DescriptionText: "Go developer"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			score, err := cache.GetOrCompute(context.Background(), candidate, position)
			assert.NoError(t, err)
			assert.Equal(t, 50.0, score)
		}()
	}
	wg.Wait()

	assert.Len(t, repo.entries, 1)
}

func TestMatchCache_ComputeErrorIsNotStored(t *testing.T) {
	repo := newFakeSimilarityRepo()
	boom := &SimilarityComputeError{Model: "counting", Err: errors.New("boom")}
	cache := NewMatchCache(repo, &countingEngine{err: boom}, zap.NewNop())

	_, err := cache.GetOrCompute(context.Background(), models.Candidate{Name: "Ada"}, models.Position{})

	var computeErr *SimilarityComputeError
	assert.ErrorAs(t, err, &computeErr)
	assert.Zero(t, repo.creates)
}

func TestMatchCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	repo := newFakeSimilarityRepo()
	engine := newGatedEngine(42)
	cache := NewMatchCache(repo, engine, zap.NewNop())

	candidate := models.Candidate{Name: "Ada", Skills: "Go"}
	position := models.Position{DescriptionText: "Go developer"}

	impatient, cancel := context.WithCancel(context.Background())
	impatientErr := make(chan error, 1)
	go func() {
		_, err := cache.GetOrCompute(impatient, candidate, position)
		impatientErr <- err
	}()
	<-engine.started

	type result struct {
		score float64
		err   error
	}
	patient := make(chan result, 1)
	go func() {
		score, err := cache.GetOrCompute(context.Background(), candidate, position)
		patient <- result{score, err}
	}()

	cancel()
	assert.ErrorIs(t, <-impatientErr, context.Canceled)

	close(engine.release)
	got := <-patient
	require.NoError(t, got.err)
	assert.Equal(t, 42.0, got.score)
	assert.Equal(t, int32(1), engine.calls.Load())
	assert.Len(t, repo.entries, 1)
}
