package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"alfredoptarigan/skill-scout/internal/extractors"
	"alfredoptarigan/skill-scout/internal/models"
	"alfredoptarigan/skill-scout/internal/repositories"
)

type fakePositionRepo struct {
	mu        sync.Mutex
	positions []models.Position
	failWith  error
}

func (f *fakePositionRepo) Upsert(_ context.Context, p *models.Position) (repositories.UpsertOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	for i, stored := range f.positions {
		if stored.PositionID == p.PositionID && stored.PositionNumber == p.PositionNumber {
			p.ID = stored.ID
			if stored.SameContent(*p) {
				return repositories.OutcomeUnchanged, nil
			}
			f.positions[i] = *p
			return repositories.OutcomeUpdated, nil
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.positions = append(f.positions, *p)
	return repositories.OutcomeCreated, nil
}

func (f *fakePositionRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.positions {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, fmt.Errorf("position %s: %w", id, repositories.ErrNotFound)
}

func (f *fakePositionRepo) FindByKeys(_ context.Context, keys []models.PositionKey) ([]models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[models.PositionKey]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	var out []models.Position
	for _, p := range f.positions {
		if wanted[p.Key()] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePositionRepo) FindAll(context.Context) ([]models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Position(nil), f.positions...), nil
}

type fakeStatusRepo struct {
	mu       sync.Mutex
	statuses []models.PositionStatus
}

func (f *fakeStatusRepo) Upsert(_ context.Context, s *models.PositionStatus) (repositories.UpsertOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, stored := range f.statuses {
		if stored.Key() == s.Key() {
			if stored.SameContent(*s) {
				return repositories.OutcomeUnchanged, nil
			}
			f.statuses[i] = *s
			return repositories.OutcomeUpdated, nil
		}
	}
	f.statuses = append(f.statuses, *s)
	return repositories.OutcomeCreated, nil
}

func (f *fakeStatusRepo) Find(_ context.Context, filter repositories.StatusFilter) ([]models.PositionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PositionStatus
	for _, s := range f.statuses {
		if filter.TaskOrderID != "" && s.TaskOrderID != filter.TaskOrderID {
			continue
		}
		if filter.PositionNumber != "" && s.PositionNumber != filter.PositionNumber {
			continue
		}
		if filter.State != "" && s.State != filter.State {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type fakeCandidateRepo struct {
	mu         sync.Mutex
	candidates []models.Candidate
}

func (f *fakeCandidateRepo) Create(_ context.Context, c *models.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.AccountID != nil {
		for _, stored := range f.candidates {
			if stored.AccountID != nil && *stored.AccountID == *c.AccountID {
				return errors.New("duplicate account")
			}
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.candidates = append(f.candidates, *c)
	return nil
}

func (f *fakeCandidateRepo) Update(_ context.Context, c *models.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, stored := range f.candidates {
		if stored.ID == c.ID {
			f.candidates[i] = *c
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeCandidateRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, fmt.Errorf("candidate %s: %w", id, repositories.ErrNotFound)
}

func (f *fakeCandidateRepo) FindByAccount(_ context.Context, accountID string) (*models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.AccountID != nil && *c.AccountID == accountID {
			found := c
			return &found, nil
		}
	}
	return nil, fmt.Errorf("candidate for account %s: %w", accountID, repositories.ErrNotFound)
}

func (f *fakeCandidateRepo) FindAll(context.Context) ([]models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Candidate(nil), f.candidates...), nil
}

type fakeSimilarityRepo struct {
	mu      sync.Mutex
	entries map[string]models.SimilarityScore
	creates int
}

func newFakeSimilarityRepo() *fakeSimilarityRepo {
	return &fakeSimilarityRepo{entries: map[string]models.SimilarityScore{}}
}

func (f *fakeSimilarityRepo) Find(_ context.Context, key models.SimilarityKey) (*models.SimilarityScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[key.String()]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &entry, nil
}

func (f *fakeSimilarityRepo) Create(_ context.Context, entry *models.SimilarityScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	key := models.SimilarityKey{
		CandidateName: entry.CandidateName,
		CandidateInfo: entry.CandidateInfo,
		PositionInfo:  entry.PositionInfo,
	}
	if _, ok := f.entries[key.String()]; !ok {
		f.entries[key.String()] = *entry
	}
	return nil
}

type fakeDocumentRepo struct {
	documents []models.UploadedDocument
}

func (f *fakeDocumentRepo) Create(_ context.Context, d *models.UploadedDocument) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	f.documents = append(f.documents, *d)
	return nil
}

func (f *fakeDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.UploadedDocument, error) {
	for _, d := range f.documents {
		if d.ID == id {
			found := d
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// countingEngine records how often a score was actually computed.
type countingEngine struct {
	mu    sync.Mutex
	calls int
	score float64
	err   error
}

func (e *countingEngine) Similarity(context.Context, string, string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return e.score, e.err
}

func (e *countingEngine) Preprocess(text string) string { return text }

func (e *countingEngine) Model() string { return "counting" }

// gatedEngine blocks every computation until release is closed.
type gatedEngine struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
	score   float64
}

func newGatedEngine(score float64) *gatedEngine {
	return &gatedEngine{started: make(chan struct{}), release: make(chan struct{}), score: score}
}

func (e *gatedEngine) Similarity(ctx context.Context, _, _ string) (float64, error) {
	e.calls.Add(1)
	e.once.Do(func() { close(e.started) })
	<-e.release
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.score, nil
}

func (e *gatedEngine) Preprocess(text string) string { return text }

func (e *gatedEngine) Model() string { return "gated" }

type fakeStatusExtractor struct {
	rows []extractors.RawStatus
	err  error
}

func (f *fakeStatusExtractor) ExtractBytes(context.Context, []byte) ([]extractors.RawStatus, error) {
	return f.rows, f.err
}

type fakePositionExtractor struct {
	rows []extractors.RawPosition
	err  error
}

func (f *fakePositionExtractor) ExtractBytes(context.Context, []byte) ([]extractors.RawPosition, error) {
	return f.rows, f.err
}

type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.vector, f.err
}

func (f *fakeEmbedder) Model() string { return "fake" }

type memoryVectorCache struct {
	vectors map[string][]float32
	getErr  error
}

func (m *memoryVectorCache) Get(_ context.Context, model, text string) ([]float32, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.vectors[model+"\x00"+text]
	return v, ok, nil
}

func (m *memoryVectorCache) Put(_ context.Context, model, text string, vector []float32) error {
	m.vectors[model+"\x00"+text] = vector
	return nil
}
