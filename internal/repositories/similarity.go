package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/skill-scout/internal/models"
)

type SimilarityRepository interface {
	Find(ctx context.Context, key models.SimilarityKey) (*models.SimilarityScore, error)
	Create(ctx context.Context, entry *models.SimilarityScore) error
}

type similarityRepository struct {
	db *gorm.DB
}

func NewSimilarityRepository(db *gorm.DB) SimilarityRepository {
	return &similarityRepository{db: db}
}

// Find implements SimilarityRepository. The lookup goes through the hashed
// index and then confirms the full texts, so the match stays exact.
func (r *similarityRepository) Find(ctx context.Context, key models.SimilarityKey) (*models.SimilarityScore, error) {
	var entry models.SimilarityScore
	err := r.db.WithContext(ctx).
		Where("candidate_name = ? AND candidate_info_hash = ? AND position_info_hash = ?",
			key.CandidateName, key.CandidateInfoHash(), key.PositionInfoHash()).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("similarity score: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find similarity score: %w", err)
	}

	if entry.CandidateInfo != key.CandidateInfo || entry.PositionInfo != key.PositionInfo {
		return nil, fmt.Errorf("similarity score hash collision: %w", ErrNotFound)
	}

	return &entry, nil
}

// Create implements SimilarityRepository. Concurrent writers of the same key
// collapse onto one row.
func (r *similarityRepository) Create(ctx context.Context, entry *models.SimilarityScore) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	key := models.SimilarityKey{
		CandidateName: entry.CandidateName,
		CandidateInfo: entry.CandidateInfo,
		PositionInfo:  entry.PositionInfo,
	}
	entry.CandidateInfoHash = key.CandidateInfoHash()
	entry.PositionInfoHash = key.PositionInfoHash()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to store similarity score: %w", err)
	}
	return nil
}
