package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/skill-scout/internal/models"
)

type PositionRepository interface {
	Upsert(ctx context.Context, position *models.Position) (UpsertOutcome, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Position, error)
	FindByKeys(ctx context.Context, keys []models.PositionKey) ([]models.Position, error)
	FindAll(ctx context.Context) ([]models.Position, error)
}

type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

// Upsert implements PositionRepository. Positions are identified by
// (position_id, position_number).
func (r *positionRepository) Upsert(ctx context.Context, position *models.Position) (UpsertOutcome, error) {
	var outcome UpsertOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.Position
		err := tx.Where("position_id = ? AND position_number = ?", position.PositionID, position.PositionNumber).
			First(&stored).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if position.ID == uuid.Nil {
				position.ID = uuid.New()
			}
			if err := tx.Create(position).Error; err != nil {
				return fmt.Errorf("failed to create position: %w", err)
			}
			outcome = OutcomeCreated
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find position: %w", err)
		}

		position.ID = stored.ID
		position.CreatedAt = stored.CreatedAt
		if stored.SameContent(*position) {
			position.UpdatedAt = stored.UpdatedAt
			outcome = OutcomeUnchanged
			return nil
		}

		position.UpdatedAt = time.Now()
		if err := tx.Save(position).Error; err != nil {
			return fmt.Errorf("failed to update position: %w", err)
		}
		outcome = OutcomeUpdated
		return nil
	})
	if err != nil {
		return 0, err
	}

	return outcome, nil
}

// FindByID implements PositionRepository.
func (r *positionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Position, error) {
	var position models.Position
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&position).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("position %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find position: %w", err)
	}

	return &position, nil
}

// FindByKeys implements PositionRepository.
func (r *positionRepository) FindByKeys(ctx context.Context, keys []models.PositionKey) ([]models.Position, error) {
	if len(keys) == 0 {
		return []models.Position{}, nil
	}

	pairs := make([][]interface{}, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, []interface{}{key.TaskOrderID, key.PositionNumber})
	}

	var positions []models.Position
	err := r.db.WithContext(ctx).
		Where("(task_order_id, position_number) IN ?", pairs).
		Order("created_at ASC, id ASC").
		Find(&positions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find positions by key: %w", err)
	}

	return positions, nil
}

// FindAll implements PositionRepository.
func (r *positionRepository) FindAll(ctx context.Context) ([]models.Position, error) {
	var positions []models.Position
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	return positions, nil
}
