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

// StatusFilter selects status rows by field equality. Empty fields match anything.
type StatusFilter struct {
	TaskOrderID    string
	PositionNumber string
	State          models.PositionState
}

type StatusRepository interface {
	Upsert(ctx context.Context, status *models.PositionStatus) (UpsertOutcome, error)
	Find(ctx context.Context, filter StatusFilter) ([]models.PositionStatus, error)
}

type statusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

// Upsert implements StatusRepository. Rows are identified by
// (task_order_id, position_number); a newer report overwrites the stored row.
func (r *statusRepository) Upsert(ctx context.Context, status *models.PositionStatus) (UpsertOutcome, error) {
	var outcome UpsertOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.PositionStatus
		err := tx.Where("task_order_id = ? AND position_number = ?", status.TaskOrderID, status.PositionNumber).
			First(&stored).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if status.ID == uuid.Nil {
				status.ID = uuid.New()
			}
			if err := tx.Create(status).Error; err != nil {
				return fmt.Errorf("failed to create position status: %w", err)
			}
			outcome = OutcomeCreated
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find position status: %w", err)
		}

		status.ID = stored.ID
		status.CreatedAt = stored.CreatedAt
		if stored.SameContent(*status) {
			status.UpdatedAt = stored.UpdatedAt
			outcome = OutcomeUnchanged
			return nil
		}

		status.UpdatedAt = time.Now()
		if err := tx.Save(status).Error; err != nil {
			return fmt.Errorf("failed to update position status: %w", err)
		}
		outcome = OutcomeUpdated
		return nil
	})
	if err != nil {
		return 0, err
	}

	return outcome, nil
}

// Find implements StatusRepository.
func (r *statusRepository) Find(ctx context.Context, filter StatusFilter) ([]models.PositionStatus, error) {
	query := r.db.WithContext(ctx).Model(&models.PositionStatus{})
	if filter.TaskOrderID != "" {
		query = query.Where("task_order_id = ?", filter.TaskOrderID)
	}
	if filter.PositionNumber != "" {
		query = query.Where("position_number = ?", filter.PositionNumber)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}

	var statuses []models.PositionStatus
	if err := query.Order("created_at ASC, id ASC").Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to find position statuses: %w", err)
	}

	return statuses, nil
}
