package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"prodtrack/internal/model"
)

// upsertAttempts bounds how often an upsert is replayed after losing an
// insert race on the (task, person, date) key.
const upsertAttempts = 2

type TimeSpentRepository struct {
	db *gorm.DB
}

func NewTimeSpentRepository(db *gorm.DB) *TimeSpentRepository {
	return &TimeSpentRepository{db: db}
}

// Upsert writes the duration of the (task, person, date) entry. With
// accumulate the duration is added to an existing entry, otherwise it
// replaces it. A missing entry is created with the given duration.
func (r *TimeSpentRepository) Upsert(ctx context.Context, taskID, personID uuid.UUID, date datatypes.Date, duration float64, accumulate bool) (*model.TimeSpent, error) {
	var (
		entry *model.TimeSpent
		err   error
	)
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		entry, err = r.upsert(ctx, taskID, personID, date, duration, accumulate)
		if !IsUniqueViolation(err) {
			break
		}
	}
	return entry, err
}

func (r *TimeSpentRepository) upsert(ctx context.Context, taskID, personID uuid.UUID, date datatypes.Date, duration float64, accumulate bool) (*model.TimeSpent, error) {
	var entry model.TimeSpent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := forUpdate(tx).
			Where("task_id = ? AND person_id = ? AND date = ?", taskID, personID, date).
			First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = model.TimeSpent{
				TaskID:   taskID,
				PersonID: personID,
				Date:     date,
				Duration: duration,
			}
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		if accumulate {
			entry.Duration += duration
		} else {
			entry.Duration = duration
		}
		return tx.Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListForTask returns every time entry of the task
func (r *TimeSpentRepository) ListForTask(ctx context.Context, taskID uuid.UUID) ([]model.TimeSpent, error) {
	var entries []model.TimeSpent
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("date, person_id").
		Find(&entries).Error
	return entries, err
}
