package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prodtrack/internal/model"
)

type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// GetByID retrieves a task status by its ID
func (r *StatusRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TaskStatus, error) {
	var status model.TaskStatus
	if err := r.db.WithContext(ctx).First(&status, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrTaskStatusNotFound)
	}
	return &status, nil
}

// FindByName returns nil, nil when no status has that name.
func (r *StatusRepository) FindByName(ctx context.Context, name string) (*model.TaskStatus, error) {
	return r.findBy(ctx, "name = ?", name)
}

// FindByShortName returns nil, nil when no status has that short name.
func (r *StatusRepository) FindByShortName(ctx context.Context, shortName string) (*model.TaskStatus, error) {
	return r.findBy(ctx, "short_name = ?", shortName)
}

func (r *StatusRepository) findBy(ctx context.Context, query string, arg string) (*model.TaskStatus, error) {
	var status model.TaskStatus
	err := r.db.WithContext(ctx).Where(query, arg).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// Create inserts the status. A clash on name or short name surfaces as a
// unique violation, see IsUniqueViolation.
func (r *StatusRepository) Create(ctx context.Context, status *model.TaskStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *StatusRepository) List(ctx context.Context) ([]model.TaskStatus, error) {
	var statuses []model.TaskStatus
	err := r.db.WithContext(ctx).Order("name").Find(&statuses).Error
	return statuses, err
}
