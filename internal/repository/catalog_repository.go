package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prodtrack/internal/model"
)

// CatalogRepository stores departments and task types.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetTaskType(ctx context.Context, id uuid.UUID) (*model.TaskType, error) {
	var taskType model.TaskType
	if err := r.db.WithContext(ctx).First(&taskType, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrTaskTypeNotFound)
	}
	return &taskType, nil
}

// FindTaskTypeByName returns nil, nil when no task type has that name.
func (r *CatalogRepository) FindTaskTypeByName(ctx context.Context, name string) (*model.TaskType, error) {
	var taskType model.TaskType
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&taskType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &taskType, nil
}

func (r *CatalogRepository) CreateTaskType(ctx context.Context, taskType *model.TaskType) error {
	return r.db.WithContext(ctx).Create(taskType).Error
}

func (r *CatalogRepository) ListTaskTypes(ctx context.Context) ([]model.TaskType, error) {
	var taskTypes []model.TaskType
	err := r.db.WithContext(ctx).Order("priority, name").Find(&taskTypes).Error
	return taskTypes, err
}

// TaskTypesForEntity returns the task types that have a task on the entity.
func (r *CatalogRepository) TaskTypesForEntity(ctx context.Context, entityID uuid.UUID) ([]model.TaskType, error) {
	var taskTypes []model.TaskType
	err := r.db.WithContext(ctx).
		Joins("JOIN tasks ON tasks.task_type_id = task_types.id").
		Where("tasks.entity_id = ?", entityID).
		Order("task_types.priority, task_types.name").
		Find(&taskTypes).Error
	return taskTypes, err
}

func (r *CatalogRepository) GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	var department model.Department
	if err := r.db.WithContext(ctx).First(&department, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrDepartmentNotFound)
	}
	return &department, nil
}

// FindDepartmentByName returns nil, nil when no department has that name.
func (r *CatalogRepository) FindDepartmentByName(ctx context.Context, name string) (*model.Department, error) {
	var department model.Department
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&department).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *CatalogRepository) CreateDepartment(ctx context.Context, department *model.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}
