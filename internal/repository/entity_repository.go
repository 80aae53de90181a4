package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prodtrack/internal/model"
)

type EntityRepository struct {
	db *gorm.DB
}

func NewEntityRepository(db *gorm.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

func (r *EntityRepository) Create(ctx context.Context, entity *model.Entity) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// GetByID retrieves an entity by its ID
func (r *EntityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	var entity model.Entity
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrEntityNotFound)
	}
	return &entity, nil
}

func (r *EntityRepository) GetTypeByID(ctx context.Context, id uuid.UUID) (*model.EntityType, error) {
	var entityType model.EntityType
	if err := r.db.WithContext(ctx).First(&entityType, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrEntityTypeNotFound)
	}
	return &entityType, nil
}

// FindTypeByName returns nil, nil when the type does not exist yet.
func (r *EntityRepository) FindTypeByName(ctx context.Context, name string) (*model.EntityType, error) {
	var entityType model.EntityType
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&entityType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entityType, nil
}

func (r *EntityRepository) CreateType(ctx context.Context, entityType *model.EntityType) error {
	return r.db.WithContext(ctx).Create(entityType).Error
}
