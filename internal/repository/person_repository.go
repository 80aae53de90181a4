package repository

import (
	"context"
	"errors"

	"prodtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PersonRepository struct {
	db *gorm.DB
}

type PersonRepositoryInterface interface {
	Create(ctx context.Context, person *model.Person) error
	FindByEmail(ctx context.Context, email string) (*model.Person, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Person, error)
}

var _ PersonRepositoryInterface = (*PersonRepository)(nil)

func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) Create(ctx context.Context, person *model.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

// FindByEmail returns nil, nil when nobody uses that email.
func (r *PersonRepository) FindByEmail(ctx context.Context, email string) (*model.Person, error) {
	var person model.Person
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&person).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *PersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	var person model.Person
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&person).Error; err != nil {
		return nil, notFound(err, ErrPersonNotFound)
	}
	return &person, nil
}

// HasTaskRelated reports whether the person is assigned to at least one task
// of the project.
func (r *PersonRepository) HasTaskRelated(ctx context.Context, personID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
		Where("task_assignees.person_id = ? AND tasks.project_id = ?", personID, projectID).
		Count(&count).Error
	return count > 0, err
}
