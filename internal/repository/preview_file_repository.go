package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prodtrack/internal/model"
)

type PreviewFileRepository struct {
	db *gorm.DB
}

func NewPreviewFileRepository(db *gorm.DB) *PreviewFileRepository {
	return &PreviewFileRepository{db: db}
}

func (r *PreviewFileRepository) Create(ctx context.Context, preview *model.PreviewFile) error {
	return r.db.WithContext(ctx).Create(preview).Error
}

func (r *PreviewFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PreviewFile, error) {
	var preview model.PreviewFile
	if err := r.db.WithContext(ctx).First(&preview, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrPreviewFileNotFound)
	}
	return &preview, nil
}

// GetByIDs loads the given preview files keyed by id. Unknown ids are skipped.
func (r *PreviewFileRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.PreviewFile, error) {
	previews := make(map[uuid.UUID]model.PreviewFile, len(ids))
	if len(ids) == 0 {
		return previews, nil
	}
	var rows []model.PreviewFile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		previews[p.ID] = p
	}
	return previews, nil
}

// MaxRevision returns the highest preview revision of the task, 0 if none.
func (r *PreviewFileRepository) MaxRevision(ctx context.Context, taskID uuid.UUID) (int, error) {
	var maxRevision struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.PreviewFile{}).
		Select("COALESCE(MAX(revision), 0) as max").
		Where("task_id = ?", taskID).
		Scan(&maxRevision).Error

	return maxRevision.Max, err
}
