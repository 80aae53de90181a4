package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prodtrack/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	return &comment, nil
}

// ListForTask returns the comments of a task, newest first, joined with their
// author and with the status each comment was posted under. Preview is left
// nil.
func (r *CommentRepository) ListForTask(ctx context.Context, taskID uuid.UUID) ([]model.CommentView, error) {
	var rows []struct {
		model.Comment
		StatusName         string
		StatusShortName    string
		StatusColor        string
		StatusIsReviewable bool
		PersonFirstName    string
		PersonLastName     string
		PersonHasAvatar    bool
	}
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Select(`comments.*,
			task_statuses.name AS status_name,
			task_statuses.short_name AS status_short_name,
			task_statuses.color AS status_color,
			task_statuses.is_reviewable AS status_is_reviewable,
			persons.first_name AS person_first_name,
			persons.last_name AS person_last_name,
			persons.has_avatar AS person_has_avatar`).
		Joins("JOIN persons ON persons.id = comments.person_id").
		Joins("JOIN task_statuses ON task_statuses.id = comments.task_status_id").
		Where("comments.object_id = ?", taskID).
		Order("comments.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]model.CommentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, model.CommentView{
			Comment: row.Comment,
			Person: model.PersonSummary{
				ID:        row.PersonID,
				FirstName: row.PersonFirstName,
				LastName:  row.PersonLastName,
				HasAvatar: row.PersonHasAvatar,
			},
			TaskStatus: model.StatusSummary{
				ID:           row.TaskStatusID,
				Name:         row.StatusName,
				ShortName:    row.StatusShortName,
				Color:        row.StatusColor,
				IsReviewable: row.StatusIsReviewable,
			},
		})
	}
	return views, nil
}

// ListForObjects returns the comments of all given objects ordered by object
// id, then oldest first, ties broken by comment id.
func (r *CommentRepository) ListForObjects(ctx context.Context, objectIDs []uuid.UUID) ([]model.Comment, error) {
	if len(objectIDs) == 0 {
		return nil, nil
	}
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("object_id IN ?", objectIDs).
		Order("object_id, created_at, id").
		Find(&comments).Error
	return comments, err
}
