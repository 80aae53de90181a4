package service

import (
	"context"

	"github.com/google/uuid"

	"prodtrack/internal/model"
	"prodtrack/internal/repository"
)

// CommentThread stores review comments, each bound to the task status that
// was current when it was posted.
type CommentThread struct {
	comments *repository.CommentRepository
	previews *repository.PreviewFileRepository
	tasks    *repository.TaskRepository
	persons  *repository.PersonRepository
	statuses *StatusRegistry
	settings settings
}

func NewCommentThread(
	comments *repository.CommentRepository,
	previews *repository.PreviewFileRepository,
	tasks *repository.TaskRepository,
	persons *repository.PersonRepository,
	statuses *StatusRegistry,
	opts ...Option,
) *CommentThread {
	return &CommentThread{
		comments: comments,
		previews: previews,
		tasks:    tasks,
		persons:  persons,
		statuses: statuses,
		settings: newSettings(opts),
	}
}

// CommentOption sets optional fields of a new comment.
type CommentOption func(*commentFields)

type commentFields struct {
	target    model.CommentTarget
	previewID string
}

// WithTarget sets the kind of object commented on. Task is the default.
func WithTarget(target model.CommentTarget) CommentOption {
	return func(s *commentFields) {
		s.target = target
	}
}

// WithPreview attaches a preview file to the comment.
func WithPreview(previewFileID string) CommentOption {
	return func(s *commentFields) {
		s.previewID = previewFileID
	}
}

// Add posts a comment by personID on objectID, recording statusID as the
// status it was written under.
func (t *CommentThread) Add(ctx context.Context, objectID, statusID, personID, text string, opts ...CommentOption) (*model.Comment, error) {
	fields := commentFields{target: model.CommentTargetTask}
	for _, opt := range opts {
		opt(&fields)
	}
	if !fields.target.Valid() {
		return nil, repository.ErrCommentTarget
	}

	oid, err := repository.ParseID(objectID, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	if _, err := t.tasks.GetByID(ctx, oid); err != nil {
		return nil, err
	}
	status, err := t.statuses.Get(ctx, statusID)
	if err != nil {
		return nil, err
	}
	pid, err := repository.ParseID(personID, repository.ErrPersonNotFound)
	if err != nil {
		return nil, err
	}
	if _, err := t.persons.GetByID(ctx, pid); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ObjectID:     oid,
		ObjectType:   fields.target,
		TaskStatusID: status.ID,
		PersonID:     pid,
		Text:         text,
		CreatedAt:    t.settings.now(),
	}
	if fields.previewID != "" {
		previewID, err := repository.ParseID(fields.previewID, repository.ErrPreviewFileNotFound)
		if err != nil {
			return nil, err
		}
		if _, err := t.previews.GetByID(ctx, previewID); err != nil {
			return nil, err
		}
		comment.PreviewFileID = &previewID
	}

	if err := t.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Get returns one comment by id.
func (t *CommentThread) Get(ctx context.Context, id string) (*model.Comment, error) {
	commentID, err := repository.ParseID(id, repository.ErrCommentNotFound)
	if err != nil {
		return nil, err
	}
	return t.comments.GetByID(ctx, commentID)
}

// List returns the task's comments, newest first, with author, the status
// each comment was posted under and its preview when there is one.
func (t *CommentThread) List(ctx context.Context, taskID string) ([]model.CommentView, error) {
	tid, err := repository.ParseID(taskID, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	views, err := t.comments.ListForTask(ctx, tid)
	if err != nil {
		return nil, err
	}

	var previewIDs []uuid.UUID
	for _, v := range views {
		if v.PreviewFileID != nil {
			previewIDs = append(previewIDs, *v.PreviewFileID)
		}
	}
	previews, err := t.previews.GetByIDs(ctx, previewIDs)
	if err != nil {
		return nil, err
	}
	for i := range views {
		if views[i].PreviewFileID == nil {
			continue
		}
		if p, ok := previews[*views[i].PreviewFileID]; ok {
			views[i].Preview = &model.PreviewSummary{ID: p.ID, Revision: p.Revision, IsMovie: p.IsMovie}
		}
	}
	return views, nil
}

// NextPreviewRevision returns the revision number the next preview of the
// task should get.
func (t *CommentThread) NextPreviewRevision(ctx context.Context, taskID string) (int, error) {
	tid, err := repository.ParseID(taskID, repository.ErrTaskNotFound)
	if err != nil {
		return 0, err
	}
	latest, err := t.previews.MaxRevision(ctx, tid)
	if err != nil {
		return 0, err
	}
	return latest + 1, nil
}
