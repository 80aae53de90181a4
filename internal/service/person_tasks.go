package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prodtrack/internal/model"
	"prodtrack/internal/repository"
)

// PersonTaskAggregator builds the "my tasks" listing of a person.
type PersonTaskAggregator struct {
	db       *gorm.DB
	persons  *repository.PersonRepository
	statuses *StatusRegistry
}

func NewPersonTaskAggregator(db *gorm.DB, persons *repository.PersonRepository, statuses *StatusRegistry) *PersonTaskAggregator {
	return &PersonTaskAggregator{db: db, persons: persons, statuses: statuses}
}

// TasksForPerson returns the tasks assigned to the person in the given
// projects that are not done, each with its most recent comment. Tasks and
// comments are read with one query each, inside one read transaction.
func (a *PersonTaskAggregator) TasksForPerson(ctx context.Context, personID string, projectIDs []uuid.UUID) ([]model.TaskView, error) {
	pid, err := repository.ParseID(personID, repository.ErrPersonNotFound)
	if err != nil {
		return nil, err
	}
	if _, err := a.persons.GetByID(ctx, pid); err != nil {
		return nil, err
	}
	done, err := a.statuses.Done(ctx)
	if err != nil {
		return nil, err
	}

	var tasks []model.TaskView
	err = repository.ReadTx(ctx, a.db, func(tx *gorm.DB) error {
		var err error
		tasks, err = repository.NewTaskRepository(tx).ListOpenForPerson(ctx, pid, projectIDs, done.ID)
		if err != nil || len(tasks) == 0 {
			return err
		}

		taskIDs := make([]uuid.UUID, 0, len(tasks))
		for _, t := range tasks {
			taskIDs = append(taskIDs, t.ID)
		}
		comments, err := repository.NewCommentRepository(tx).ListForObjects(ctx, taskIDs)
		if err != nil {
			return err
		}

		last := lastComments(comments)
		for i := range tasks {
			tasks[i].LastComment = last[tasks[i].ID]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// lastComments walks comments ordered by object id then creation time and
// keeps the final entry of each object's run, which is its newest comment.
func lastComments(comments []model.Comment) map[uuid.UUID]model.LastComment {
	out := make(map[uuid.UUID]model.LastComment)
	var (
		current uuid.UUID
		last    model.LastComment
		seen    bool
	)
	for _, c := range comments {
		if seen && c.ObjectID != current {
			out[current] = last
		}
		current = c.ObjectID
		seen = true
		last = model.LastComment{Text: c.Text, Date: c.CreatedAt, PersonID: c.PersonID}
	}
	if seen {
		out[current] = last
	}
	return out
}
