package service

import (
	"context"
	"strings"

	"prodtrack/internal/logging"
	"prodtrack/internal/model"
	"prodtrack/internal/repository"
)

const (
	defaultStatusColor = "#f5f5f5"
	todoStatusName     = "Todo"
)

// StatusNames holds the configured names of the operational statuses.
type StatusNames struct {
	Done     string
	Wip      string
	ToReview string
}

// StatusRegistry hands out task statuses, creating them on first use.
type StatusRegistry struct {
	repo  *repository.StatusRepository
	names StatusNames
}

func NewStatusRegistry(repo *repository.StatusRepository, names StatusNames) *StatusRegistry {
	return &StatusRegistry{repo: repo, names: names}
}

// GetOrCreate returns the status called name, or the one whose short name is
// shortName, creating it when neither exists. When a concurrent caller
// creates the same status first, that row is returned.
func (s *StatusRegistry) GetOrCreate(ctx context.Context, name, shortName, color string, isReviewable bool) (*model.TaskStatus, error) {
	status, err := s.find(ctx, name, shortName)
	if err != nil || status != nil {
		return status, err
	}

	if shortName == "" {
		shortName = strings.ToLower(name)
	}
	if color == "" {
		color = defaultStatusColor
	}
	status = &model.TaskStatus{
		Name:         name,
		ShortName:    shortName,
		Color:        color,
		IsReviewable: isReviewable,
	}
	err = s.repo.Create(ctx, status)
	if repository.IsUniqueViolation(err) {
		logging.Logger.WithField("status", name).Debug("task status created concurrently, reusing it")
		status, err = s.find(ctx, name, shortName)
		if err == nil && status == nil {
			err = repository.ErrTaskStatusNotFound
		}
		return status, err
	}
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (s *StatusRegistry) find(ctx context.Context, name, shortName string) (*model.TaskStatus, error) {
	status, err := s.repo.FindByName(ctx, name)
	if err != nil || status != nil {
		return status, err
	}
	if shortName == "" {
		return nil, nil
	}
	return s.repo.FindByShortName(ctx, shortName)
}

func (s *StatusRegistry) Done(ctx context.Context) (*model.TaskStatus, error) {
	return s.GetOrCreate(ctx, s.names.Done, "done", "", false)
}

func (s *StatusRegistry) Wip(ctx context.Context) (*model.TaskStatus, error) {
	return s.GetOrCreate(ctx, s.names.Wip, "wip", "", false)
}

func (s *StatusRegistry) ToReview(ctx context.Context) (*model.TaskStatus, error) {
	return s.GetOrCreate(ctx, s.names.ToReview, "pndng", "", false)
}

func (s *StatusRegistry) Todo(ctx context.Context) (*model.TaskStatus, error) {
	return s.GetOrCreate(ctx, todoStatusName, "", "", false)
}

// Get looks a status up by id. Malformed and unknown ids are both
// ErrTaskStatusNotFound.
func (s *StatusRegistry) Get(ctx context.Context, id string) (*model.TaskStatus, error) {
	statusID, err := repository.ParseID(id, repository.ErrTaskStatusNotFound)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, statusID)
}

// StatusMap returns every status keyed by id.
func (s *StatusRegistry) StatusMap(ctx context.Context) (map[string]model.TaskStatus, error) {
	statuses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.TaskStatus, len(statuses))
	for _, st := range statuses {
		out[st.ID.String()] = st
	}
	return out, nil
}
