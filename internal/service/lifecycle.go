package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"prodtrack/internal/events"
	"prodtrack/internal/logging"
	"prodtrack/internal/model"
	"prodtrack/internal/repository"
)

const defaultTaskName = "main"

// TaskLifecycle creates tasks and moves them through their statuses and
// assignments, emitting an event for every effective change.
type TaskLifecycle struct {
	tasks     *repository.TaskRepository
	persons   *repository.PersonRepository
	projects  *repository.ProjectRepository
	statuses  *StatusRegistry
	catalog   *Catalog
	hierarchy *EntityHierarchy
	sink      events.Sink
	settings  settings
}

func NewTaskLifecycle(
	tasks *repository.TaskRepository,
	persons *repository.PersonRepository,
	projects *repository.ProjectRepository,
	statuses *StatusRegistry,
	catalog *Catalog,
	hierarchy *EntityHierarchy,
	sink events.Sink,
	opts ...Option,
) *TaskLifecycle {
	if sink == nil {
		sink = events.Discard
	}
	return &TaskLifecycle{
		tasks:     tasks,
		persons:   persons,
		projects:  projects,
		statuses:  statuses,
		catalog:   catalog,
		hierarchy: hierarchy,
		sink:      sink,
		settings:  newSettings(opts),
	}
}

func (l *TaskLifecycle) publish(name string, taskID uuid.UUID, payload any) {
	logging.Logger.WithFields(logrus.Fields{"event": name, "task_id": taskID}).Debug("publishing task event")
	l.sink.Publish(name, payload)
}

func (l *TaskLifecycle) load(ctx context.Context, id string) (*model.Task, error) {
	taskID, err := repository.ParseID(id, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	return l.tasks.GetByID(ctx, taskID)
}

// Get returns the task with that id.
func (l *TaskLifecycle) Get(ctx context.Context, id string) (*model.TaskSnapshot, error) {
	task, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s := task.Snapshot()
	return &s, nil
}

// Create applies a task type to an entity. It returns nil, nil when the
// entity already has a task of that type. actingUserID, when set, is
// recorded as the assigner.
func (l *TaskLifecycle) Create(ctx context.Context, taskTypeID, entityID, name string, actingUserID *uuid.UUID) (*model.CreatedTask, error) {
	taskType, err := l.catalog.TaskType(ctx, taskTypeID)
	if err != nil {
		return nil, err
	}
	entity, err := l.hierarchy.Entity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	status, err := l.statuses.Todo(ctx)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = defaultTaskName
	}
	statusID := status.ID
	task := &model.Task{
		Name:         name,
		ProjectID:    entity.ProjectID,
		TaskTypeID:   taskType.ID,
		TaskStatusID: &statusID,
		EntityID:     entity.ID,
	}
	if actingUserID != nil {
		assigner := *actingUserID
		task.AssignerID = &assigner
	}

	err = l.tasks.Create(ctx, task)
	if repository.IsUniqueViolation(err) {
		logging.Logger.WithFields(logrus.Fields{
			"entity_id":    entity.ID,
			"task_type_id": taskType.ID,
		}).Debug("task already exists, nothing created")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &model.CreatedTask{
		TaskSnapshot:        task.Snapshot(),
		TaskStatusName:      status.Name,
		TaskStatusShortName: status.ShortName,
		TaskStatusColor:     status.Color,
		TaskTypeName:        taskType.Name,
		TaskTypeColor:       taskType.Color,
		TaskTypePriority:    taskType.Priority,
	}, nil
}

// Start moves the task to the wip status and stamps its real start date the
// first time. A task already in wip is left untouched and no event is sent.
func (l *TaskLifecycle) Start(ctx context.Context, id string) (*model.TaskSnapshot, error) {
	taskID, err := repository.ParseID(id, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	wip, err := l.statuses.Wip(ctx)
	if err != nil {
		return nil, err
	}

	var (
		before  model.TaskSnapshot
		started bool
	)
	task, err := l.tasks.Mutate(ctx, taskID, func(task *model.Task) (bool, error) {
		if task.TaskStatusID != nil && *task.TaskStatusID == wip.ID {
			return false, nil
		}
		before = task.Snapshot()
		wipID := wip.ID
		task.TaskStatusID = &wipID
		if task.RealStartDate == nil {
			now := l.settings.now()
			task.RealStartDate = &now
		}
		started = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	after := task.Snapshot()
	if started {
		l.publish(events.TaskStart, task.ID, events.StatusChange{TaskBefore: before, TaskAfter: after})
	}
	return &after, nil
}

// ToReview puts the task in the pending review status on behalf of a person
// and notifies reviewers. It is not idempotent: every call emits an event.
func (l *TaskLifecycle) ToReview(ctx context.Context, id, personID, comment, previewPath string) (*model.ReviewSnapshot, error) {
	taskID, err := repository.ParseID(id, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	pid, err := repository.ParseID(personID, repository.ErrPersonNotFound)
	if err != nil {
		return nil, err
	}
	person, err := l.persons.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	toReview, err := l.statuses.ToReview(ctx)
	if err != nil {
		return nil, err
	}

	var before model.TaskSnapshot
	task, err := l.tasks.Mutate(ctx, taskID, func(task *model.Task) (bool, error) {
		before = task.Snapshot()
		statusID := toReview.ID
		task.TaskStatusID = &statusID
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	project, err := l.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	entity, err := l.hierarchy.Entity(ctx, task.EntityID.String())
	if err != nil {
		return nil, err
	}
	entityType, err := l.hierarchy.EntityType(ctx, entity)
	if err != nil {
		return nil, err
	}

	after := model.ReviewSnapshot{
		TaskSnapshot: task.Snapshot(),
		Project:      *project,
		Entity:       *entity,
		EntityType:   *entityType,
		Person:       *person,
		Comment:      comment,
		PreviewPath:  previewPath,
	}
	l.publish(events.TaskToReview, task.ID, events.ReviewRequest{TaskBefore: before, TaskAfter: after})
	return &after, nil
}

// Assign adds a person to the task's assignees. Assigning someone already
// assigned changes nothing and emits no event.
func (l *TaskLifecycle) Assign(ctx context.Context, id, personID string) (*model.TaskSnapshot, error) {
	taskID, err := repository.ParseID(id, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	pid, err := repository.ParseID(personID, repository.ErrPersonNotFound)
	if err != nil {
		return nil, err
	}
	person, err := l.persons.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}

	task, added, err := l.tasks.AddAssignee(ctx, taskID, person)
	if err != nil {
		return nil, err
	}
	snapshot := task.Snapshot()
	if added {
		l.publish(events.TaskAssign, task.ID, events.Assignment{Task: snapshot, Person: *person})
	}
	return &snapshot, nil
}

// ClearAssignation removes every assignee, emitting one task:unassign event
// per person that was assigned.
func (l *TaskLifecycle) ClearAssignation(ctx context.Context, id string) (*model.TaskSnapshot, error) {
	taskID, err := repository.ParseID(id, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	task, previous, err := l.tasks.ClearAssignees(ctx, taskID)
	if err != nil {
		return nil, err
	}
	snapshot := task.Snapshot()
	for _, person := range previous {
		l.publish(events.TaskUnassign, task.ID, events.Assignment{Task: snapshot, Person: person})
	}
	return &snapshot, nil
}

// Update writes the given fields and returns the task as written.
func (l *TaskLifecycle) Update(ctx context.Context, id string, update model.TaskUpdate) (*model.TaskSnapshot, error) {
	taskID, err := repository.ParseID(id, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	task, err := l.tasks.Mutate(ctx, taskID, func(task *model.Task) (bool, error) {
		update.Apply(task)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s := task.Snapshot()
	return &s, nil
}

// Remove deletes the task with its comments and time entries and returns the
// task as it was.
func (l *TaskLifecycle) Remove(ctx context.Context, id string) (*model.TaskSnapshot, error) {
	taskID, err := repository.ParseID(id, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	task, err := l.tasks.Delete(ctx, taskID)
	if err != nil {
		return nil, err
	}
	logging.Logger.WithField("task_id", task.ID).Info("task removed")
	s := task.Snapshot()
	return &s, nil
}

// TasksForEntity lists the tasks of an entity with display names.
func (l *TaskLifecycle) TasksForEntity(ctx context.Context, entity *model.Entity) ([]model.EntityTaskView, error) {
	return l.tasks.ListForEntity(ctx, entity.ID)
}

func (l *TaskLifecycle) TasksForShot(ctx context.Context, shotID string) ([]model.EntityTaskView, error) {
	shot, err := l.hierarchy.Shot(ctx, shotID)
	if err != nil {
		return nil, err
	}
	return l.TasksForEntity(ctx, shot)
}

func (l *TaskLifecycle) TasksForScene(ctx context.Context, sceneID string) ([]model.EntityTaskView, error) {
	scene, err := l.hierarchy.Scene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	return l.TasksForEntity(ctx, scene)
}

func (l *TaskLifecycle) TasksForSequence(ctx context.Context, sequenceID string) ([]model.EntityTaskView, error) {
	sequence, err := l.hierarchy.Sequence(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	return l.TasksForEntity(ctx, sequence)
}

func (l *TaskLifecycle) TasksForAsset(ctx context.Context, assetID string) ([]model.EntityTaskView, error) {
	asset, err := l.hierarchy.Asset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return l.TasksForEntity(ctx, asset)
}

// TasksForEntityAndTaskType returns the tasks of one type on one entity.
func (l *TaskLifecycle) TasksForEntityAndTaskType(ctx context.Context, entityID, taskTypeID string) ([]model.TaskSnapshot, error) {
	eid, err := repository.ParseID(entityID, repository.ErrEntityNotFound)
	if err != nil {
		return nil, err
	}
	tid, err := repository.ParseID(taskTypeID, repository.ErrTaskTypeNotFound)
	if err != nil {
		return nil, err
	}
	tasks, err := l.tasks.GetByEntityAndTaskType(ctx, eid, tid)
	if err != nil {
		return nil, err
	}
	out := make([]model.TaskSnapshot, 0, len(tasks))
	for i := range tasks {
		out = append(out, tasks[i].Snapshot())
	}
	return out, nil
}
