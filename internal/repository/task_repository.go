package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prodtrack/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database. A task that already exists for the
// same entity and task type fails with a unique violation.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// GetByID retrieves a task and its assignees by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Preload("Assignees").First(&task, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrTaskNotFound)
	}
	return &task, nil
}

func loadForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := forUpdate(tx).Preload("Assignees").First(&task, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrTaskNotFound)
	}
	return &task, nil
}

// Mutate reads the task, lets fn change it and writes it back, all in one
// transaction. Nothing is written when fn reports no change. The returned task
// is the state this call wrote.
func (r *TaskRepository) Mutate(ctx context.Context, id uuid.UUID, fn func(task *model.Task) (bool, error)) (*model.Task, error) {
	var task *model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		changed, err := fn(task)
		if err != nil || !changed {
			return err
		}
		return tx.Omit(clause.Associations).Save(task).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// AddAssignee appends the person to the task's assignees. added is false when
// the person was already assigned, in which case nothing is written.
func (r *TaskRepository) AddAssignee(ctx context.Context, id uuid.UUID, person *model.Person) (task *model.Task, added bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err = loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if task.HasAssignee(person.ID) {
			return nil
		}
		if err := tx.Model(task).Association("Assignees").Append(person); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return task, added, nil
}

// ClearAssignees empties the assignee set and returns who was assigned before.
func (r *TaskRepository) ClearAssignees(ctx context.Context, id uuid.UUID) (*model.Task, []model.Person, error) {
	var (
		task     *model.Task
		previous []model.Person
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		previous = append(previous, task.Assignees...)
		if len(previous) == 0 {
			return nil
		}
		return tx.Model(task).Association("Assignees").Clear()
	})
	if err != nil {
		return nil, nil, err
	}
	task.Assignees = nil
	return task, previous, nil
}

// Delete removes a task with its comments, preview files, time entries and
// assignee links, and returns the task as it was before deletion. Entities
// showing one of the removed previews lose their preview reference.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task *model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("object_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		previews := tx.Model(&model.PreviewFile{}).Select("id").Where("task_id = ?", id)
		if err := tx.Model(&model.Entity{}).Where("preview_file_id IN (?)", previews).
			Update("preview_file_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.PreviewFile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.TimeSpent{}).Error; err != nil {
			return err
		}
		if err := tx.Model(task).Association("Assignees").Clear(); err != nil {
			return err
		}
		result := tx.Delete(&model.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetByEntityAndTaskType retrieves the tasks of an entity for one task type
func (r *TaskRepository) GetByEntityAndTaskType(ctx context.Context, entityID, taskTypeID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Assignees").
		Where("entity_id = ? AND task_type_id = ?", entityID, taskTypeID).
		Order("name").
		Find(&tasks).Error
	return tasks, err
}

const taskColumnList = `tasks.id, tasks.name, tasks.project_id, tasks.task_type_id,
	tasks.task_status_id, tasks.entity_id, tasks.assigner_id, tasks.duration,
	tasks.estimation, tasks.completion_rate, tasks.start_date, tasks.end_date,
	tasks.due_date, tasks.real_start_date, tasks.created_at, tasks.updated_at`

// TaskRow mirrors the task columns for joined reads. It is exported so gorm
// flattens it when embedded in scan targets.
type TaskRow struct {
	ID             uuid.UUID
	Name           string
	ProjectID      uuid.UUID
	TaskTypeID     uuid.UUID
	TaskStatusID   *uuid.UUID
	EntityID       uuid.UUID
	AssignerID     *uuid.UUID
	Duration       float64
	Estimation     float64
	CompletionRate int
	StartDate      *time.Time
	EndDate        *time.Time
	DueDate        *time.Time
	RealStartDate  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (t TaskRow) snapshot(assignees []uuid.UUID) model.TaskSnapshot {
	task := model.Task{
		ID:             t.ID,
		Name:           t.Name,
		ProjectID:      t.ProjectID,
		TaskTypeID:     t.TaskTypeID,
		TaskStatusID:   t.TaskStatusID,
		EntityID:       t.EntityID,
		AssignerID:     t.AssignerID,
		Duration:       t.Duration,
		Estimation:     t.Estimation,
		CompletionRate: t.CompletionRate,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		DueDate:        t.DueDate,
		RealStartDate:  t.RealStartDate,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	s := task.Snapshot()
	s.Assignees = append(s.Assignees, assignees...)
	return s
}

// assigneeIDs loads the assignee ids of many tasks in one query.
func (r *TaskRepository) assigneeIDs(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	var links []struct {
		TaskID   uuid.UUID
		PersonID uuid.UUID
	}
	err := r.db.WithContext(ctx).Table("task_assignees").
		Select("task_id, person_id").
		Where("task_id IN ?", taskIDs).
		Scan(&links).Error
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.TaskID] = append(out[l.TaskID], l.PersonID)
	}
	return out, nil
}

// ListForEntity returns the tasks of an entity with project, task type,
// status and entity type names.
func (r *TaskRepository) ListForEntity(ctx context.Context, entityID uuid.UUID) ([]model.EntityTaskView, error) {
	var rows []struct {
		TaskRow
		ProjectName    string
		TaskTypeName   string
		TaskStatusName string
		EntityTypeName string
		EntityName     string
	}
	err := r.db.WithContext(ctx).Table("tasks").
		Select(taskColumnList+`,
			projects.name AS project_name,
			task_types.name AS task_type_name,
			task_statuses.name AS task_status_name,
			entity_types.name AS entity_type_name,
			entities.name AS entity_name`).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Joins("JOIN task_types ON task_types.id = tasks.task_type_id").
		Joins("JOIN task_statuses ON task_statuses.id = tasks.task_status_id").
		Joins("JOIN entities ON entities.id = tasks.entity_id").
		Joins("JOIN entity_types ON entity_types.id = entities.entity_type_id").
		Where("tasks.entity_id = ?", entityID).
		Order("projects.name, task_types.name, entity_types.name, entities.name, tasks.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assignees, err := r.assigneeIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]model.EntityTaskView, 0, len(rows))
	for _, row := range rows {
		views = append(views, model.EntityTaskView{
			TaskSnapshot:   row.snapshot(assignees[row.ID]),
			ProjectName:    row.ProjectName,
			TaskTypeName:   row.TaskTypeName,
			TaskStatusName: row.TaskStatusName,
			EntityTypeName: row.EntityTypeName,
			EntityName:     row.EntityName,
		})
	}
	return views, nil
}

// ListOpenForPerson returns the tasks assigned to the person in the given
// projects whose status is not doneStatusID. Sequence and episode names come
// from outer joins and stay nil when the entity has no such ancestor. The
// LastComment field is left empty.
func (r *TaskRepository) ListOpenForPerson(ctx context.Context, personID uuid.UUID, projectIDs []uuid.UUID, doneStatusID uuid.UUID) ([]model.TaskView, error) {
	if len(projectIDs) == 0 {
		return []model.TaskView{}, nil
	}

	var rows []struct {
		TaskRow
		ProjectName         string
		EntityName          string
		EntityPreviewFileID *uuid.UUID
		EntityTypeName      string
		SequenceName        *string
		EpisodeName         *string
		TaskTypeName        string
		TaskTypeColor       string
		TaskStatusName      string
		TaskStatusColor     string
		TaskStatusShortName string
	}
	err := r.db.WithContext(ctx).Table("tasks").
		Select(taskColumnList+`,
			projects.name AS project_name,
			entities.name AS entity_name,
			entities.preview_file_id AS entity_preview_file_id,
			entity_types.name AS entity_type_name,
			sequence.name AS sequence_name,
			episode.name AS episode_name,
			task_types.name AS task_type_name,
			task_types.color AS task_type_color,
			task_statuses.name AS task_status_name,
			task_statuses.color AS task_status_color,
			task_statuses.short_name AS task_status_short_name`).
		Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Joins("JOIN task_types ON task_types.id = tasks.task_type_id").
		Joins("JOIN task_statuses ON task_statuses.id = tasks.task_status_id").
		Joins("JOIN entities ON entities.id = tasks.entity_id").
		Joins("JOIN entity_types ON entity_types.id = entities.entity_type_id").
		Joins("LEFT JOIN entities AS sequence ON sequence.id = entities.parent_id").
		Joins("LEFT JOIN entities AS episode ON episode.id = sequence.parent_id").
		Where("task_assignees.person_id = ?", personID).
		Where("tasks.project_id IN ?", projectIDs).
		Where("tasks.task_status_id <> ?", doneStatusID).
		Order("projects.name, entities.name, task_types.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assignees, err := r.assigneeIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]model.TaskView, 0, len(rows))
	for _, row := range rows {
		previewID := ""
		if row.EntityPreviewFileID != nil {
			previewID = row.EntityPreviewFileID.String()
		}
		views = append(views, model.TaskView{
			TaskSnapshot:        row.snapshot(assignees[row.ID]),
			ProjectName:         row.ProjectName,
			EntityName:          row.EntityName,
			EntityPreviewFileID: previewID,
			EntityTypeName:      row.EntityTypeName,
			SequenceName:        row.SequenceName,
			EpisodeName:         row.EpisodeName,
			TaskTypeName:        row.TaskTypeName,
			TaskTypeColor:       row.TaskTypeColor,
			TaskStatusName:      row.TaskStatusName,
			TaskStatusColor:     row.TaskStatusColor,
			TaskStatusShortName: row.TaskStatusShortName,
		})
	}
	return views, nil
}
