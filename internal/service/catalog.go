package service

import (
	"context"

	"prodtrack/internal/model"
	"prodtrack/internal/repository"
)

const (
	defaultTaskTypeColor   = "#888888"
	defaultDepartmentColor = "#000000"
)

// Catalog serves departments and task types.
type Catalog struct {
	repo  *repository.CatalogRepository
	tasks *repository.TaskRepository
}

func NewCatalog(repo *repository.CatalogRepository, tasks *repository.TaskRepository) *Catalog {
	return &Catalog{repo: repo, tasks: tasks}
}

func (c *Catalog) TaskType(ctx context.Context, id string) (*model.TaskType, error) {
	taskTypeID, err := repository.ParseID(id, repository.ErrTaskTypeNotFound)
	if err != nil {
		return nil, err
	}
	return c.repo.GetTaskType(ctx, taskTypeID)
}

func (c *Catalog) Department(ctx context.Context, id string) (*model.Department, error) {
	departmentID, err := repository.ParseID(id, repository.ErrDepartmentNotFound)
	if err != nil {
		return nil, err
	}
	return c.repo.GetDepartment(ctx, departmentID)
}

// GetOrCreateDepartment returns the department called name, creating it if
// needed.
func (c *Catalog) GetOrCreateDepartment(ctx context.Context, name string) (*model.Department, error) {
	department, err := c.repo.FindDepartmentByName(ctx, name)
	if err != nil || department != nil {
		return department, err
	}
	department = &model.Department{Name: name, Color: defaultDepartmentColor}
	err = c.repo.CreateDepartment(ctx, department)
	if repository.IsUniqueViolation(err) {
		return c.repo.FindDepartmentByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return department, nil
}

// GetOrCreateTaskType returns the task type called name, creating it in the
// department if needed. An empty color means the default grey.
func (c *Catalog) GetOrCreateTaskType(ctx context.Context, department *model.Department, name, color string, priority int, forShots bool) (*model.TaskType, error) {
	taskType, err := c.repo.FindTaskTypeByName(ctx, name)
	if err != nil || taskType != nil {
		return taskType, err
	}
	if color == "" {
		color = defaultTaskTypeColor
	}
	taskType = &model.TaskType{
		Name:         name,
		DepartmentID: department.ID,
		Color:        color,
		Priority:     priority,
		ForShots:     forShots,
	}
	err = c.repo.CreateTaskType(ctx, taskType)
	if repository.IsUniqueViolation(err) {
		return c.repo.FindTaskTypeByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return taskType, nil
}

// DepartmentForTask returns the department of the task's type.
func (c *Catalog) DepartmentForTask(ctx context.Context, taskID string) (*model.Department, error) {
	id, err := repository.ParseID(taskID, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	task, err := c.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	taskType, err := c.repo.GetTaskType(ctx, task.TaskTypeID)
	if err != nil {
		return nil, err
	}
	return c.repo.GetDepartment(ctx, taskType.DepartmentID)
}

// TaskTypesForEntity returns the task types used by the entity's tasks.
func (c *Catalog) TaskTypesForEntity(ctx context.Context, entity *model.Entity) ([]model.TaskType, error) {
	return c.repo.TaskTypesForEntity(ctx, entity.ID)
}

// TaskTypeMap returns every task type keyed by id.
func (c *Catalog) TaskTypeMap(ctx context.Context) (map[string]model.TaskType, error) {
	taskTypes, err := c.repo.ListTaskTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.TaskType, len(taskTypes))
	for _, t := range taskTypes {
		out[t.ID.String()] = t
	}
	return out, nil
}
