package handler

import (
	"context"
	"net/http"

	"prodtrack/internal/model"
	"prodtrack/internal/service"

	"github.com/gin-gonic/gin"
)

// EntityTaskService lists tasks by kind of entity.
type EntityTaskService interface {
	TasksForShot(ctx context.Context, shotID string) ([]model.EntityTaskView, error)
	TasksForScene(ctx context.Context, sceneID string) ([]model.EntityTaskView, error)
	TasksForSequence(ctx context.Context, sequenceID string) ([]model.EntityTaskView, error)
	TasksForAsset(ctx context.Context, assetID string) ([]model.EntityTaskView, error)
}

// ShotLookup resolves shot ids.
type ShotLookup interface {
	Shot(ctx context.Context, id string) (*model.Entity, error)
}

// TaskTypeLister lists the task types used on an entity.
type TaskTypeLister interface {
	TaskTypesForEntity(ctx context.Context, entity *model.Entity) ([]model.TaskType, error)
}

var (
	_ EntityTaskService = (*service.TaskLifecycle)(nil)
	_ ShotLookup        = (*service.EntityHierarchy)(nil)
	_ TaskTypeLister    = (*service.Catalog)(nil)
)

type EntityHandler struct {
	tasks     EntityTaskService
	shots     ShotLookup
	taskTypes TaskTypeLister
	access    AccessPolicy
}

func NewEntityHandler(tasks EntityTaskService, shots ShotLookup, taskTypes TaskTypeLister, access AccessPolicy) *EntityHandler {
	return &EntityHandler{tasks: tasks, shots: shots, taskTypes: taskTypes, access: access}
}

type entityTaskLister func(ctx context.Context, id string) ([]model.EntityTaskView, error)

func (h *EntityHandler) respondTasks(c *gin.Context, list entityTaskLister) {
	tasks, err := list(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	// Все задачи одной сущности принадлежат одному проекту
	if len(tasks) > 0 {
		if err := checkProjectAccess(c, h.access, tasks[0].ProjectID); err != nil {
			respondError(c, err)
			return
		}
	}
	if tasks == nil {
		tasks = []model.EntityTaskView{}
	}
	c.JSON(http.StatusOK, tasks)
}

// GetShotTasks возвращает задачи шота
func (h *EntityHandler) GetShotTasks(c *gin.Context) {
	h.respondTasks(c, h.tasks.TasksForShot)
}

// GetSceneTasks возвращает задачи сцены
func (h *EntityHandler) GetSceneTasks(c *gin.Context) {
	h.respondTasks(c, h.tasks.TasksForScene)
}

// GetSequenceTasks возвращает задачи секвенции
func (h *EntityHandler) GetSequenceTasks(c *gin.Context) {
	h.respondTasks(c, h.tasks.TasksForSequence)
}

// GetAssetTasks возвращает задачи ассета
func (h *EntityHandler) GetAssetTasks(c *gin.Context) {
	h.respondTasks(c, h.tasks.TasksForAsset)
}

// GetShotTaskTypes возвращает типы задач, используемые на шоте
func (h *EntityHandler) GetShotTaskTypes(c *gin.Context) {
	shot, err := h.shots.Shot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := checkProjectAccess(c, h.access, shot.ProjectID); err != nil {
		respondError(c, err)
		return
	}

	taskTypes, err := h.taskTypes.TaskTypesForEntity(c.Request.Context(), shot)
	if err != nil {
		respondError(c, err)
		return
	}
	if taskTypes == nil {
		taskTypes = []model.TaskType{}
	}
	c.JSON(http.StatusOK, taskTypes)
}
