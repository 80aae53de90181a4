package handler

import (
	"context"
	"net/http"

	"prodtrack/internal/middleware"
	"prodtrack/internal/model"
	"prodtrack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskService is the part of the task lifecycle the HTTP layer drives.
type TaskService interface {
	Get(ctx context.Context, id string) (*model.TaskSnapshot, error)
	Create(ctx context.Context, taskTypeID, entityID, name string, actingUserID *uuid.UUID) (*model.CreatedTask, error)
	Start(ctx context.Context, id string) (*model.TaskSnapshot, error)
	ToReview(ctx context.Context, id, personID, comment, previewPath string) (*model.ReviewSnapshot, error)
	Assign(ctx context.Context, id, personID string) (*model.TaskSnapshot, error)
	ClearAssignation(ctx context.Context, id string) (*model.TaskSnapshot, error)
	Update(ctx context.Context, id string, update model.TaskUpdate) (*model.TaskSnapshot, error)
	Remove(ctx context.Context, id string) (*model.TaskSnapshot, error)
	TasksForEntityAndTaskType(ctx context.Context, entityID, taskTypeID string) ([]model.TaskSnapshot, error)
}

// CommentService posts and lists task comments.
type CommentService interface {
	Add(ctx context.Context, objectID, statusID, personID, text string, opts ...service.CommentOption) (*model.Comment, error)
	List(ctx context.Context, taskID string) ([]model.CommentView, error)
}

// TimeService records time spent on tasks.
type TimeService interface {
	Record(ctx context.Context, taskID, personID, date string, duration float64, mode service.TimeMode) (*model.TimeSpent, error)
	Totals(ctx context.Context, taskID string) (*model.TimeSpentTotals, error)
}

var (
	_ TaskService    = (*service.TaskLifecycle)(nil)
	_ CommentService = (*service.CommentThread)(nil)
	_ TimeService    = (*service.TimeLedger)(nil)
)

type TaskHandler struct {
	tasks    TaskService
	comments CommentService
	ledger   TimeService
	access   AccessPolicy
}

func NewTaskHandler(tasks TaskService, comments CommentService, ledger TimeService, access AccessPolicy) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		comments: comments,
		ledger:   ledger,
		access:   access,
	}
}

// CreateTaskRequest представляет запрос на создание задачи для сущности
type CreateTaskRequest struct {
	Name string `json:"name"`
}

// ToReviewRequest представляет запрос на отправку задачи на проверку
type ToReviewRequest struct {
	PersonID    string `json:"person_id" binding:"required"`
	Comment     string `json:"comment"`
	PreviewPath string `json:"preview_path"`
}

// AssignRequest представляет запрос на назначение человека на задачу
type AssignRequest struct {
	PersonID string `json:"person_id" binding:"required"`
}

// CommentRequest представляет запрос на добавление комментария
type CommentRequest struct {
	TaskStatusID  string `json:"task_status_id" binding:"required"`
	Comment       string `json:"comment"`
	ObjectType    string `json:"object_type"`
	PreviewFileID string `json:"preview_file_id"`
}

// TimeSpentRequest представляет запрос на запись потраченного времени
type TimeSpentRequest struct {
	Duration   *float64 `json:"duration" binding:"required"`
	Accumulate bool     `json:"accumulate"`
}

// visibleTask loads the task and checks the caller may read it.
func (h *TaskHandler) visibleTask(c *gin.Context, id string) (*model.TaskSnapshot, error) {
	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := checkProjectAccess(c, h.access, task.ProjectID); err != nil {
		return nil, err
	}
	return task, nil
}

// GetByID возвращает задачу по ID
//
//	@Summary	Get a task
//	@Tags		Tasks
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Task ID"
//	@Success	200	{object}	model.TaskSnapshot
//	@Failure	404	{object}	map[string]string
//	@Router		/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	task, err := h.visibleTask(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create применяет тип задачи к сущности
//
//	@Summary	Create a task on an entity
//	@Tags		Tasks
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id				path		string				true	"Entity ID"
//	@Param		task_type_id	path		string				true	"Task type ID"
//	@Param		request			body		CreateTaskRequest	false	"Task name"
//	@Success	201				{object}	model.CreatedTask
//	@Success	200				{object}	model.TaskSnapshot
//	@Router		/entities/{id}/task-types/{task_type_id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	var actingUserID *uuid.UUID
	if userID, ok := middleware.CurrentUserID(c); ok {
		actingUserID = &userID
	}

	entityID := c.Param("id")
	taskTypeID := c.Param("task_type_id")
	created, err := h.tasks.Create(c.Request.Context(), taskTypeID, entityID, req.Name, actingUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if created != nil {
		c.JSON(http.StatusCreated, created)
		return
	}

	// Задача уже существует, возвращаем ее
	existing, err := h.tasks.TasksForEntityAndTaskType(c.Request.Context(), entityID, taskTypeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(existing) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Task could not be created"})
		return
	}
	c.JSON(http.StatusOK, existing[0])
}

// Update изменяет редактируемые поля задачи
func (h *TaskHandler) Update(c *gin.Context) {
	var req model.TaskUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete удаляет задачу вместе с комментариями и записями времени
func (h *TaskHandler) Delete(c *gin.Context) {
	task, err := h.tasks.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Start переводит задачу в работу
func (h *TaskHandler) Start(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.visibleTask(c, id); err != nil {
		respondError(c, err)
		return
	}

	task, err := h.tasks.Start(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ToReview отправляет задачу на проверку
func (h *TaskHandler) ToReview(c *gin.Context) {
	var req ToReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	id := c.Param("id")
	if _, err := h.visibleTask(c, id); err != nil {
		respondError(c, err)
		return
	}

	task, err := h.tasks.ToReview(c.Request.Context(), id, req.PersonID, req.Comment, req.PreviewPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Assign назначает человека на задачу
func (h *TaskHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.tasks.Assign(c.Request.Context(), c.Param("id"), req.PersonID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ClearAssignation снимает всех исполнителей с задачи
func (h *TaskHandler) ClearAssignation(c *gin.Context) {
	task, err := h.tasks.ClearAssignation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetComments возвращает комментарии задачи, новые первыми
func (h *TaskHandler) GetComments(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.visibleTask(c, id); err != nil {
		respondError(c, err)
		return
	}

	comments, err := h.comments.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// AddComment добавляет комментарий к задаче от имени текущего пользователя
func (h *TaskHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var opts []service.CommentOption
	if req.ObjectType != "" {
		target, err := model.ParseCommentTarget(req.ObjectType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts = append(opts, service.WithTarget(target))
	}
	if req.PreviewFileID != "" {
		opts = append(opts, service.WithPreview(req.PreviewFileID))
	}

	comment, err := h.comments.Add(c.Request.Context(), c.Param("id"), req.TaskStatusID, userID.String(), req.Comment, opts...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetTimeSpents возвращает потраченное время по людям и сумму
func (h *TaskHandler) GetTimeSpents(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.visibleTask(c, id); err != nil {
		respondError(c, err)
		return
	}

	totals, err := h.ledger.Totals(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// SetTimeSpent записывает время, потраченное человеком на задачу за день
func (h *TaskHandler) SetTimeSpent(c *gin.Context) {
	var req TimeSpentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	mode := service.Replace
	if req.Accumulate {
		mode = service.Accumulate
	}

	entry, err := h.ledger.Record(c.Request.Context(), c.Param("id"), c.Param("person_id"), c.Param("date"), *req.Duration, mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
