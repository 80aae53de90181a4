package handler_test

import (
	"context"

	"prodtrack/internal/middleware"
	"prodtrack/internal/model"
	"prodtrack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Get(ctx context.Context, id string) (*model.TaskSnapshot, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.TaskSnapshot)
	return task, args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, taskTypeID, entityID, name string, actingUserID *uuid.UUID) (*model.CreatedTask, error) {
	args := m.Called(ctx, taskTypeID, entityID, name, actingUserID)
	task, _ := args.Get(0).(*model.CreatedTask)
	return task, args.Error(1)
}

func (m *MockTaskService) Start(ctx context.Context, id string) (*model.TaskSnapshot, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.TaskSnapshot)
	return task, args.Error(1)
}

func (m *MockTaskService) ToReview(ctx context.Context, id, personID, comment, previewPath string) (*model.ReviewSnapshot, error) {
	args := m.Called(ctx, id, personID, comment, previewPath)
	task, _ := args.Get(0).(*model.ReviewSnapshot)
	return task, args.Error(1)
}

func (m *MockTaskService) Assign(ctx context.Context, id, personID string) (*model.TaskSnapshot, error) {
	args := m.Called(ctx, id, personID)
	task, _ := args.Get(0).(*model.TaskSnapshot)
	return task, args.Error(1)
}

func (m *MockTaskService) ClearAssignation(ctx context.Context, id string) (*model.TaskSnapshot, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.TaskSnapshot)
	return task, args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, id string, update model.TaskUpdate) (*model.TaskSnapshot, error) {
	args := m.Called(ctx, id, update)
	task, _ := args.Get(0).(*model.TaskSnapshot)
	return task, args.Error(1)
}

func (m *MockTaskService) Remove(ctx context.Context, id string) (*model.TaskSnapshot, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.TaskSnapshot)
	return task, args.Error(1)
}

func (m *MockTaskService) TasksForEntityAndTaskType(ctx context.Context, entityID, taskTypeID string) ([]model.TaskSnapshot, error) {
	args := m.Called(ctx, entityID, taskTypeID)
	tasks, _ := args.Get(0).([]model.TaskSnapshot)
	return tasks, args.Error(1)
}

func (m *MockTaskService) TasksForShot(ctx context.Context, id string) ([]model.EntityTaskView, error) {
	args := m.Called(ctx, id)
	tasks, _ := args.Get(0).([]model.EntityTaskView)
	return tasks, args.Error(1)
}

func (m *MockTaskService) TasksForScene(ctx context.Context, id string) ([]model.EntityTaskView, error) {
	args := m.Called(ctx, id)
	tasks, _ := args.Get(0).([]model.EntityTaskView)
	return tasks, args.Error(1)
}

func (m *MockTaskService) TasksForSequence(ctx context.Context, id string) ([]model.EntityTaskView, error) {
	args := m.Called(ctx, id)
	tasks, _ := args.Get(0).([]model.EntityTaskView)
	return tasks, args.Error(1)
}

func (m *MockTaskService) TasksForAsset(ctx context.Context, id string) ([]model.EntityTaskView, error) {
	args := m.Called(ctx, id)
	tasks, _ := args.Get(0).([]model.EntityTaskView)
	return tasks, args.Error(1)
}

// Мок сервиса комментариев
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Add(ctx context.Context, objectID, statusID, personID, text string, opts ...service.CommentOption) (*model.Comment, error) {
	args := m.Called(ctx, objectID, statusID, personID, text, len(opts))
	comment, _ := args.Get(0).(*model.Comment)
	return comment, args.Error(1)
}

func (m *MockCommentService) List(ctx context.Context, taskID string) ([]model.CommentView, error) {
	args := m.Called(ctx, taskID)
	comments, _ := args.Get(0).([]model.CommentView)
	return comments, args.Error(1)
}

// Мок учета времени
type MockTimeService struct {
	mock.Mock
}

func (m *MockTimeService) Record(ctx context.Context, taskID, personID, date string, duration float64, mode service.TimeMode) (*model.TimeSpent, error) {
	args := m.Called(ctx, taskID, personID, date, duration, mode)
	entry, _ := args.Get(0).(*model.TimeSpent)
	return entry, args.Error(1)
}

func (m *MockTimeService) Totals(ctx context.Context, taskID string) (*model.TimeSpentTotals, error) {
	args := m.Called(ctx, taskID)
	totals, _ := args.Get(0).(*model.TimeSpentTotals)
	return totals, args.Error(1)
}

// Мок политики доступа
type MockAccessPolicy struct {
	mock.Mock
}

func (m *MockAccessPolicy) HasTaskRelated(ctx context.Context, personID, projectID uuid.UUID) (bool, error) {
	args := m.Called(ctx, personID, projectID)
	return args.Bool(0), args.Error(1)
}

// Мок репозитория людей
type MockPersonFinder struct {
	mock.Mock
}

func (m *MockPersonFinder) FindByEmail(ctx context.Context, email string) (*model.Person, error) {
	args := m.Called(ctx, email)
	person, _ := args.Get(0).(*model.Person)
	return person, args.Error(1)
}

type MockPersonTaskService struct {
	mock.Mock
}

func (m *MockPersonTaskService) TasksForPerson(ctx context.Context, personID string, projectIDs []uuid.UUID) ([]model.TaskView, error) {
	args := m.Called(ctx, personID, projectIDs)
	tasks, _ := args.Get(0).([]model.TaskView)
	return tasks, args.Error(1)
}

type MockProjectLister struct {
	mock.Mock
}

func (m *MockProjectLister) OpenIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type MockShotLookup struct {
	mock.Mock
}

func (m *MockShotLookup) Shot(ctx context.Context, id string) (*model.Entity, error) {
	args := m.Called(ctx, id)
	shot, _ := args.Get(0).(*model.Entity)
	return shot, args.Error(1)
}

type MockTaskTypeLister struct {
	mock.Mock
}

func (m *MockTaskTypeLister) TaskTypesForEntity(ctx context.Context, entity *model.Entity) ([]model.TaskType, error) {
	args := m.Called(ctx, entity)
	types, _ := args.Get(0).([]model.TaskType)
	return types, args.Error(1)
}

// authAs подставляет пользователя в контекст, как это делает JWT middleware
func authAs(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}
