package repository_test

import (
	"context"
	"testing"

	"prodtrack/internal/model"
	"prodtrack/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// Act
	task, err := taskRepo.GetByID(context.Background(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Mutate_LocksRow(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)
	taskID, personID := uuid.New(), uuid.New()

	// Задача читается с блокировкой строки, без изменений ничего не пишется
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(taskID.String(), "main"))
	mock.ExpectQuery(`SELECT .* FROM "task_assignees"`).
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "person_id"}).AddRow(taskID.String(), personID.String()))
	mock.ExpectQuery(`SELECT .* FROM "persons"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name"}).AddRow(personID.String(), "Jane"))
	mock.ExpectCommit()

	// Act
	task, err := taskRepo.Mutate(context.Background(), taskID, func(task *model.Task) (bool, error) {
		return false, nil
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "main", task.Name)
	assert.True(t, task.HasAssignee(personID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Mutate_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	called := false

	// Act
	task, err := taskRepo.Mutate(context.Background(), uuid.New(), func(task *model.Task) (bool, error) {
		called = true
		return true, nil
	})

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}
