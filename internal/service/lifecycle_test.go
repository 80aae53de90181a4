package service_test

import (
	"testing"

	"prodtrack/internal/events"
	"prodtrack/internal/model"
	"prodtrack/internal/repository"
	"prodtrack/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	shot := env.entity(project, model.EntityTypeShot, "SH010", nil)
	layout := env.taskType("Layout")
	manager := env.person("Maria")

	created, err := env.lifecycle.Create(ctx, layout.ID.String(), shot.ID.String(), "", &manager.ID)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "main", created.Name)
	assert.Equal(t, project.ID, created.ProjectID)
	assert.Equal(t, "Todo", created.TaskStatusName)
	assert.Equal(t, "Layout", created.TaskTypeName)
	require.NotNil(t, created.AssignerID)
	assert.Equal(t, manager.ID, *created.AssignerID)

	again, err := env.lifecycle.Create(ctx, layout.ID.String(), shot.ID.String(), "other", nil)
	require.NoError(t, err)
	assert.Nil(t, again)

	tasks, err := env.lifecycle.TasksForEntityAndTaskType(ctx, shot.ID.String(), layout.ID.String())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
}

func TestCreateTask_UnknownReferences(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	shot := env.entity(project, model.EntityTypeShot, "SH010", nil)
	layout := env.taskType("Layout")

	_, err := env.lifecycle.Create(ctx, uuid.New().String(), shot.ID.String(), "", nil)
	assert.ErrorIs(t, err, repository.ErrTaskTypeNotFound)

	_, err = env.lifecycle.Create(ctx, layout.ID.String(), "bogus", "", nil)
	assert.ErrorIs(t, err, repository.ErrEntityNotFound)
}

func TestStartTask(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	shot := env.entity(project, model.EntityTypeShot, "SH010", nil)
	task := env.task(shot, env.taskType("Animation"))

	started, err := env.lifecycle.Start(ctx, task.ID.String())
	require.NoError(t, err)

	wip, err := env.statuses.Wip(ctx)
	require.NoError(t, err)
	require.NotNil(t, started.TaskStatusID)
	assert.Equal(t, wip.ID, *started.TaskStatusID)
	require.NotNil(t, started.RealStartDate)
	firstStart := *started.RealStartDate
	assert.True(t, firstStart.Equal(env.clock.current))

	startEvents := env.recorder.Named(events.TaskStart)
	require.Len(t, startEvents, 1)
	payload := startEvents[0].Payload.(events.StatusChange)
	assert.Equal(t, task.TaskStatusID, payload.TaskBefore.TaskStatusID)
	assert.Nil(t, payload.TaskBefore.RealStartDate)
	assert.Equal(t, wip.ID, *payload.TaskAfter.TaskStatusID)

	// Повторный запуск ничего не меняет и не шлет событие
	again, err := env.lifecycle.Start(ctx, task.ID.String())
	require.NoError(t, err)
	require.NotNil(t, again.RealStartDate)
	assert.True(t, firstStart.Equal(*again.RealStartDate))
	assert.Len(t, env.recorder.Named(events.TaskStart), 1)
}

func TestStartTask_KeepsRealStartDateAfterReview(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	shot := env.entity(project, model.EntityTypeShot, "SH010", nil)
	task := env.task(shot, env.taskType("Animation"))
	artist := env.person("Ana")

	first, err := env.lifecycle.Start(ctx, task.ID.String())
	require.NoError(t, err)
	_, err = env.lifecycle.ToReview(ctx, task.ID.String(), artist.ID.String(), "", "")
	require.NoError(t, err)

	restarted, err := env.lifecycle.Start(ctx, task.ID.String())
	require.NoError(t, err)
	assert.True(t, first.RealStartDate.Equal(*restarted.RealStartDate))
	assert.Len(t, env.recorder.Named(events.TaskStart), 2)
}

func TestStartTask_Unknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.lifecycle.Start(ctx, uuid.New().String())
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Empty(t, env.recorder.Events())
}

func TestToReview(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	shot := env.entity(project, model.EntityTypeShot, "SH010", nil)
	task := env.task(shot, env.taskType("Animation"))
	artist := env.person("Ana")

	review, err := env.lifecycle.ToReview(ctx, task.ID.String(), artist.ID.String(), "ready for review", "/previews/sh010_v2.mp4")
	require.NoError(t, err)

	pending, err := env.statuses.ToReview(ctx)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, *review.TaskStatusID)
	assert.Equal(t, project.Name, review.Project.Name)
	assert.Equal(t, shot.Name, review.Entity.Name)
	assert.Equal(t, model.EntityTypeShot, review.EntityType.Name)
	assert.Equal(t, artist.ID, review.Person.ID)
	assert.Equal(t, "ready for review", review.Comment)
	assert.Equal(t, "/previews/sh010_v2.mp4", review.PreviewPath)

	// Каждый вызов шлет событие
	_, err = env.lifecycle.ToReview(ctx, task.ID.String(), artist.ID.String(), "again", "")
	require.NoError(t, err)
	reviewEvents := env.recorder.Named(events.TaskToReview)
	require.Len(t, reviewEvents, 2)
	payload := reviewEvents[1].Payload.(events.ReviewRequest)
	assert.Equal(t, pending.ID, *payload.TaskBefore.TaskStatusID)
	assert.Equal(t, "again", payload.TaskAfter.Comment)
}

func TestToReview_UnknownPerson(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	shot := env.entity(project, model.EntityTypeShot, "SH010", nil)
	task := env.task(shot, env.taskType("Animation"))

	_, err := env.lifecycle.ToReview(ctx, task.ID.String(), uuid.New().String(), "", "")
	assert.ErrorIs(t, err, repository.ErrPersonNotFound)
	assert.Empty(t, env.recorder.Named(events.TaskToReview))

	current, err := env.lifecycle.Get(ctx, task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, task.TaskStatusID, current.TaskStatusID)
}

func TestAssign(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	shot := env.entity(project, model.EntityTypeShot, "SH010", nil)
	task := env.task(shot, env.taskType("Animation"))
	ana := env.person("Ana")

	assigned, err := env.lifecycle.Assign(ctx, task.ID.String(), ana.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ana.ID}, assigned.Assignees)

	// Повторное назначение - без изменений и без события
	again, err := env.lifecycle.Assign(ctx, task.ID.String(), ana.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ana.ID}, again.Assignees)

	assignEvents := env.recorder.Named(events.TaskAssign)
	require.Len(t, assignEvents, 1)
	payload := assignEvents[0].Payload.(events.Assignment)
	assert.Equal(t, ana.ID, payload.Person.ID)
	assert.Equal(t, task.ID, payload.Task.ID)

	_, err = env.lifecycle.Assign(ctx, task.ID.String(), uuid.New().String())
	assert.ErrorIs(t, err, repository.ErrPersonNotFound)
}

func TestClearAssignation(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	shot := env.entity(project, model.EntityTypeShot, "SH010", nil)
	task := env.task(shot, env.taskType("Animation"))
	ana, ben := env.person("Ana"), env.person("Ben")

	_, err := env.lifecycle.Assign(ctx, task.ID.String(), ana.ID.String())
	require.NoError(t, err)
	_, err = env.lifecycle.Assign(ctx, task.ID.String(), ben.ID.String())
	require.NoError(t, err)

	cleared, err := env.lifecycle.ClearAssignation(ctx, task.ID.String())
	require.NoError(t, err)
	assert.Empty(t, cleared.Assignees)

	unassigned := env.recorder.Named(events.TaskUnassign)
	require.Len(t, unassigned, 2)
	people := []uuid.UUID{
		unassigned[0].Payload.(events.Assignment).Person.ID,
		unassigned[1].Payload.(events.Assignment).Person.ID,
	}
	assert.ElementsMatch(t, []uuid.UUID{ana.ID, ben.ID}, people)

	current, err := env.lifecycle.Get(ctx, task.ID.String())
	require.NoError(t, err)
	assert.Empty(t, current.Assignees)

	// Пустой набор: событий больше нет
	_, err = env.lifecycle.ClearAssignation(ctx, task.ID.String())
	require.NoError(t, err)
	assert.Len(t, env.recorder.Named(events.TaskUnassign), 2)
}

func TestUpdateTask(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	shot := env.entity(project, model.EntityTypeShot, "SH010", nil)
	task := env.task(shot, env.taskType("Animation"))

	estimation := 4.5
	name := "blocking"
	updated, err := env.lifecycle.Update(ctx, task.ID.String(), model.TaskUpdate{
		Name:       &name,
		Estimation: &estimation,
	})
	require.NoError(t, err)
	assert.Equal(t, "blocking", updated.Name)
	assert.Equal(t, 4.5, updated.Estimation)
	assert.Equal(t, 0, updated.CompletionRate)

	current, err := env.lifecycle.Get(ctx, task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "blocking", current.Name)
	assert.Empty(t, env.recorder.Events())
}

func TestRemoveTask_Cascades(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	shot := env.entity(project, model.EntityTypeShot, "SH010", nil)
	task := env.task(shot, env.taskType("Animation"))
	ana := env.person("Ana")

	_, err := env.lifecycle.Assign(ctx, task.ID.String(), ana.ID.String())
	require.NoError(t, err)
	_, err = env.comments.Add(ctx, task.ID.String(), task.TaskStatusID.String(), ana.ID.String(), "first pass")
	require.NoError(t, err)
	_, err = env.ledger.Record(ctx, task.ID.String(), ana.ID.String(), "2024-03-01", 3, service.Replace)
	require.NoError(t, err)

	// Превью удаляемой задачи служит превью шота, на котором есть вторая задача
	preview := &model.PreviewFile{Name: "sh010_anim", Revision: 1, TaskID: task.ID}
	require.NoError(t, env.previews.Create(ctx, preview))
	require.NoError(t, env.db.Model(&model.Entity{}).Where("id = ?", shot.ID).
		Update("preview_file_id", preview.ID).Error)
	ben := env.person("Ben")
	lighting := env.task(shot, env.taskType("Lighting"))
	_, err = env.lifecycle.Assign(ctx, lighting.ID.String(), ben.ID.String())
	require.NoError(t, err)

	removed, err := env.lifecycle.Remove(ctx, task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, task.ID, removed.ID)

	assert.EqualValues(t, 0, env.count(&model.Task{}, "id = ?", task.ID))
	assert.EqualValues(t, 0, env.count(&model.Comment{}, "object_id = ?", task.ID))
	assert.EqualValues(t, 0, env.count(&model.TimeSpent{}, "task_id = ?", task.ID))
	assert.EqualValues(t, 0, env.count(&model.PreviewFile{}, "task_id = ?", task.ID))

	reloaded, err := env.entities.GetByID(ctx, shot.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.PreviewFileID)

	remaining, err := env.personTasks.TasksForPerson(ctx, ben.ID.String(), []uuid.UUID{project.ID})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, lighting.ID, remaining[0].ID)
	assert.Equal(t, "", remaining[0].EntityPreviewFileID)

	_, err = env.lifecycle.Get(ctx, task.ID.String())
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)

	_, err = env.lifecycle.Remove(ctx, task.ID.String())
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
}

func TestTasksForEntityKinds(t *testing.T) {
	env := newTestEnv(t)
	project := env.project("Agent 327")
	sequence := env.entity(project, model.EntityTypeSequence, "SQ01", nil)
	shot := env.entity(project, model.EntityTypeShot, "SH010", sequence)
	asset := env.entity(project, "Character", "Agent", nil)
	anim := env.taskType("Animation")
	env.task(shot, anim)
	env.task(asset, env.taskType("Modeling"))

	shotTasks, err := env.lifecycle.TasksForShot(ctx, shot.ID.String())
	require.NoError(t, err)
	require.Len(t, shotTasks, 1)
	assert.Equal(t, "Animation", shotTasks[0].TaskTypeName)
	assert.Equal(t, "SH010", shotTasks[0].EntityName)
	assert.Equal(t, model.EntityTypeShot, shotTasks[0].EntityTypeName)
	assert.Equal(t, "Todo", shotTasks[0].TaskStatusName)
	assert.Equal(t, "Agent 327", shotTasks[0].ProjectName)

	assetTasks, err := env.lifecycle.TasksForAsset(ctx, asset.ID.String())
	require.NoError(t, err)
	require.Len(t, assetTasks, 1)
	assert.Equal(t, "Modeling", assetTasks[0].TaskTypeName)

	sequenceTasks, err := env.lifecycle.TasksForSequence(ctx, sequence.ID.String())
	require.NoError(t, err)
	assert.Empty(t, sequenceTasks)

	_, err = env.lifecycle.TasksForShot(ctx, asset.ID.String())
	assert.ErrorIs(t, err, repository.ErrShotNotFound)
	_, err = env.lifecycle.TasksForAsset(ctx, shot.ID.String())
	assert.ErrorIs(t, err, repository.ErrAssetNotFound)
	_, err = env.lifecycle.TasksForScene(ctx, shot.ID.String())
	assert.ErrorIs(t, err, repository.ErrSceneNotFound)
}
