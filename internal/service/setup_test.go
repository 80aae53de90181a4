package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"prodtrack/internal/events"
	"prodtrack/internal/model"
	"prodtrack/internal/repository"
	"prodtrack/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ctx = context.Background()

// clock hands out strictly increasing timestamps, one minute apart.
type clock struct {
	current time.Time
}

func (c *clock) Now() time.Time {
	c.current = c.current.Add(time.Minute)
	return c.current
}

type testEnv struct {
	t        *testing.T
	db       *gorm.DB
	clock    *clock
	recorder *events.Recorder

	persons  *repository.PersonRepository
	projects *repository.ProjectRepository
	entities *repository.EntityRepository
	previews *repository.PreviewFileRepository

	statuses    *service.StatusRegistry
	hierarchy   *service.EntityHierarchy
	catalog     *service.Catalog
	lifecycle   *service.TaskLifecycle
	ledger      *service.TimeLedger
	comments    *service.CommentThread
	personTasks *service.PersonTaskAggregator
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Одно соединение: каждая новая in-memory база была бы пустой
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	env := &testEnv{
		t:        t,
		db:       db,
		clock:    &clock{current: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		recorder: events.NewRecorder(),
		persons:  repository.NewPersonRepository(db),
		projects: repository.NewProjectRepository(db),
		entities: repository.NewEntityRepository(db),
		previews: repository.NewPreviewFileRepository(db),
	}

	taskRepo := repository.NewTaskRepository(db)
	env.statuses = service.NewStatusRegistry(repository.NewStatusRepository(db), service.StatusNames{
		Done:     "Done",
		Wip:      "WIP",
		ToReview: "To review",
	})
	env.hierarchy = service.NewEntityHierarchy(env.entities)
	env.catalog = service.NewCatalog(repository.NewCatalogRepository(db), taskRepo)
	env.lifecycle = service.NewTaskLifecycle(taskRepo, env.persons, env.projects, env.statuses,
		env.catalog, env.hierarchy, env.recorder, service.WithClock(env.clock.Now))
	env.ledger = service.NewTimeLedger(repository.NewTimeSpentRepository(db), taskRepo, env.persons)
	env.comments = service.NewCommentThread(repository.NewCommentRepository(db), env.previews, taskRepo,
		env.persons, env.statuses, service.WithClock(env.clock.Now))
	env.personTasks = service.NewPersonTaskAggregator(db, env.persons, env.statuses)
	return env
}

func (e *testEnv) project(name string) *model.Project {
	e.t.Helper()
	p := &model.Project{Name: name}
	require.NoError(e.t, e.projects.Create(ctx, p))
	return p
}

func (e *testEnv) person(firstName string) *model.Person {
	e.t.Helper()
	p := &model.Person{
		FirstName: firstName,
		LastName:  "Tester",
		Email:     strings.ToLower(firstName) + "@example.com",
		Role:      model.RoleUser,
		Active:    true,
	}
	require.NoError(e.t, e.persons.Create(ctx, p))
	return p
}

func (e *testEnv) entityType(name string) *model.EntityType {
	e.t.Helper()
	et, err := e.entities.FindTypeByName(ctx, name)
	require.NoError(e.t, err)
	if et != nil {
		return et
	}
	et = &model.EntityType{Name: name}
	require.NoError(e.t, e.entities.CreateType(ctx, et))
	return et
}

func (e *testEnv) entity(project *model.Project, typeName, name string, parent *model.Entity) *model.Entity {
	e.t.Helper()
	ent := &model.Entity{
		Name:         name,
		ProjectID:    project.ID,
		EntityTypeID: e.entityType(typeName).ID,
	}
	if parent != nil {
		parentID := parent.ID
		ent.ParentID = &parentID
	}
	require.NoError(e.t, e.entities.Create(ctx, ent))
	return ent
}

func (e *testEnv) taskType(name string) *model.TaskType {
	e.t.Helper()
	dept, err := e.catalog.GetOrCreateDepartment(ctx, "Animation")
	require.NoError(e.t, err)
	tt, err := e.catalog.GetOrCreateTaskType(ctx, dept, name, "", 1, true)
	require.NoError(e.t, err)
	return tt
}

func (e *testEnv) task(entity *model.Entity, taskType *model.TaskType) *model.CreatedTask {
	e.t.Helper()
	created, err := e.lifecycle.Create(ctx, taskType.ID.String(), entity.ID.String(), "", nil)
	require.NoError(e.t, err)
	require.NotNil(e.t, created)
	return created
}

func (e *testEnv) setStatus(taskID uuid.UUID, status *model.TaskStatus) {
	e.t.Helper()
	require.NoError(e.t, e.db.Model(&model.Task{}).Where("id = ?", taskID).
		Update("task_status_id", status.ID).Error)
}

func (e *testEnv) count(table any, query string, args ...any) int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.db.Model(table).Where(query, args...).Count(&n).Error)
	return n
}
