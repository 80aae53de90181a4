package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Department struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"uniqueIndex;not null" json:"name"`
	Color string    `gorm:"not null" json:"color"`
}

func (d *Department) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}

type TaskType struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null" json:"name"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"department_id"`
	Color        string    `gorm:"not null" json:"color"`
	Priority     int       `gorm:"not null;default:1" json:"priority"`
	ForShots     bool      `gorm:"not null;default:false" json:"for_shots"`
}

func (t *TaskType) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

type TaskStatus struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null" json:"name"`
	ShortName    string    `gorm:"uniqueIndex;not null" json:"short_name"`
	Color        string    `gorm:"not null" json:"color"`
	IsReviewable bool      `gorm:"not null;default:false" json:"is_reviewable"`
}

func (s *TaskStatus) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// Task is one unit of work of a TaskType on an Entity. There is at most one
// task per (entity, task type) pair.
type Task struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name           string     `gorm:"not null"`
	ProjectID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	TaskTypeID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_task_entity_type,priority:2"`
	TaskStatusID   *uuid.UUID `gorm:"type:uuid;index"`
	EntityID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_task_entity_type,priority:1"`
	AssignerID     *uuid.UUID `gorm:"type:uuid"`
	Duration       float64    `gorm:"not null;default:0"`
	Estimation     float64    `gorm:"not null;default:0"`
	CompletionRate int        `gorm:"not null;default:0"`
	StartDate      *time.Time
	EndDate        *time.Time
	DueDate        *time.Time
	RealStartDate  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Assignees []Person `gorm:"many2many:task_assignees"`
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// HasAssignee reports whether the person is already in the assignee set.
func (t *Task) HasAssignee(personID uuid.UUID) bool {
	for _, p := range t.Assignees {
		if p.ID == personID {
			return true
		}
	}
	return false
}

// Snapshot copies the task into its serialised form. The copy shares no
// memory with the task, so later mutations do not leak into emitted events.
func (t *Task) Snapshot() TaskSnapshot {
	s := TaskSnapshot{
		ID:             t.ID,
		Name:           t.Name,
		ProjectID:      t.ProjectID,
		TaskTypeID:     t.TaskTypeID,
		TaskStatusID:   copyID(t.TaskStatusID),
		EntityID:       t.EntityID,
		AssignerID:     copyID(t.AssignerID),
		Duration:       t.Duration,
		Estimation:     t.Estimation,
		CompletionRate: t.CompletionRate,
		StartDate:      copyTime(t.StartDate),
		EndDate:        copyTime(t.EndDate),
		DueDate:        copyTime(t.DueDate),
		RealStartDate:  copyTime(t.RealStartDate),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Assignees:      make([]uuid.UUID, 0, len(t.Assignees)),
	}
	for _, p := range t.Assignees {
		s.Assignees = append(s.Assignees, p.ID)
	}
	return s
}

// TaskUpdate lists the directly editable task fields. Nil fields are left alone.
type TaskUpdate struct {
	Name           *string    `json:"name"`
	Duration       *float64   `json:"duration"`
	Estimation     *float64   `json:"estimation"`
	CompletionRate *int       `json:"completion_rate"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	DueDate        *time.Time `json:"due_date"`
}

// Apply copies the set fields onto the task.
func (u TaskUpdate) Apply(t *Task) {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Duration != nil {
		t.Duration = *u.Duration
	}
	if u.Estimation != nil {
		t.Estimation = *u.Estimation
	}
	if u.CompletionRate != nil {
		t.CompletionRate = *u.CompletionRate
	}
	if u.StartDate != nil {
		t.StartDate = copyTime(u.StartDate)
	}
	if u.EndDate != nil {
		t.EndDate = copyTime(u.EndDate)
	}
	if u.DueDate != nil {
		t.DueDate = copyTime(u.DueDate)
	}
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
