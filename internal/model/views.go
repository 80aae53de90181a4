package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskSnapshot is the serialised form of a task carried by events and
// returned by lifecycle operations.
type TaskSnapshot struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	ProjectID      uuid.UUID   `json:"project_id"`
	TaskTypeID     uuid.UUID   `json:"task_type_id"`
	TaskStatusID   *uuid.UUID  `json:"task_status_id"`
	EntityID       uuid.UUID   `json:"entity_id"`
	AssignerID     *uuid.UUID  `json:"assigner_id"`
	Assignees      []uuid.UUID `json:"assignees"`
	Duration       float64     `json:"duration"`
	Estimation     float64     `json:"estimation"`
	CompletionRate int         `json:"completion_rate"`
	StartDate      *time.Time  `json:"start_date"`
	EndDate        *time.Time  `json:"end_date"`
	DueDate        *time.Time  `json:"due_date"`
	RealStartDate  *time.Time  `json:"real_start_date"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ReviewSnapshot is the task state sent along with a review request.
type ReviewSnapshot struct {
	TaskSnapshot
	Project     Project    `json:"project"`
	Entity      Entity     `json:"entity"`
	EntityType  EntityType `json:"entity_type"`
	Person      Person     `json:"person"`
	Comment     string     `json:"comment"`
	PreviewPath string     `json:"preview_path"`
}

// CreatedTask is a freshly created task with its status and type details.
type CreatedTask struct {
	TaskSnapshot
	TaskStatusName      string `json:"task_status_name"`
	TaskStatusShortName string `json:"task_status_short_name"`
	TaskStatusColor     string `json:"task_status_color"`
	TaskTypeName        string `json:"task_type_name"`
	TaskTypeColor       string `json:"task_type_color"`
	TaskTypePriority    int    `json:"task_type_priority"`
}

// EntityTaskView is a task of one entity joined with its display names.
type EntityTaskView struct {
	TaskSnapshot
	ProjectName    string `json:"project_name"`
	TaskTypeName   string `json:"task_type_name"`
	TaskStatusName string `json:"task_status_name"`
	EntityTypeName string `json:"entity_type_name"`
	EntityName     string `json:"entity_name"`
}

// LastComment summarises the most recent comment of a task. The zero value
// marshals as an empty object.
type LastComment struct {
	Text     string
	Date     time.Time
	PersonID uuid.UUID
}

func (c LastComment) IsZero() bool {
	return c.PersonID == uuid.Nil && c.Date.IsZero() && c.Text == ""
}

func (c LastComment) MarshalJSON() ([]byte, error) {
	if c.IsZero() {
		return []byte("{}"), nil
	}
	return json.Marshal(struct {
		Text     string    `json:"text"`
		Date     time.Time `json:"date"`
		PersonID uuid.UUID `json:"person_id"`
	}{c.Text, c.Date, c.PersonID})
}

// TaskView is an open task of a person, enriched for a "my tasks" listing.
type TaskView struct {
	TaskSnapshot
	ProjectName         string      `json:"project_name"`
	EntityName          string      `json:"entity_name"`
	EntityPreviewFileID string      `json:"entity_preview_file_id"`
	EntityTypeName      string      `json:"entity_type_name"`
	SequenceName        *string     `json:"sequence_name"`
	EpisodeName         *string     `json:"episode_name"`
	TaskTypeName        string      `json:"task_type_name"`
	TaskTypeColor       string      `json:"task_type_color"`
	TaskStatusName      string      `json:"task_status_name"`
	TaskStatusColor     string      `json:"task_status_color"`
	TaskStatusShortName string      `json:"task_status_short_name"`
	LastComment         LastComment `json:"last_comment"`
}

type PersonSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	HasAvatar bool      `json:"has_avatar"`
}

type StatusSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ShortName    string    `json:"short_name"`
	Color        string    `json:"color"`
	IsReviewable bool      `json:"is_reviewable"`
}

type PreviewSummary struct {
	ID       uuid.UUID `json:"id"`
	Revision int       `json:"revision"`
	IsMovie  bool      `json:"is_movie"`
}

// CommentView is a comment with the author and the status it was posted under.
type CommentView struct {
	Comment
	Person     PersonSummary   `json:"person"`
	TaskStatus StatusSummary   `json:"task_status"`
	Preview    *PreviewSummary `json:"preview,omitempty"`
}
