package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentTarget names the kind of object a comment is attached to.
type CommentTarget string

const (
	CommentTargetTask CommentTarget = "Task"
)

// Valid reports whether comments can be attached to this kind of object.
func (t CommentTarget) Valid() bool {
	switch t {
	case CommentTargetTask:
		return true
	}
	return false
}

func (t CommentTarget) String() string {
	return string(t)
}

// ParseCommentTarget returns the target kind for name. An empty name means Task.
func ParseCommentTarget(name string) (CommentTarget, error) {
	if name == "" {
		return CommentTargetTask, nil
	}
	t := CommentTarget(name)
	if !t.Valid() {
		return "", fmt.Errorf("unsupported comment target %q", name)
	}
	return t, nil
}

type PreviewFile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Revision  int        `gorm:"not null;default:1" json:"revision"`
	IsMovie   bool       `gorm:"not null;default:false" json:"is_movie"`
	TaskID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"task_id"`
	PersonID  *uuid.UUID `gorm:"type:uuid" json:"person_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (p *PreviewFile) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Comment is a remark posted on an object. TaskStatusID records the status
// the task had when the comment was posted; it is never updated afterwards.
type Comment struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ObjectID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"object_id"`
	ObjectType    CommentTarget `gorm:"type:varchar(80);not null" json:"object_type"`
	TaskStatusID  uuid.UUID     `gorm:"type:uuid;not null" json:"task_status_id"`
	PersonID      uuid.UUID     `gorm:"type:uuid;not null" json:"person_id"`
	PreviewFileID *uuid.UUID    `gorm:"type:uuid" json:"preview_file_id"`
	Text          string        `json:"text"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
