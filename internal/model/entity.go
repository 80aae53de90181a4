package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Canonical entity type names. Any other type name denotes an asset type.
const (
	EntityTypeShot     = "Shot"
	EntityTypeScene    = "Scene"
	EntityTypeSequence = "Sequence"
	EntityTypeEpisode  = "Episode"
)

type EntityType struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`
}

func (t *EntityType) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// IsAsset reports whether the type is not one of the shot hierarchy types.
func (t EntityType) IsAsset() bool {
	switch t.Name {
	case EntityTypeShot, EntityTypeScene, EntityTypeSequence, EntityTypeEpisode:
		return false
	}
	return true
}

// Entity is a production item. Shots and scenes hang under a sequence,
// sequences under an episode, through ParentID.
type Entity struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string            `gorm:"not null" json:"name"`
	Description   string            `json:"description"`
	ProjectID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"project_id"`
	EntityTypeID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"entity_type_id"`
	ParentID      *uuid.UUID        `gorm:"type:uuid;index" json:"parent_id"`
	PreviewFileID *uuid.UUID        `gorm:"type:uuid" json:"preview_file_id"`
	Data          datatypes.JSONMap `json:"data"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *Entity) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
