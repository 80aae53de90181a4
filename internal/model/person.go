package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Person roles
const (
	RoleManager = "manager"
	RoleUser    = "user"
)

type Person struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName      string    `gorm:"not null" json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string    `json:"-"`
	HasAvatar      bool      `gorm:"not null;default:false" json:"has_avatar"`
	Role           string    `gorm:"not null;default:user" json:"role"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Person) TableName() string {
	return "persons"
}

func (p *Person) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (p Person) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

func (p Person) IsManager() bool {
	return p.Role == RoleManager
}
