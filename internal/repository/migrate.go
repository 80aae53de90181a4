package repository

import (
	"gorm.io/gorm"

	"prodtrack/internal/model"
)

// AutoMigrate creates or updates every table the service uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Project{},
		&model.Person{},
		&model.Department{},
		&model.TaskType{},
		&model.TaskStatus{},
		&model.EntityType{},
		&model.Entity{},
		&model.Task{},
		&model.TimeSpent{},
		&model.PreviewFile{},
		&model.Comment{},
	)
}
