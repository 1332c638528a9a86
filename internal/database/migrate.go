package database

import (
	"gorm.io/gorm"

	"github.com/jagokomputer/jagokursus/internal/models"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.LessonProgress{},
		&models.ActivityLog{},
	)
}
