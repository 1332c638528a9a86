package database

import (
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/jagokomputer/jagokursus/internal/models"
)

// Seed bootstraps the first admin account and a sample free course so a
// fresh install is usable. Safe to run repeatedly.
func Seed(db *gorm.DB) error {
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
		log.Println("warning: ADMIN_PASSWORD not set, seeding default admin credentials")
	}

	var admin models.User
	err := db.Where(models.User{Username: "admin"}).First(&admin).Error
	if err == gorm.ErrRecordNotFound {
		admin = models.User{
			Username: "admin",
			Email:    "admin@jagokomputer.id",
			IsAdmin:  true,
			FullName: "Administrator",
		}
		if err := admin.SetPassword(adminPassword); err != nil {
			return err
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	sample := models.Course{
		Title:          "Pengenalan Komputer",
		Description:    "Dasar-dasar penggunaan komputer untuk pemula.",
		Category:       models.CategoryUmum,
		InstructorName: "Tim Jago Komputer",
		Rating:         4.5,
		Price:          0,
	}
	return db.Where(models.Course{Title: sample.Title}).FirstOrCreate(&sample).Error
}
