package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jagokomputer/jagokursus/internal/models"
)

// newTestDB opens an isolated in-memory database migrated to the current
// schema. cache=shared keeps every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.LessonProgress{},
		&models.ActivityLog{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
	}
	require.NoError(t, CreateUser(db, user, "rahasia123"))
	return user
}

// createTestCourse inserts a course with n lessons ordered 1..n.
func createTestCourse(t *testing.T, db *gorm.DB, title string, price, discount, lessons int) *models.Course {
	t.Helper()
	course := &models.Course{
		Title:           title,
		Category:        models.CategoryWebDev,
		InstructorName:  "Budi Santoso",
		Price:           price,
		DiscountPercent: discount,
	}
	require.NoError(t, CreateCourse(db, course))
	for i := 1; i <= lessons; i++ {
		require.NoError(t, CreateLesson(db, &models.Lesson{
			CourseID: course.ID,
			Title:    fmt.Sprintf("Pelajaran %d", i),
			Content:  "<p>materi</p>",
			Order:    i,
		}))
	}
	return course
}

// confirmEnrollment walks a user through proof submission and admin
// confirmation for a paid course, or free enrollment otherwise.
func confirmEnrollment(t *testing.T, db *gorm.DB, user *models.User, course *models.Course) *models.Enrollment {
	t.Helper()
	if course.IsFree() {
		e, err := EnrollFree(db, user.ID, course)
		require.NoError(t, err)
		return e
	}
	e, err := SubmitPaymentProof(db, user.ID, course, "transfer", 1, "proof.png")
	require.NoError(t, err)
	e, err = Confirm(db, e.ID)
	require.NoError(t, err)
	return e
}
