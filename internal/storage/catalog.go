package storage

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jagokomputer/jagokursus/internal/models"
)

// AllCourses lists the whole catalog, newest first.
func AllCourses(db *gorm.DB) ([]models.Course, error) {
	var courses []models.Course
	err := db.Order("created_at desc").Find(&courses).Error
	return courses, err
}

// CoursesByCategory filters the catalog by one of the fixed categories.
func CoursesByCategory(db *gorm.DB, category string) ([]models.Course, error) {
	var courses []models.Course
	err := db.Where("category = ?", category).Order("created_at desc").Find(&courses).Error
	return courses, err
}

// SearchCourses matches course titles against q, optionally narrowed to a
// category. Both matches are case-insensitive substring searches.
func SearchCourses(db *gorm.DB, q, category string) ([]models.Course, error) {
	tx := db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	if category != "" {
		tx = tx.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(category)+"%")
	}
	var courses []models.Course
	err := tx.Order("created_at desc").Find(&courses).Error
	return courses, err
}

// SearchLessons matches lesson titles and content within one course.
func SearchLessons(db *gorm.DB, courseID uint, q string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	pat := "%" + strings.ToLower(q) + "%"
	err := db.Where("course_id = ? AND (LOWER(title) LIKE ? OR LOWER(content) LIKE ?)", courseID, pat, pat).
		Order("\"order\" asc, id asc").
		Find(&lessons).Error
	return lessons, err
}

func checkCourse(course *models.Course) error {
	if err := checkStruct(course); err != nil {
		return err
	}
	if !models.ValidCategory(course.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, course.Category)
	}
	return nil
}

// CreateCourse validates and inserts a course. Out-of-range discount or
// rating and unknown categories are rejected, not clamped.
func CreateCourse(db *gorm.DB, course *models.Course) error {
	if err := checkCourse(course); err != nil {
		return err
	}
	return db.Create(course).Error
}

// UpdateCourse validates and saves an edited course.
func UpdateCourse(db *gorm.DB, course *models.Course) error {
	if err := checkCourse(course); err != nil {
		return err
	}
	return db.Save(course).Error
}

// DeleteCourse removes a course with its lessons, enrollments and progress
// rows in one transaction.
func DeleteCourse(db *gorm.DB, courseID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("lesson_id IN (?)",
			tx.Model(&models.Lesson{}).Select("id").Where("course_id = ?", courseID),
		).Delete(&models.LessonProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
}

// LessonsFor lists a course's lessons in display order.
func LessonsFor(db *gorm.DB, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := db.Where("course_id = ?", courseID).Order("\"order\" asc, id asc").Find(&lessons).Error
	return lessons, err
}

// TotalLessons counts a course's lessons.
func TotalLessons(db *gorm.DB, courseID uint) (int64, error) {
	var total int64
	err := db.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&total).Error
	return total, err
}

// CreateLesson validates and inserts a lesson into a course.
func CreateLesson(db *gorm.DB, lesson *models.Lesson) error {
	if err := checkStruct(lesson); err != nil {
		return err
	}
	return db.Create(lesson).Error
}

// UpdateLesson validates and saves an edited lesson.
func UpdateLesson(db *gorm.DB, lesson *models.Lesson) error {
	if err := checkStruct(lesson); err != nil {
		return err
	}
	return db.Save(lesson).Error
}

// DeleteLesson removes a lesson and its progress rows atomically. Progress
// goes first: an orphaned progress row would silently skew every completion
// percentage for the course.
func DeleteLesson(db *gorm.DB, lessonID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var lesson models.Lesson
		if err := tx.First(&lesson, lessonID).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("lesson_id = ?", lessonID).Delete(&models.LessonProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lesson).Error
	})
}

// NextLesson returns the lesson in the same course with the smallest order
// strictly greater than the current one, or ErrNotFound after the last
// lesson. Ties on order are broken by ID so duplicate orders stay walkable.
func NextLesson(db *gorm.DB, lesson *models.Lesson) (*models.Lesson, error) {
	var next models.Lesson
	err := db.Where("course_id = ? AND (\"order\" > ? OR (\"order\" = ? AND id > ?))",
		lesson.CourseID, lesson.Order, lesson.Order, lesson.ID).
		Order("\"order\" asc, id asc").
		First(&next).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &next, nil
}

// PrevLesson is the mirror of NextLesson.
func PrevLesson(db *gorm.DB, lesson *models.Lesson) (*models.Lesson, error) {
	var prev models.Lesson
	err := db.Where("course_id = ? AND (\"order\" < ? OR (\"order\" = ? AND id < ?))",
		lesson.CourseID, lesson.Order, lesson.Order, lesson.ID).
		Order("\"order\" desc, id desc").
		First(&prev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &prev, nil
}
