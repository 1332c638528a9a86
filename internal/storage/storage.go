package storage

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/jagokomputer/jagokursus/internal/models"
)

var validate = validator.New()

// checkStruct runs validator tags and folds failures into ErrInvalidInput so
// handlers can treat every rejected write the same way.
func checkStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrInvalidInput, verrs.Error())
		}
		return err
	}
	return nil
}

// translate maps gorm sentinel errors onto ours.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	default:
		return err
	}
}

// GetCourse loads a course without its lessons.
func GetCourse(db *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	if err := db.First(&course, id).Error; err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

// GetLesson loads one lesson.
func GetLesson(db *gorm.DB, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := db.First(&lesson, id).Error; err != nil {
		return nil, translate(err)
	}
	return &lesson, nil
}

// GetUser loads one user.
func GetUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
