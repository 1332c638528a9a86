package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jagokomputer/jagokursus/internal/models"
)

// MarkLessonComplete flags a lesson done for userID. Only users with a
// confirmed enrollment in the lesson's course may complete it. The returned
// bool reports whether the lesson was already done, so the handler can word
// its flash message; repeating the call never changes state.
func MarkLessonComplete(db *gorm.DB, userID uint, lesson *models.Lesson) (alreadyDone bool, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		enrollment, err := EnrollmentFor(tx, userID, lesson.CourseID)
		if errors.Is(err, ErrNotFound) {
			return ErrNotEnrolled
		}
		if err != nil {
			return err
		}
		if enrollment.State() != models.StateConfirmed {
			return ErrNotEnrolled
		}

		var progress models.LessonProgress
		err = tx.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&progress).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			progress = models.LessonProgress{UserID: userID, LessonID: lesson.ID, IsCompleted: true}
			if err := tx.Create(&progress).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// Concurrent completion of the same lesson; it is done
					// either way.
					alreadyDone = true
					return nil
				}
				return err
			}
			return nil
		case err != nil:
			return err
		case progress.IsCompleted:
			alreadyDone = true
			return nil
		default:
			return tx.Model(&progress).Update("is_completed", true).Error
		}
	})
	return alreadyDone, err
}

// CourseProgressPercent recomputes the user's completion share for a course:
// floor(100 * done / total), 0 for a course with no lessons. Never cached;
// lessons and completions move independently.
func CourseProgressPercent(db *gorm.DB, userID, courseID uint) (int, error) {
	var total int64
	if err := db.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	var done int64
	err := db.Model(&models.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lessons.course_id = ? AND lesson_progresses.user_id = ? AND lesson_progresses.is_completed = ?", courseID, userID, true).
		Count(&done).Error
	if err != nil {
		return 0, err
	}
	return int(done * 100 / total), nil
}

// CompletedLessonMap returns lessonID -> done for every completed lesson of
// the course, for ticking off the syllabus list in one query.
func CompletedLessonMap(db *gorm.DB, userID, courseID uint) (map[uint]bool, error) {
	var progresses []models.LessonProgress
	err := db.Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lessons.course_id = ? AND lesson_progresses.user_id = ? AND lesson_progresses.is_completed = ?", courseID, userID, true).
		Find(&progresses).Error
	if err != nil {
		return nil, err
	}
	done := make(map[uint]bool, len(progresses))
	for _, p := range progresses {
		done[p.LessonID] = true
	}
	return done, nil
}
