package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jagokomputer/jagokursus/internal/models"
)

// EnrollFree registers userID in a free course, landing directly in the
// confirmed state. Paid courses must go through SubmitPaymentProof instead;
// calling this for one is a caller bug.
func EnrollFree(db *gorm.DB, userID uint, course *models.Course) (*models.Enrollment, error) {
	if !course.IsFree() {
		return nil, ErrNotYetPaid
	}

	enrollment := models.Enrollment{
		UserID:      userID,
		CourseID:    course.ID,
		IsPaid:      true,
		IsConfirmed: true,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Enrollment
		err := tx.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&existing).Error
		if err == nil {
			return ErrAlreadyEnrolled
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			// A concurrent enroll for the same pair slipped in between the
			// check and the insert; same outcome as the precheck.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyEnrolled
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// SubmitPaymentProof records a bank-transfer claim for a paid course. It
// creates the enrollment if absent, otherwise overwrites the previous
// submission; either way the row ends up paid-pending, waiting for admin
// review. Resubmitting against a confirmed enrollment deliberately drops the
// confirmation: any new proof means the old verification no longer stands.
func SubmitPaymentProof(db *gorm.DB, userID uint, course *models.Course, method string, uniqueCode int, proofRef string) (*models.Enrollment, error) {
	if method == "" || proofRef == "" || uniqueCode < 0 {
		return nil, ErrInvalidProof
	}

	var enrollment models.Enrollment
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&enrollment).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			enrollment = models.Enrollment{
				UserID:         userID,
				CourseID:       course.ID,
				IsPaid:         true,
				IsConfirmed:    false,
				PaymentMethod:  method,
				ProofOfPayment: proofRef,
				UniqueCode:     uniqueCode,
			}
			if err := tx.Create(&enrollment).Error; err == nil {
				return nil
			} else if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			// Lost the insert race to a concurrent submission; fall through
			// and overwrite it instead. Last writer wins.
			if err := tx.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&enrollment).Error; err != nil {
				return err
			}
			fallthrough
		case err == nil:
			enrollment.IsPaid = true
			enrollment.IsConfirmed = false
			enrollment.PaymentMethod = method
			enrollment.ProofOfPayment = proofRef
			enrollment.UniqueCode = uniqueCode
			return tx.Model(&enrollment).Select("is_paid", "is_confirmed", "payment_method", "proof_of_payment", "unique_code").Updates(&enrollment).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Confirm moves a paid-pending enrollment to confirmed. Confirming an
// already confirmed enrollment is a no-op; confirming one with no submitted
// payment fails with ErrNotYetPaid.
func Confirm(db *gorm.DB, enrollmentID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").Preload("Course").First(&enrollment, enrollmentID).Error; err != nil {
			return translate(err)
		}
		if !enrollment.IsPaid {
			return ErrNotYetPaid
		}
		if enrollment.IsConfirmed {
			return nil
		}
		enrollment.IsConfirmed = true
		return tx.Model(&enrollment).Update("is_confirmed", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// AmountDue is the transfer amount the student is asked to wire: final price
// plus the reconciliation surcharge. Display-only, never stored.
func AmountDue(course *models.Course, uniqueCode int) int {
	return course.FinalPrice() + uniqueCode
}

// EnrollmentFor returns the user's enrollment in a course, or ErrNotFound.
func EnrollmentFor(db *gorm.DB, userID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &enrollment, nil
}

// GetEnrollment loads one enrollment with its user and course.
func GetEnrollment(db *gorm.DB, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := db.Preload("User").Preload("Course").First(&enrollment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &enrollment, nil
}

// EnrollmentsFor lists all of a user's enrollments with their courses, newest
// first. Used by the dashboard.
func EnrollmentsFor(db *gorm.DB, userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := db.Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&enrollments).Error
	return enrollments, err
}

// PendingEnrollments lists paid but unconfirmed enrollments for the admin
// verification queue.
func PendingEnrollments(db *gorm.DB) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := db.Preload("User").Preload("Course").
		Where("is_paid = ? AND is_confirmed = ?", true, false).
		Order("created_at asc").
		Find(&enrollments).Error
	return enrollments, err
}

// AllEnrollments lists every enrollment with user and course preloaded.
func AllEnrollments(db *gorm.DB) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := db.Preload("User").Preload("Course").
		Order("created_at desc").
		Find(&enrollments).Error
	return enrollments, err
}
