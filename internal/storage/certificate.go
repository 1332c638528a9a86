package storage

import (
	"gorm.io/gorm"

	"github.com/jagokomputer/jagokursus/internal/models"
)

// completionDateLayout matches the wording printed on the certificate.
const completionDateLayout = "2 January 2006"

// IssueCertificate derives the certificate for a confirmed, fully completed
// enrollment. It stores nothing; the same enrollment always yields the same
// certificate.
func IssueCertificate(db *gorm.DB, enrollmentID uint) (*models.Certificate, error) {
	enrollment, err := GetEnrollment(db, enrollmentID)
	if err != nil {
		return nil, err
	}
	return certificateFor(db, enrollment)
}

func certificateFor(db *gorm.DB, enrollment *models.Enrollment) (*models.Certificate, error) {
	if !enrollment.IsConfirmed {
		return nil, ErrNotEligible
	}
	percent, err := CourseProgressPercent(db, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	if percent != 100 {
		return nil, ErrNotEligible
	}

	return &models.Certificate{
		FullName:       enrollment.User.DisplayName(),
		CourseTitle:    enrollment.Course.Title,
		CompletionDate: enrollment.CreatedAt.Format(completionDateLayout),
		CertificateID:  models.CertificateIDFor(enrollment),
	}, nil
}

// CertificateRow pairs an eligible enrollment with its derived certificate
// for the admin listing.
type CertificateRow struct {
	Enrollment models.Enrollment
	Progress   int
}

// EligibleCertificates lists every confirmed enrollment whose course is
// fully completed. Users and courses come in with the enrollments in one
// query each rather than per row.
func EligibleCertificates(db *gorm.DB) ([]CertificateRow, error) {
	var confirmed []models.Enrollment
	err := db.Preload("User").Preload("Course").
		Where("is_confirmed = ?", true).
		Order("created_at asc").
		Find(&confirmed).Error
	if err != nil {
		return nil, err
	}

	var rows []CertificateRow
	for _, e := range confirmed {
		percent, err := CourseProgressPercent(db, e.UserID, e.CourseID)
		if err != nil {
			return nil, err
		}
		if percent == 100 {
			rows = append(rows, CertificateRow{Enrollment: e, Progress: percent})
		}
	}
	return rows, nil
}
