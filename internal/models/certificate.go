package models

import "fmt"

// Certificate is derived, never persisted: the same confirmed, fully
// completed enrollment always yields the same certificate.
type Certificate struct {
	FullName       string `json:"full_name"`
	CourseTitle    string `json:"course_title"`
	CompletionDate string `json:"completion_date"`
	CertificateID  string `json:"certificate_id"`
}

// CertificateID follows the "JK-{enrollmentID}-{year}" scheme, the year being
// taken from the enrollment timestamp.
func CertificateIDFor(e *Enrollment) string {
	return fmt.Sprintf("JK-%d-%d", e.ID, e.CreatedAt.Year())
}
