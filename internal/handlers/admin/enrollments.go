package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jagokomputer/jagokursus/internal/models"
	"github.com/jagokomputer/jagokursus/internal/storage"
)

// pendingRow decorates a pending enrollment with the amounts the admin
// compares against the bank statement.
type pendingRow struct {
	Enrollment models.Enrollment
	FinalPrice int
	AmountDue  int
}

// HandleEnrollments shows the verification queue plus the full history.
func (s Service) HandleEnrollments(w http.ResponseWriter, r *http.Request) {
	pending, err := storage.PendingEnrollments(s.DB)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	all, err := storage.AllEnrollments(s.DB)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	rows := make([]pendingRow, 0, len(pending))
	for _, e := range pending {
		rows = append(rows, pendingRow{
			Enrollment: e,
			FinalPrice: e.Course.FinalPrice(),
			AmountDue:  storage.AmountDue(&e.Course, e.UniqueCode),
		})
	}

	data := s.NewPageData(w, r, "Manajemen Pendaftaran")
	data.Extra = map[string]interface{}{
		"Pending": rows,
		"All":     all,
	}
	s.Render(w, "admin/enrollments.html", data)
}

// HandleEnrollmentDetail shows one submission with the expected versus paid
// amounts side by side.
func (s Service) HandleEnrollmentDetail(w http.ResponseWriter, r *http.Request) {
	enrollmentID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	enrollment, err := storage.GetEnrollment(s.DB, enrollmentID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	data := s.NewPageData(w, r, "Detail Pendaftaran: "+enrollment.User.Username)
	data.Enrollment = enrollment
	data.FinalPrice = enrollment.Course.FinalPrice()
	data.AmountDue = storage.AmountDue(&enrollment.Course, enrollment.UniqueCode)
	s.Render(w, "admin/enrollment_detail.html", data)
}

// HandleConfirmEnrollment verifies a payment, unlocking the course.
func (s Service) HandleConfirmEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollmentID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	enrollment, err := storage.Confirm(s.DB, enrollmentID)
	switch {
	case errors.Is(err, storage.ErrNotYetPaid):
		s.AddFlash(w, r, "danger", "Pendaftaran ini belum ditandai sebagai sudah dibayar.")
	case errors.Is(err, storage.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	default:
		storage.RecordActivity(s.DB, enrollment.UserID, "payment_confirmed", map[string]interface{}{
			"enrollment_id": enrollment.ID,
			"course_id":     enrollment.CourseID,
		})
		s.AddFlash(w, r, "success", fmt.Sprintf("Pendaftaran untuk %s di kursus %s berhasil dikonfirmasi!",
			enrollment.User.Username, enrollment.Course.Title))
	}
	http.Redirect(w, r, "/admin/enrollments", http.StatusSeeOther)
}

// HandleProofDownload serves the stored proof-of-payment file.
func (s Service) HandleProofDownload(w http.ResponseWriter, r *http.Request) {
	enrollmentID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	enrollment, err := storage.GetEnrollment(s.DB, enrollmentID)
	if err != nil || enrollment.ProofOfPayment == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.Files.Path(enrollment.ProofOfPayment))
}

// HandleCertificates lists every enrollment currently eligible for a
// certificate.
func (s Service) HandleCertificates(w http.ResponseWriter, r *http.Request) {
	rows, err := storage.EligibleCertificates(s.DB)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	data := s.NewPageData(w, r, "Manajemen Sertifikat")
	data.Extra = map[string]interface{}{"Rows": rows}
	s.Render(w, "admin/certificates.html", data)
}

// HandleCertificatePreview renders the printable certificate for any
// eligible enrollment.
func (s Service) HandleCertificatePreview(w http.ResponseWriter, r *http.Request) {
	enrollmentID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	cert, err := storage.IssueCertificate(s.DB, enrollmentID)
	switch {
	case errors.Is(err, storage.ErrNotEligible):
		s.AddFlash(w, r, "danger", "Sertifikat belum memenuhi syarat untuk dicetak.")
		http.Redirect(w, r, "/admin/certificates", http.StatusSeeOther)
		return
	case errors.Is(err, storage.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	data := s.NewPageData(w, r, "Sertifikat")
	data.Certificate = cert
	s.Render(w, "certificate_preview.html", data)
}
