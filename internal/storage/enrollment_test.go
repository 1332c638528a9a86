package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jagokomputer/jagokursus/internal/models"
)

func TestEnrollFree(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ani")
	course := createTestCourse(t, db, "HTML Dasar", 0, 0, 2)

	enrollment, err := EnrollFree(db, user.ID, course)
	require.NoError(t, err)
	assert.Equal(t, models.StateConfirmed, enrollment.State())
	assert.True(t, enrollment.IsPaid)
	assert.True(t, enrollment.IsConfirmed)

	_, err = EnrollFree(db, user.ID, course)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestEnrollFreeRejectsPaidCourse(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ani")
	course := createTestCourse(t, db, "Go Lanjutan", 150000, 0, 2)

	_, err := EnrollFree(db, user.ID, course)
	assert.ErrorIs(t, err, ErrNotYetPaid)
}

func TestSubmitPaymentProof(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "budi")
	course := createTestCourse(t, db, "Python Data", 200000, 0, 3)

	enrollment, err := SubmitPaymentProof(db, user.ID, course, "transfer_bca", 42, "bukti1.png")
	require.NoError(t, err)
	assert.Equal(t, models.StatePaidPending, enrollment.State())
	assert.Equal(t, 42, enrollment.UniqueCode)
	assert.Equal(t, "bukti1.png", enrollment.ProofOfPayment)

	// Resubmission overwrites the previous claim but stays pending.
	enrollment, err = SubmitPaymentProof(db, user.ID, course, "transfer_bni", 7, "bukti2.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.StatePaidPending, enrollment.State())
	assert.Equal(t, "bukti2.pdf", enrollment.ProofOfPayment)
	assert.Equal(t, "transfer_bni", enrollment.PaymentMethod)
	assert.Equal(t, 7, enrollment.UniqueCode)

	var count int64
	db.Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSubmitPaymentProofResetsConfirmation(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "citra")
	course := createTestCourse(t, db, "Desain Logo", 100000, 0, 1)

	enrollment := confirmEnrollment(t, db, user, course)
	require.Equal(t, models.StateConfirmed, enrollment.State())

	// A new proof always forces re-review, even after confirmation.
	enrollment, err := SubmitPaymentProof(db, user.ID, course, "transfer", 9, "baru.jpg")
	require.NoError(t, err)
	assert.Equal(t, models.StatePaidPending, enrollment.State())
	assert.False(t, enrollment.IsConfirmed)
}

func TestSubmitPaymentProofValidation(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "dewi")
	course := createTestCourse(t, db, "Excel", 50000, 0, 1)

	_, err := SubmitPaymentProof(db, user.ID, course, "", 1, "bukti.png")
	assert.ErrorIs(t, err, ErrInvalidProof)
	_, err = SubmitPaymentProof(db, user.ID, course, "transfer", -1, "bukti.png")
	assert.ErrorIs(t, err, ErrInvalidProof)
	_, err = SubmitPaymentProof(db, user.ID, course, "transfer", 1, "")
	assert.ErrorIs(t, err, ErrInvalidProof)

	// Nothing was written along the way.
	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestConfirm(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "eka")
	course := createTestCourse(t, db, "Jaringan Dasar", 75000, 0, 2)

	submitted, err := SubmitPaymentProof(db, user.ID, course, "transfer", 3, "bukti.png")
	require.NoError(t, err)

	confirmed, err := Confirm(db, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateConfirmed, confirmed.State())

	// Confirming again is a no-op, not an error.
	again, err := Confirm(db, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateConfirmed, again.State())
}

func TestConfirmRequiresPayment(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "fajar")
	course := createTestCourse(t, db, "Word", 50000, 0, 1)

	// An unpaid row can only exist through direct insertion, but the state
	// machine still has to refuse it.
	unpaid := models.Enrollment{UserID: user.ID, CourseID: course.ID}
	require.NoError(t, db.Create(&unpaid).Error)

	_, err := Confirm(db, unpaid.ID)
	assert.ErrorIs(t, err, ErrNotYetPaid)

	var reloaded models.Enrollment
	require.NoError(t, db.First(&reloaded, unpaid.ID).Error)
	assert.False(t, reloaded.IsConfirmed)

	_, err = Confirm(db, unpaid.ID+999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAmountDueRoundTrip(t *testing.T) {
	course := &models.Course{Price: 100000, DiscountPercent: 10}
	for _, code := range []int{0, 1, 37, 999} {
		assert.Equal(t, course.FinalPrice(), AmountDue(course, code)-code)
	}
}

// TestPaidCourseLifecycle walks the whole flow: checkout amounts, admin
// confirmation, full completion, certificate.
func TestPaidCourseLifecycle(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "gita")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("full_name", "Gita Permata").Error)
	course := createTestCourse(t, db, "Web Dev Lengkap", 100000, 10, 2)

	assert.Equal(t, 90000, course.FinalPrice())

	enrollment, err := SubmitPaymentProof(db, user.ID, course, "transfer", 37, "bukti.png")
	require.NoError(t, err)
	assert.Equal(t, 90037, AmountDue(course, enrollment.UniqueCode))

	enrollment, err = Confirm(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateConfirmed, enrollment.State())

	lessons, err := LessonsFor(db, course.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	for i := range lessons {
		_, err := MarkLessonComplete(db, user.ID, &lessons[i])
		require.NoError(t, err)
	}

	cert, err := IssueCertificate(db, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gita Permata", cert.FullName)
	assert.Equal(t, "Web Dev Lengkap", cert.CourseTitle)
	assert.Equal(t, fmt.Sprintf("JK-%d-%d", enrollment.ID, enrollment.CreatedAt.Year()), cert.CertificateID)
}

func TestCertificateRequiresFullProgress(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "hani")
	course := createTestCourse(t, db, "Web Dev Lengkap", 100000, 10, 2)
	enrollment := confirmEnrollment(t, db, user, course)

	lessons, err := LessonsFor(db, course.ID)
	require.NoError(t, err)
	_, err = MarkLessonComplete(db, user.ID, &lessons[0])
	require.NoError(t, err)

	// 1 of 2 lessons done: not eligible.
	_, err = IssueCertificate(db, enrollment.ID)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestSubmitPaymentProofLastWriterWins(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "indra")
	course := createTestCourse(t, db, "Photoshop", 80000, 0, 1)

	// Two back-to-back submissions for the same pair: one row remains,
	// carrying the later proof.
	_, err := SubmitPaymentProof(db, user.ID, course, "transfer", 11, "pertama.png")
	require.NoError(t, err)
	_, err = SubmitPaymentProof(db, user.ID, course, "transfer", 22, "kedua.png")
	require.NoError(t, err)

	var rows []models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "kedua.png", rows[0].ProofOfPayment)
	assert.Equal(t, 22, rows[0].UniqueCode)
}

func TestPendingEnrollments(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, "Linux", 60000, 0, 1)
	free := createTestCourse(t, db, "Pengantar", 0, 0, 1)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	_, err := SubmitPaymentProof(db, alice.ID, course, "transfer", 1, "a.png")
	require.NoError(t, err)
	_, err = EnrollFree(db, bob.ID, free)
	require.NoError(t, err)

	pending, err := PendingEnrollments(db)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, alice.ID, pending[0].UserID)
	assert.Equal(t, "alice", pending[0].User.Username)
	assert.Equal(t, "Linux", pending[0].Course.Title)
}
