package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jagokomputer/jagokursus/internal/files"
	"github.com/jagokomputer/jagokursus/internal/notify"
	"github.com/jagokomputer/jagokursus/internal/storage"
)

func pathID(r *http.Request, key string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[key], 10, 32)
	return uint(id), err == nil && id != 0
}

// HandleDashboard lists the viewer's enrollments with live progress.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := h.CurrentUser(r)

	enrollments, err := storage.EnrollmentsFor(h.DB, user.ID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	views := make([]CourseProgressView, 0, len(enrollments))
	for _, e := range enrollments {
		percent, err := storage.CourseProgressPercent(h.DB, user.ID, e.CourseID)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		views = append(views, CourseProgressView{Enrollment: e, Course: e.Course, Progress: percent})
	}

	data := h.NewPageData(w, r, "Dashboard Saya")
	data.UserCourses = views
	h.Render(w, "dashboard.html", data)
}

// HandleCourseDetail shows the syllabus plus the viewer's payment status for
// the course.
func (h *Handler) HandleCourseDetail(w http.ResponseWriter, r *http.Request) {
	user, _ := h.CurrentUser(r)
	courseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	course, err := storage.GetCourse(h.DB, courseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	lessons, err := storage.LessonsFor(h.DB, courseID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	data := h.NewPageData(w, r, course.Title)
	data.Course = course
	data.Lessons = lessons
	data.FinalPrice = course.FinalPrice()
	data.PaymentStatus = "none"

	if enrollment, err := storage.EnrollmentFor(h.DB, user.ID, courseID); err == nil {
		data.Enrollment = enrollment
		data.PaymentStatus = enrollment.State()
		data.IsEnrolled = enrollment.IsConfirmed
	}
	if data.IsEnrolled {
		if done, err := storage.CompletedLessonMap(h.DB, user.ID, courseID); err == nil {
			data.DoneLessonsMap = done
		}
		if percent, err := storage.CourseProgressPercent(h.DB, user.ID, courseID); err == nil {
			data.ProgressPercent = percent
		}
	}

	h.Render(w, "course_detail.html", data)
}

// HandleEnroll enrolls the viewer in a free course; paid courses bounce to
// checkout.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	user, _ := h.CurrentUser(r)
	courseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	course, err := storage.GetCourse(h.DB, courseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if !course.IsFree() {
		h.AddFlash(w, r, "info", fmt.Sprintf("Kursus %q adalah kursus berbayar. Silakan selesaikan pembayaran.", course.Title))
		http.Redirect(w, r, fmt.Sprintf("/checkout/%d", courseID), http.StatusSeeOther)
		return
	}

	_, err = storage.EnrollFree(h.DB, user.ID, course)
	switch {
	case errors.Is(err, storage.ErrAlreadyEnrolled):
		h.AddFlash(w, r, "warning", fmt.Sprintf("Anda sudah terdaftar di kursus %s.", course.Title))
	case err != nil:
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	default:
		storage.RecordActivity(h.DB, user.ID, "enroll_free", map[string]interface{}{"course_id": course.ID})
		h.AddFlash(w, r, "success", fmt.Sprintf("Selamat! Anda berhasil terdaftar di kursus %s (GRATIS).", course.Title))
	}
	http.Redirect(w, r, fmt.Sprintf("/course/%d", courseID), http.StatusSeeOther)
}

// HandleCheckout shows the payment instructions for a paid course.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	user, _ := h.CurrentUser(r)
	courseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	course, err := storage.GetCourse(h.DB, courseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if enrollment, err := storage.EnrollmentFor(h.DB, user.ID, courseID); err == nil && enrollment.IsConfirmed {
		h.AddFlash(w, r, "warning", fmt.Sprintf("Anda sudah terdaftar di kursus %s.", course.Title))
		http.Redirect(w, r, fmt.Sprintf("/course/%d", courseID), http.StatusSeeOther)
		return
	}

	data := h.NewPageData(w, r, "Pembayaran")
	data.Course = course
	data.FinalPrice = course.FinalPrice()
	h.Render(w, "checkout.html", data)
}

// HandlePaymentUpload takes the transfer proof, stores the file, moves the
// enrollment to paid-pending and fires the admin notification. Validation
// happens before anything is written.
func (h *Handler) HandlePaymentUpload(w http.ResponseWriter, r *http.Request) {
	user, _ := h.CurrentUser(r)
	courseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	course, err := storage.GetCourse(h.DB, courseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	checkoutURL := fmt.Sprintf("/checkout/%d", courseID)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.AddFlash(w, r, "danger", "Unggahan tidak valid.")
		http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
		return
	}

	method := r.FormValue("payment_method")
	if method == "" {
		h.AddFlash(w, r, "danger", "Pilih salah satu metode pembayaran.")
		http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
		return
	}
	uniqueCode, err := strconv.Atoi(r.FormValue("unique_code"))
	if err != nil || uniqueCode < 0 {
		h.AddFlash(w, r, "danger", "Kode unik tidak valid.")
		http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("proof_file")
	if err != nil {
		h.AddFlash(w, r, "danger", "Bukti pembayaran wajib diunggah.")
		http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
		return
	}
	defer file.Close()

	proofRef, err := h.Files.Save(user.ID, courseID, header.Filename, file)
	if err != nil {
		if errors.Is(err, files.ErrInvalidFile) {
			h.AddFlash(w, r, "danger", "File bukti pembayaran tidak valid (hanya PNG, JPG, JPEG, PDF).")
			http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
			return
		}
		http.Error(w, "Upload error", http.StatusInternalServerError)
		return
	}

	enrollment, err := storage.SubmitPaymentProof(h.DB, user.ID, course, method, uniqueCode, proofRef)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	storage.RecordActivity(h.DB, user.ID, "payment_submitted", map[string]interface{}{
		"course_id":   course.ID,
		"unique_code": uniqueCode,
	})

	// Fire-and-forget; a lost notification never rolls back the payment.
	h.Notifier.PaymentSubmitted(notify.PaymentNotice{
		CourseTitle: course.Title,
		Username:    user.Username,
		Email:       user.Email,
		AmountDue:   storage.AmountDue(course, enrollment.UniqueCode),
		UniqueCode:  enrollment.UniqueCode,
		VerifyURL:   h.BaseURL + "/admin/enrollments",
	})

	h.AddFlash(w, r, "success", "Konfirmasi pembayaran berhasil dikirim! Admin akan memverifikasi dalam 1x24 jam. Akses kursus akan terbuka setelah verifikasi.")
	http.Redirect(w, r, fmt.Sprintf("/course/%d", courseID), http.StatusSeeOther)
}

// HandleLessonView renders one lesson for a confirmed student, with prev and
// next navigation.
func (h *Handler) HandleLessonView(w http.ResponseWriter, r *http.Request) {
	user, _ := h.CurrentUser(r)
	lessonID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	lesson, err := storage.GetLesson(h.DB, lessonID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	enrollment, err := storage.EnrollmentFor(h.DB, user.ID, lesson.CourseID)
	if err != nil || !enrollment.IsConfirmed {
		h.AddFlash(w, r, "danger", "Anda harus terdaftar di kursus ini untuk melihat pelajaran.")
		http.Redirect(w, r, fmt.Sprintf("/course/%d", lesson.CourseID), http.StatusSeeOther)
		return
	}

	course, err := storage.GetCourse(h.DB, lesson.CourseID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	data := h.NewPageData(w, r, lesson.Title)
	data.Lesson = lesson
	data.Course = course
	if done, err := storage.CompletedLessonMap(h.DB, user.ID, lesson.CourseID); err == nil {
		data.IsLessonDone = done[lesson.ID]
		data.DoneLessonsMap = done
	}
	if next, err := storage.NextLesson(h.DB, lesson); err == nil {
		data.NextLesson = next
	}
	if prev, err := storage.PrevLesson(h.DB, lesson); err == nil {
		data.PrevLesson = prev
	}

	h.Render(w, "lesson_view.html", data)
}

// HandleCompleteLesson marks the lesson done and advances to the next one;
// finishing the last lesson celebrates instead.
func (h *Handler) HandleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	user, _ := h.CurrentUser(r)
	lessonID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	lesson, err := storage.GetLesson(h.DB, lessonID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	alreadyDone, err := storage.MarkLessonComplete(h.DB, user.ID, lesson)
	if errors.Is(err, storage.ErrNotEnrolled) {
		h.AddFlash(w, r, "danger", "Anda harus terdaftar di kursus ini.")
		http.Redirect(w, r, fmt.Sprintf("/course/%d", lesson.CourseID), http.StatusSeeOther)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if alreadyDone {
		h.AddFlash(w, r, "info", fmt.Sprintf("Pelajaran %q sudah selesai.", lesson.Title))
	} else {
		storage.RecordActivity(h.DB, user.ID, "lesson_complete", map[string]interface{}{"lesson_id": lesson.ID})
		h.AddFlash(w, r, "success", fmt.Sprintf("Pelajaran %q ditandai sebagai selesai!", lesson.Title))
	}

	next, err := storage.NextLesson(h.DB, lesson)
	if err == nil {
		http.Redirect(w, r, fmt.Sprintf("/lesson/%d", next.ID), http.StatusSeeOther)
		return
	}
	// Terminal lesson: the course is fully walked through.
	h.AddFlash(w, r, "success", "Selamat! Anda telah menyelesaikan semua pelajaran di kursus ini!")
	http.Redirect(w, r, fmt.Sprintf("/course/%d", lesson.CourseID), http.StatusSeeOther)
}

// HandleCoursesByCategory filters the public catalog.
func (h *Handler) HandleCoursesByCategory(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	courses, err := storage.CoursesByCategory(h.DB, category)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	data := h.NewPageData(w, r, "Kursus "+category)
	data.Courses = courses
	data.CategoryName = category
	h.Render(w, "courses_by_category.html", data)
}

// HandleSearch runs the catalog search (?q= keyword, ?kelas= category).
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	kelas := r.URL.Query().Get("kelas")
	courses, err := storage.SearchCourses(h.DB, q, kelas)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	data := h.NewPageData(w, r, "Hasil Pencarian: "+q)
	data.Courses = courses
	data.SearchQuery = q
	data.SelectedKelas = kelas
	h.Render(w, "search_results.html", data)
}

// HandleLessonSearch searches within one course's lessons.
func (h *Handler) HandleLessonSearch(w http.ResponseWriter, r *http.Request) {
	user, _ := h.CurrentUser(r)
	courseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	course, err := storage.GetCourse(h.DB, courseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		h.AddFlash(w, r, "warning", "Masukkan kata kunci untuk mencari pelajaran.")
		http.Redirect(w, r, fmt.Sprintf("/course/%d", courseID), http.StatusSeeOther)
		return
	}

	lessons, err := storage.SearchLessons(h.DB, courseID, q)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	data := h.NewPageData(w, r, fmt.Sprintf("Hasil Pencarian di %s", course.Title))
	data.Course = course
	data.Lessons = lessons
	data.SearchQuery = q
	if enrollment, err := storage.EnrollmentFor(h.DB, user.ID, courseID); err == nil {
		data.IsEnrolled = enrollment.IsConfirmed
	}
	h.Render(w, "course_detail.html", data)
}

// HandleCertificateDownload renders the viewer's own certificate. Ownership
// and eligibility are both enforced.
func (h *Handler) HandleCertificateDownload(w http.ResponseWriter, r *http.Request) {
	user, _ := h.CurrentUser(r)
	enrollmentID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	enrollment, err := storage.GetEnrollment(h.DB, enrollmentID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if enrollment.UserID != user.ID {
		h.AddFlash(w, r, "danger", "Akses ditolak. Sertifikat ini bukan milik Anda.")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	cert, err := storage.IssueCertificate(h.DB, enrollmentID)
	if errors.Is(err, storage.ErrNotEligible) {
		h.AddFlash(w, r, "danger", "Sertifikat belum memenuhi syarat untuk diunduh (Kursus belum 100% selesai atau pembayaran belum dikonfirmasi).")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	data := h.NewPageData(w, r, "Sertifikat")
	data.Certificate = cert
	h.Render(w, "certificate_preview.html", data)
}
