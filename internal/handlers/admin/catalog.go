package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jagokomputer/jagokursus/internal/models"
	"github.com/jagokomputer/jagokursus/internal/storage"
)

// courseFromForm fills a Course from the submitted form; numeric parse
// failures leave zero values for the storage validators to reject.
func courseFromForm(r *http.Request, course *models.Course) {
	course.Title = r.FormValue("title")
	course.Description = r.FormValue("description")
	course.Category = r.FormValue("category")
	course.InstructorName = r.FormValue("instructor_name")
	course.InstructorTitle = r.FormValue("instructor_title")
	course.Rating, _ = strconv.ParseFloat(r.FormValue("rating"), 64)
	course.Price, _ = strconv.Atoi(r.FormValue("price"))
	course.DiscountPercent, _ = strconv.Atoi(r.FormValue("discount_percent"))
	course.DurationHours, _ = strconv.Atoi(r.FormValue("duration_hours"))
	course.ImageURL = r.FormValue("image_url")
	course.InstructorImageURL = r.FormValue("instructor_image_url")
}

// HandleCourses lists the catalog for editing.
func (s Service) HandleCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := storage.AllCourses(s.DB)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	data := s.NewPageData(w, r, "Kelola Kursus")
	data.Courses = courses
	s.Render(w, "admin/courses.html", data)
}

// HandleAddCourse creates a course. Out-of-range discount, negative price and
// unknown categories come back as a validation flash, nothing written.
func (s Service) HandleAddCourse(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var course models.Course
		courseFromForm(r, &course)
		if err := storage.CreateCourse(s.DB, &course); err != nil {
			if errors.Is(err, storage.ErrInvalidInput) {
				s.AddFlash(w, r, "danger", "Kursus gagal disimpan: periksa kategori, harga dan diskon (0-100).")
				http.Redirect(w, r, "/admin/courses/new", http.StatusSeeOther)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		s.AddFlash(w, r, "success", "Kursus baru berhasil ditambahkan!")
		http.Redirect(w, r, "/admin/courses", http.StatusSeeOther)
		return
	}

	s.Render(w, "admin/add_course.html", s.NewPageData(w, r, "Tambah Kursus Baru"))
}

// HandleEditCourse updates an existing course.
func (s Service) HandleEditCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	course, err := storage.GetCourse(s.DB, courseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if r.Method == http.MethodPost {
		courseFromForm(r, course)
		if err := storage.UpdateCourse(s.DB, course); err != nil {
			if errors.Is(err, storage.ErrInvalidInput) {
				s.AddFlash(w, r, "danger", "Kursus gagal disimpan: periksa kategori, harga dan diskon (0-100).")
				http.Redirect(w, r, fmt.Sprintf("/admin/courses/%d/edit", courseID), http.StatusSeeOther)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		s.AddFlash(w, r, "success", fmt.Sprintf("Kursus %q berhasil diperbarui!", course.Title))
		http.Redirect(w, r, "/admin/courses", http.StatusSeeOther)
		return
	}

	lessons, err := storage.LessonsFor(s.DB, courseID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	data := s.NewPageData(w, r, "Edit Kursus: "+course.Title)
	data.Course = course
	data.Lessons = lessons
	s.Render(w, "admin/edit_course.html", data)
}

// HandleDeleteCourse removes a course together with its lessons, progress
// and enrollments.
func (s Service) HandleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := storage.DeleteCourse(s.DB, courseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	s.AddFlash(w, r, "success", "Kursus berhasil dihapus.")
	http.Redirect(w, r, "/admin/courses", http.StatusSeeOther)
}

// HandleAddLesson appends a lesson to a course.
func (s Service) HandleAddLesson(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	course, err := storage.GetCourse(s.DB, courseID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if r.Method == http.MethodPost {
		order, _ := strconv.Atoi(r.FormValue("order"))
		duration, _ := strconv.Atoi(r.FormValue("duration_minutes"))
		lesson := models.Lesson{
			CourseID:        course.ID,
			Title:           r.FormValue("title"),
			Content:         r.FormValue("content"),
			Order:           order,
			DurationMinutes: duration,
		}
		if err := storage.CreateLesson(s.DB, &lesson); err != nil {
			if errors.Is(err, storage.ErrInvalidInput) {
				s.AddFlash(w, r, "danger", "Pelajaran gagal disimpan: judul wajib diisi dan urutan harus positif.")
				http.Redirect(w, r, fmt.Sprintf("/admin/courses/%d/lessons/new", courseID), http.StatusSeeOther)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		s.AddFlash(w, r, "success", fmt.Sprintf("Pelajaran %q berhasil ditambahkan ke kursus %s!", lesson.Title, course.Title))
		http.Redirect(w, r, fmt.Sprintf("/course/%d", course.ID), http.StatusSeeOther)
		return
	}

	data := s.NewPageData(w, r, "Tambah Pelajaran untuk "+course.Title)
	data.Course = course
	s.Render(w, "admin/add_lesson.html", data)
}

// HandleEditLesson updates a lesson.
func (s Service) HandleEditLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	lesson, err := storage.GetLesson(s.DB, lessonID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	course, err := storage.GetCourse(s.DB, lesson.CourseID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if r.Method == http.MethodPost {
		lesson.Title = r.FormValue("title")
		lesson.Content = r.FormValue("content")
		lesson.Order, _ = strconv.Atoi(r.FormValue("order"))
		lesson.DurationMinutes, _ = strconv.Atoi(r.FormValue("duration_minutes"))
		if err := storage.UpdateLesson(s.DB, lesson); err != nil {
			if errors.Is(err, storage.ErrInvalidInput) {
				s.AddFlash(w, r, "danger", "Pelajaran gagal disimpan: judul wajib diisi dan urutan harus positif.")
				http.Redirect(w, r, fmt.Sprintf("/admin/lessons/%d/edit", lessonID), http.StatusSeeOther)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		s.AddFlash(w, r, "success", fmt.Sprintf("Pelajaran %q berhasil diperbarui!", lesson.Title))
		http.Redirect(w, r, fmt.Sprintf("/course/%d", course.ID), http.StatusSeeOther)
		return
	}

	data := s.NewPageData(w, r, "Edit Pelajaran: "+lesson.Title)
	data.Course = course
	data.Lesson = lesson
	s.Render(w, "admin/edit_lesson.html", data)
}

// HandleDeleteLesson removes a lesson and, first, every progress row
// pointing at it.
func (s Service) HandleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	lesson, err := storage.GetLesson(s.DB, lessonID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := storage.DeleteLesson(s.DB, lessonID); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	s.AddFlash(w, r, "success", fmt.Sprintf("Pelajaran %q berhasil dihapus.", lesson.Title))
	http.Redirect(w, r, fmt.Sprintf("/course/%d", lesson.CourseID), http.StatusSeeOther)
}
