// Package admin holds the /admin surface: user management, catalog editing,
// payment verification and certificate review.
package admin

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jagokomputer/jagokursus/internal/handlers"
	"github.com/jagokomputer/jagokursus/internal/models"
	"github.com/jagokomputer/jagokursus/internal/storage"
)

type Service struct {
	*handlers.Handler
}

func pathID(r *http.Request, key string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[key], 10, 32)
	return uint(id), err == nil && id != 0
}

// HandleDashboard shows the headline counters plus recent activity.
func (s Service) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var totalUsers, totalCourses, totalEnrollments, totalConfirmed int64
	if err := s.DB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	s.DB.Model(&models.Course{}).Count(&totalCourses)
	s.DB.Model(&models.Enrollment{}).Count(&totalEnrollments)
	s.DB.Model(&models.Enrollment{}).Where("is_confirmed = ?", true).Count(&totalConfirmed)

	recent, _ := storage.RecentActivity(s.DB, 20)

	data := s.NewPageData(w, r, "Admin Dashboard")
	data.Extra = map[string]interface{}{
		"TotalUsers":       totalUsers,
		"TotalCourses":     totalCourses,
		"TotalEnrollments": totalEnrollments,
		"TotalConfirmed":   totalConfirmed,
		"RecentActivity":   recent,
	}
	s.Render(w, "admin/dashboard.html", data)
}

// HandleUsers lists all accounts.
func (s Service) HandleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := storage.AllUsers(s.DB)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	data := s.NewPageData(w, r, "Manajemen Pengguna")
	data.Extra = map[string]interface{}{"Users": users}
	s.Render(w, "admin/users.html", data)
}

// HandleUserDetail shows one account with its per-course progress.
func (s Service) HandleUserDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	target, err := storage.GetUser(s.DB, userID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	enrollments, err := storage.EnrollmentsFor(s.DB, target.ID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	views := make([]handlers.CourseProgressView, 0, len(enrollments))
	for _, e := range enrollments {
		percent, err := storage.CourseProgressPercent(s.DB, target.ID, e.CourseID)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		views = append(views, handlers.CourseProgressView{Enrollment: e, Course: e.Course, Progress: percent})
	}

	data := s.NewPageData(w, r, "Detail Pengguna: "+target.Username)
	data.UserCourses = views
	data.Extra = map[string]interface{}{"TargetUser": target}
	s.Render(w, "admin/user_detail.html", data)
}

// HandleToggleAdmin flips the admin flag on another account.
func (s Service) HandleToggleAdmin(w http.ResponseWriter, r *http.Request) {
	actor, _ := s.CurrentUser(r)
	userID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	target, err := storage.ToggleAdmin(s.DB, actor.ID, userID)
	switch {
	case err == storage.ErrInvalidInput:
		s.AddFlash(w, r, "danger", "Anda tidak bisa mengubah status admin Anda sendiri.")
	case err == storage.ErrNotFound:
		http.NotFound(w, r)
		return
	case err != nil:
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	default:
		s.AddFlash(w, r, "success", fmt.Sprintf("Status admin untuk %s diubah menjadi %v.", target.Username, target.IsAdmin))
	}
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// HandleAddUser lets an admin create accounts directly, admin flag included.
func (s Service) HandleAddUser(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		user := models.User{
			Username:       r.FormValue("username"),
			Email:          r.FormValue("email"),
			FullName:       r.FormValue("full_name"),
			WhatsAppNumber: r.FormValue("whatsapp_number"),
			IsAdmin:        r.FormValue("is_admin") != "",
		}
		err := storage.CreateUser(s.DB, &user, r.FormValue("password"))
		switch {
		case err == storage.ErrUsernameTaken:
			s.AddFlash(w, r, "danger", "Nama pengguna ini sudah digunakan.")
			http.Redirect(w, r, "/admin/users/new", http.StatusSeeOther)
			return
		case err == storage.ErrEmailTaken:
			s.AddFlash(w, r, "danger", "Email ini sudah terdaftar. Gunakan email lain.")
			http.Redirect(w, r, "/admin/users/new", http.StatusSeeOther)
			return
		case err != nil:
			s.AddFlash(w, r, "danger", "Pengguna gagal dibuat. Periksa kembali isian Anda.")
			http.Redirect(w, r, "/admin/users/new", http.StatusSeeOther)
			return
		}
		s.AddFlash(w, r, "success", fmt.Sprintf("Pengguna %q berhasil ditambahkan!", user.Username))
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	s.Render(w, "admin/add_user.html", s.NewPageData(w, r, "Tambah Pengguna Baru"))
}
