package handlers

import (
	"encoding/gob"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/jagokomputer/jagokursus/internal/files"
	"github.com/jagokomputer/jagokursus/internal/models"
	"github.com/jagokomputer/jagokursus/internal/notify"
	"github.com/jagokomputer/jagokursus/internal/storage"
)

const sessionName = "session"

// Flash is one queued user-facing message; Category maps to a bootstrap
// alert class (success, info, warning, danger).
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

type Handler struct {
	DB       *gorm.DB
	Store    *sessions.CookieStore
	OAuth    *oauth2.Config // nil when Google login is not configured
	Tmpl     *template.Template
	Files    files.Store
	Notifier notify.Notifier

	// BaseURL prefixes the verification link in admin notifications.
	BaseURL string
}

func NewHandler(db *gorm.DB, store *sessions.CookieStore, oauthCfg *oauth2.Config, fileStore files.Store, notifier notify.Notifier, baseURL string) *Handler {
	funcMap := template.FuncMap{
		"formatRupiah": notify.FormatRupiah,
		"adjustTimezone": func(t time.Time) time.Time {
			// WIB, matching the audience of the site.
			return t.Add(7 * time.Hour)
		},
		"add": func(i, j int) int { return i + j },
	}

	tmpl := template.New("").Funcs(funcMap)
	if _, err := tmpl.ParseGlob("template/*.html"); err != nil {
		log.Println("warning: parsing root templates:", err)
	}
	if _, err := tmpl.ParseGlob("template/**/*.html"); err != nil {
		log.Println("warning: parsing nested templates:", err)
	}

	return &Handler{
		DB:       db,
		Store:    store,
		OAuth:    oauthCfg,
		Tmpl:     tmpl,
		Files:    fileStore,
		Notifier: notifier,
		BaseURL:  baseURL,
	}
}

// PageData is the umbrella payload handed to every template.
type PageData struct {
	Title           string
	IsAuthenticated bool
	IsAdmin         bool
	User            *models.User
	CurrentPath     string
	Flashes         []Flash
	GoogleEnabled   bool

	Courses       []models.Course
	Course        *models.Course
	Lessons       []models.Lesson
	Lesson        *models.Lesson
	Categories    []string
	CategoryName  string
	SearchQuery   string
	SelectedKelas string

	Enrollment      *models.Enrollment
	PaymentStatus   models.EnrollmentState
	IsEnrolled      bool
	AmountDue       int
	FinalPrice      int

	UserCourses      []CourseProgressView
	CompletedCourses []models.Course
	DoneLessonsMap   map[uint]bool
	ProgressPercent  int
	IsLessonDone     bool
	NextLesson       *models.Lesson
	PrevLesson       *models.Lesson

	Certificate *models.Certificate

	Form map[string]string
	Errors map[string]string
	Extra map[string]interface{}
}

// CourseProgressView pairs a course with the viewer's completion share.
type CourseProgressView struct {
	Enrollment models.Enrollment
	Course     models.Course
	Progress   int
}

// CurrentUser resolves the session to a user row. The bool is false for
// anonymous visitors and for stale sessions pointing at deleted accounts.
func (h *Handler) CurrentUser(r *http.Request) (*models.User, bool) {
	session, _ := h.Store.Get(r, sessionName)
	userID, ok := session.Values["user_id"].(uint)
	if !ok || userID == 0 {
		return nil, false
	}
	user, err := storage.GetUser(h.DB, userID)
	if err != nil {
		return nil, false
	}
	return user, true
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, _ := h.Store.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Save(r, w)
}

// AddFlash queues a message for the next rendered page.
func (h *Handler) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	session, _ := h.Store.Get(r, sessionName)
	session.AddFlash(Flash{Category: category, Message: message})
	session.Save(r, w)
}

func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, _ := h.Store.Get(r, sessionName)
	raw := session.Flashes()
	if len(raw) > 0 {
		session.Save(r, w)
	}
	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(Flash); ok {
			flashes = append(flashes, fl)
		}
	}
	return flashes
}

// NewPageData assembles the shared fields every template expects.
func (h *Handler) NewPageData(w http.ResponseWriter, r *http.Request, title string) PageData {
	user, authed := h.CurrentUser(r)
	return PageData{
		Title:           title,
		IsAuthenticated: authed,
		IsAdmin:         authed && user.IsAdmin,
		User:            user,
		CurrentPath:     r.URL.Path,
		Flashes:         h.popFlashes(w, r),
		GoogleEnabled:   h.OAuth != nil,
		Categories:      models.Categories,
	}
}

func (h *Handler) Render(w http.ResponseWriter, name string, data PageData) {
	if err := h.Tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleIndex shows the catalog to everyone.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	courses, err := storage.AllCourses(h.DB)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	data := h.NewPageData(w, r, "Beranda")
	data.Courses = courses
	h.Render(w, "index.html", data)
}

// HandleLogin serves the login form and processes submissions.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if _, authed := h.CurrentUser(r); authed {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		username := r.FormValue("username")
		password := r.FormValue("password")
		user, err := storage.Authenticate(h.DB, username, password)
		if err != nil {
			h.AddFlash(w, r, "danger", "Username atau password tidak valid")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.login(w, r, user)
		storage.RecordActivity(h.DB, user.ID, "login", map[string]interface{}{"via": "password"})

		next := r.URL.Query().Get("next")
		if next == "" || next[0] != '/' {
			next = "/"
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	h.Render(w, "login.html", h.NewPageData(w, r, "Masuk"))
}

// HandleRegister creates a self-service account.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if _, authed := h.CurrentUser(r); authed {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		password := r.FormValue("password")
		if password == "" || password != r.FormValue("password2") {
			h.AddFlash(w, r, "danger", "Password tidak cocok")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		user := models.User{
			Username: r.FormValue("username"),
			Email:    r.FormValue("email"),
		}
		if err := storage.CreateUser(h.DB, &user, password); err != nil {
			h.AddFlash(w, r, "danger", registerErrorMessage(err))
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		storage.RecordActivity(h.DB, user.ID, "register", map[string]interface{}{"username": user.Username})
		h.AddFlash(w, r, "success", "Selamat, Anda sekarang terdaftar sebagai pengguna! Silakan masuk.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.Render(w, "register.html", h.NewPageData(w, r, "Daftar"))
}

func registerErrorMessage(err error) string {
	switch {
	case err == storage.ErrUsernameTaken:
		return "Nama pengguna ini sudah digunakan."
	case err == storage.ErrEmailTaken:
		return "Email ini sudah terdaftar."
	default:
		return "Pendaftaran gagal. Periksa kembali isian Anda."
	}
}

// HandleLogout drops the session.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, sessionName)
	session.Options.MaxAge = -1
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleProfile shows and updates the viewer's own profile, including the
// list of completed courses with downloadable certificates.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user, authed := h.CurrentUser(r)
	if !authed {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		err := storage.UpdateProfile(h.DB, user,
			r.FormValue("full_name"),
			r.FormValue("whatsapp_number"),
			r.FormValue("email"),
		)
		switch {
		case err == storage.ErrEmailTaken:
			h.AddFlash(w, r, "danger", "Email ini sudah terdaftar. Gunakan email lain.")
		case err != nil:
			h.AddFlash(w, r, "danger", "Profil gagal disimpan. Periksa kembali isian Anda.")
		default:
			h.AddFlash(w, r, "success", "Profil Anda berhasil diperbarui!")
		}
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	enrollments, err := storage.EnrollmentsFor(h.DB, user.ID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	var completed []models.Course
	for _, e := range enrollments {
		percent, err := storage.CourseProgressPercent(h.DB, user.ID, e.CourseID)
		if err == nil && percent == 100 && e.IsConfirmed {
			completed = append(completed, e.Course)
		}
	}

	data := h.NewPageData(w, r, "Profil Saya")
	data.CompletedCourses = completed
	h.Render(w, "profile.html", data)
}
