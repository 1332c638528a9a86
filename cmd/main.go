package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"github.com/jagokomputer/jagokursus/internal/auth"
	"github.com/jagokomputer/jagokursus/internal/database"
	"github.com/jagokomputer/jagokursus/internal/files"
	"github.com/jagokomputer/jagokursus/internal/handlers"
	"github.com/jagokomputer/jagokursus/internal/handlers/admin"
	"github.com/jagokomputer/jagokursus/internal/middleware"
	"github.com/jagokomputer/jagokursus/internal/notify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: no .env file found, using system environment")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal("database connection:", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migration:", err)
	}
	if err := database.Seed(db); err != nil {
		log.Fatal("seed:", err)
	}

	sessionKey := os.Getenv("SESSION_KEY")
	if sessionKey == "" {
		sessionKey = "ganti-dengan-kunci-rahasia-yang-sulit" // dev only
		log.Println("warning: SESSION_KEY not set, using default")
	}
	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false, // set true behind HTTPS
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "static/proofs"
	}
	fileStore, err := files.NewDiskStore(uploadDir)
	if err != nil {
		log.Fatal("upload dir:", err)
	}

	adminPhone := os.Getenv("ADMIN_PHONE")
	if adminPhone == "" {
		adminPhone = "+6285715524962"
	}
	notifier := &notify.ConsoleNotifier{AdminPhone: adminPhone}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Google login stays off unless all three variables are present.
	var oauthCfg *oauth2.Config
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")
	if clientID != "" && clientSecret != "" && redirectURL != "" {
		oauthCfg = auth.NewGoogleOAuthConfig(clientID, clientSecret, redirectURL)
	}

	h := handlers.NewHandler(db, store, oauthCfg, fileStore, notifier, baseURL)
	adminService := admin.Service{Handler: h}

	loginRequired := middleware.LoginRequired(h)
	adminRequired := middleware.AdminRequired(h)

	r := mux.NewRouter()

	// static assets
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("./static"))))

	// public
	r.HandleFunc("/", h.HandleIndex).Methods("GET")
	r.HandleFunc("/login", h.HandleLogin).Methods("GET", "POST")
	r.HandleFunc("/register", h.HandleRegister).Methods("GET", "POST")
	r.HandleFunc("/logout", h.HandleLogout).Methods("GET", "POST")
	r.HandleFunc("/courses/{category}", h.HandleCoursesByCategory).Methods("GET")
	r.HandleFunc("/search", h.HandleSearch).Methods("GET")
	if oauthCfg != nil {
		r.HandleFunc("/auth/google/login", h.HandleGoogleLogin).Methods("GET")
		r.HandleFunc("/auth/google/callback", h.HandleGoogleCallback).Methods("GET")
	}

	// student
	r.HandleFunc("/dashboard", loginRequired(h.HandleDashboard)).Methods("GET")
	r.HandleFunc("/profile", loginRequired(h.HandleProfile)).Methods("GET", "POST")
	r.HandleFunc("/course/{id}", loginRequired(h.HandleCourseDetail)).Methods("GET")
	r.HandleFunc("/course/{id}/search", loginRequired(h.HandleLessonSearch)).Methods("GET")
	r.HandleFunc("/enroll/{id}", loginRequired(h.HandleEnroll)).Methods("GET", "POST")
	r.HandleFunc("/checkout/{id}", loginRequired(h.HandleCheckout)).Methods("GET")
	r.HandleFunc("/checkout/{id}/confirm", loginRequired(h.HandlePaymentUpload)).Methods("POST")
	r.HandleFunc("/lesson/{id}", loginRequired(h.HandleLessonView)).Methods("GET")
	r.HandleFunc("/lesson/{id}/complete", loginRequired(h.HandleCompleteLesson)).Methods("GET", "POST")
	r.HandleFunc("/certificate/{id}", loginRequired(h.HandleCertificateDownload)).Methods("GET")

	// admin
	r.HandleFunc("/admin", adminRequired(adminService.HandleDashboard)).Methods("GET")
	r.HandleFunc("/admin/users", adminRequired(adminService.HandleUsers)).Methods("GET")
	r.HandleFunc("/admin/users/new", adminRequired(adminService.HandleAddUser)).Methods("GET", "POST")
	r.HandleFunc("/admin/users/{id}", adminRequired(adminService.HandleUserDetail)).Methods("GET")
	r.HandleFunc("/admin/users/{id}/toggle", adminRequired(adminService.HandleToggleAdmin)).Methods("GET", "POST")
	r.HandleFunc("/admin/courses", adminRequired(adminService.HandleCourses)).Methods("GET")
	r.HandleFunc("/admin/courses/new", adminRequired(adminService.HandleAddCourse)).Methods("GET", "POST")
	r.HandleFunc("/admin/courses/{id}/edit", adminRequired(adminService.HandleEditCourse)).Methods("GET", "POST")
	r.HandleFunc("/admin/courses/{id}/delete", adminRequired(adminService.HandleDeleteCourse)).Methods("POST")
	r.HandleFunc("/admin/courses/{id}/lessons/new", adminRequired(adminService.HandleAddLesson)).Methods("GET", "POST")
	r.HandleFunc("/admin/lessons/{id}/edit", adminRequired(adminService.HandleEditLesson)).Methods("GET", "POST")
	r.HandleFunc("/admin/lessons/{id}/delete", adminRequired(adminService.HandleDeleteLesson)).Methods("POST")
	r.HandleFunc("/admin/enrollments", adminRequired(adminService.HandleEnrollments)).Methods("GET")
	r.HandleFunc("/admin/enrollments/{id}", adminRequired(adminService.HandleEnrollmentDetail)).Methods("GET")
	r.HandleFunc("/admin/enrollments/{id}/confirm", adminRequired(adminService.HandleConfirmEnrollment)).Methods("GET", "POST")
	r.HandleFunc("/admin/enrollments/{id}/proof", adminRequired(adminService.HandleProofDownload)).Methods("GET")
	r.HandleFunc("/admin/certificates", adminRequired(adminService.HandleCertificates)).Methods("GET")
	r.HandleFunc("/admin/certificates/{id}", adminRequired(adminService.HandleCertificatePreview)).Methods("GET")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("server listening on http://localhost:%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
