package middleware

import (
	"net/http"

	"github.com/jagokomputer/jagokursus/internal/handlers"
)

// LoginRequired redirects anonymous visitors to the login form, keeping the
// requested path as ?next=.
func LoginRequired(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, authed := h.CurrentUser(r); !authed {
				http.Redirect(w, r, "/login?next="+r.URL.Path, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

// AdminRequired gates the admin surface: authentication plus the admin flag.
func AdminRequired(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, authed := h.CurrentUser(r)
			if !authed {
				http.Redirect(w, r, "/login?next="+r.URL.Path, http.StatusSeeOther)
				return
			}
			if !user.IsAdmin {
				h.AddFlash(w, r, "danger", "Akses ditolak. Anda harus menjadi Administrator.")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}
