package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/jagokomputer/jagokursus/internal/storage"
)

// HandleGoogleLogin starts the OAuth dance. Only routed when OAuth is
// configured.
func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := randomState()
	session, _ := h.Store.Get(r, sessionName)
	session.Values["oauth_state"] = state
	session.Save(r, w)

	http.Redirect(w, r, h.OAuth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback exchanges the code, upserts the account and logs the
// user in.
func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, sessionName)
	wantState, _ := session.Values["oauth_state"].(string)
	delete(session.Values, "oauth_state")
	session.Save(r, w)

	if wantState == "" || r.URL.Query().Get("state") != wantState {
		http.Error(w, "Invalid state", http.StatusUnauthorized)
		return
	}

	token, err := h.OAuth.Exchange(context.Background(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "Token exchange error", http.StatusBadRequest)
		return
	}

	client := h.OAuth.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		http.Error(w, "Google API error", http.StatusBadRequest)
		return
	}
	defer resp.Body.Close()

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		http.Error(w, "JSON decode error", http.StatusInternalServerError)
		return
	}

	user, err := storage.UpsertGoogleUser(h.DB, info.ID, info.Email, info.Name)
	if err != nil {
		http.Error(w, "DB save error", http.StatusInternalServerError)
		return
	}

	h.login(w, r, user)
	storage.RecordActivity(h.DB, user.ID, "login", map[string]interface{}{"via": "google"})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func randomState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
