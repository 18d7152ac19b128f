package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/blocniti/blocniti/internal/auth"
	"github.com/blocniti/blocniti/internal/logging"
	"github.com/blocniti/blocniti/pkg/repository"
)

const stateCookieName = "blocniti_login_state"

type AuthHandler struct {
	userRepo   repository.UserRepo
	sessions   *auth.Sessions
	provider   *auth.Provider
	cookieName string
	secure     bool
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, sessions *auth.Sessions, provider *auth.Provider, cookieName string, secure bool) *AuthHandler {
	if cookieName == "" {
		cookieName = auth.DefaultCookieName
	}
	return &AuthHandler{userRepo: ur, sessions: sessions, provider: provider, cookieName: cookieName, secure: secure}
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		c.MaxAge = int(maxAge.Seconds())
	} else {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

// Login redirects the browser to the identity provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := auth.NewState()
	loginURL, err := h.provider.LoginURL(state)
	if err != nil {
		writeInternal(w, r, "Login is not available", err)
		return
	}
	h.setCookie(w, stateCookieName, state, 10*time.Minute)
	http.Redirect(w, r, loginURL, http.StatusFound)
}

// Callback completes a login: it checks state, verifies the provider's ID
// token, upserts the user and starts a session.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := r.Cookie(stateCookieName)
	if err != nil || c.Value == "" || q.Get("state") != c.Value {
		writeError(w, http.StatusBadRequest, "Invalid login state")
		return
	}
	h.setCookie(w, stateCookieName, "", 0)

	identity, err := h.provider.VerifyIdentity(q.Get("token"))
	if err != nil {
		logging.FromContext(r.Context(), logger).Warn("identity token rejected", slog.Any("err", err))
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userRepo.UpsertUser(r.Context(), identity)
	if err != nil {
		writeInternal(w, r, "Failed to save user", err)
		return
	}

	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		writeInternal(w, r, "Failed to start session", err)
		return
	}
	h.setCookie(w, h.cookieName, token, h.sessions.Duration())
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout drops the session cookie. Sessions are stateless, so a token held
// elsewhere stays valid until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, h.cookieName, "", 0)
	http.Redirect(w, r, "/", http.StatusFound)
}

// CurrentUser returns the authenticated user's record.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	user, err := h.userRepo.GetUser(r.Context(), id)
	if err != nil {
		writeInternal(w, r, "Failed to fetch user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, user, http.StatusOK)
}
