package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/memeforge/internal/appstate"
	"github.com/sakif/memeforge/internal/auth"
	"github.com/sakif/memeforge/internal/model"
	"github.com/sakif/memeforge/internal/repository"
)

const sessionLifetime = 24 * time.Hour

// AuthHandler manages sign-in: the Google OAuth flow, the local demo
// session, logout, and the current-identity endpoint. Exactly one identity
// is active at a time — a real sign-in clears any demo session and vice
// versa, since both end up in the same session cookie.
type AuthHandler struct {
	google *auth.GoogleProvider
	tokens *auth.TokenService
	users  repository.UserRepository
	state  *appstate.Store
	logger *slog.Logger
}

func NewAuthHandler(
	google *auth.GoogleProvider,
	tokens *auth.TokenService,
	users repository.UserRepository,
	state *appstate.Store,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		google: google,
		tokens: tokens,
		users:  users,
		state:  state,
		logger: logger,
	}
}

// HandleGoogleLogin redirects the browser to Google's authorization page.
//
// HTTP: GET /auth/google/login
//
// The random state lands in a short-lived cookie; the callback checks it
// to stop CSRF on the OAuth flow.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.google.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "Google sign-in is not configured; try demo mode",
		})
		return
	}

	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth flow: verifies the state,
// exchanges the code for a profile, upserts the user, clears any demo
// session, and issues the session cookie.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: Google exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	user := &model.User{
		ID:          gUser.ID,
		Email:       gUser.Email,
		DisplayName: gUser.Name,
		PhotoURL:    gUser.Picture,
	}
	if err := h.users.Upsert(r.Context(), user); err != nil {
		h.logger.Error("auth callback: upsert failed",
			slog.String("googleID", gUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	// A real sign-in ends any demo session.
	if err := h.state.ClearDemoIdentity(); err != nil {
		h.logger.Warn("auth callback: clearing demo identity failed", slog.String("error", err.Error()))
	}

	h.logger.Info("user authenticated",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	if err := h.issueSession(w, user.Identity()); err != nil {
		h.logger.Error("auth callback: token generation failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDemoLogin starts a demo session with the fixed local identity.
// No account, no provider round-trip — everything the demo user saves goes
// to the local demo store.
//
// HTTP: POST /auth/demo
func (h *AuthHandler) HandleDemoLogin(w http.ResponseWriter, r *http.Request) {
	demo := model.DemoIdentity()

	if err := h.state.SetDemoIdentity(demo); err != nil {
		h.logger.Error("demo login: storing identity failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	if err := h.issueSession(w, demo); err != nil {
		h.logger.Error("demo login: token generation failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("demo session started")
	writeJSON(w, http.StatusOK, demo)
}

// HandleLogout clears the session cookie, and the stored demo identity if
// that's what the session was.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity.IsDemo() {
		if err := h.state.ClearDemoIdentity(); err != nil {
			h.logger.Warn("logout: clearing demo identity failed", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the current identity. Real identities are refreshed
// from the user store so profile updates show up mid-session; demo
// identities come straight from the token.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	if identity.IsDemo() {
		writeJSON(w, http.StatusOK, identity)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), identity.ID)
	if err != nil {
		h.logger.Error("HandleMe: user not found", slog.String("userID", identity.ID))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Identity())
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, identity model.Identity) error {
	tokenStr, err := h.tokens.Generate(identity)
	if err != nil {
		return err
	}

	// HttpOnly keeps the JWT away from page scripts; SameSite=Lax keeps it
	// off cross-site POSTs. Secure should be on behind HTTPS.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
