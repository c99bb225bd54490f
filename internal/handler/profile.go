package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/memeforge/internal/appstate"
	"github.com/sakif/memeforge/internal/auth"
)

// ProfileHandler serves per-user preferences: the UI theme and favorite
// templates. Favorites are scoped to the authenticated identity; the theme
// is installation-wide.
type ProfileHandler struct {
	state  *appstate.Store
	logger *slog.Logger
}

func NewProfileHandler(state *appstate.Store, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{state: state, logger: logger}
}

// HandleGetTheme returns the current theme.
//
// HTTP: GET /api/profile/theme
func (h *ProfileHandler) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"theme": h.state.Theme()})
}

// HandleSetTheme stores the theme.
//
// HTTP: PUT /api/profile/theme
// BODY: {"theme": "light"}
func (h *ProfileHandler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Theme != "dark" && req.Theme != "light" {
		http.Error(w, `{"error":"validation_error","message":"theme must be dark or light"}`, http.StatusBadRequest)
		return
	}

	if err := h.state.SetTheme(req.Theme); err != nil {
		h.logger.Error("failed to store theme", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})
}

// HandleListFavorites returns the caller's favorite template ids.
//
// HTTP: GET /api/profile/favorites
func (h *ProfileHandler) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.state.Favorites(identity.ID))
}

// HandleAddFavorite marks a template as a favorite.
//
// HTTP: PUT /api/profile/favorites/{templateID}
func (h *ProfileHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	templateID := r.PathValue("templateID")
	if templateID == "" {
		http.Error(w, "Template ID is required", http.StatusBadRequest)
		return
	}

	if err := h.state.AddFavorite(identity.ID, templateID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state.Favorites(identity.ID))
}

// HandleRemoveFavorite unmarks a favorite.
//
// HTTP: DELETE /api/profile/favorites/{templateID}
func (h *ProfileHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	if err := h.state.RemoveFavorite(identity.ID, r.PathValue("templateID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state.Favorites(identity.ID))
}
