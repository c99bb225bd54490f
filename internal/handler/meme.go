package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/memeforge/internal/auth"
	"github.com/sakif/memeforge/internal/model"
	"github.com/sakif/memeforge/internal/service"
)

// MemeHandler manages the authenticated user's saved memes. Every route
// here sits behind RequireAuth, so the identity is always in the context.
type MemeHandler struct {
	memes  *service.MemeService
	logger *slog.Logger
}

func NewMemeHandler(memes *service.MemeService, logger *slog.Logger) *MemeHandler {
	return &MemeHandler{memes: memes, logger: logger}
}

// HandleList returns the caller's memes, newest first.
//
// HTTP: GET /api/memes
func (h *MemeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	memes, err := h.memes.ListByOwner(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memes)
}

// HandleCreate saves a finished meme.
//
// HTTP: POST /api/memes
func (h *MemeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var meme model.MemeRecord
	if err := json.NewDecoder(r.Body).Decode(&meme); err != nil {
		h.logger.Warn("invalid meme JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	saved, err := h.memes.Create(r.Context(), identity, &meme)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("meme saved",
		slog.String("id", saved.ID),
		slog.String("owner", identity.ID),
		slog.Bool("demo", identity.IsDemo()),
	)
	writeJSON(w, http.StatusCreated, saved)
}

// HandleDelete removes one of the caller's memes.
//
// HTTP: DELETE /api/memes/{id}
func (h *MemeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Meme ID is required", http.StatusBadRequest)
		return
	}

	if err := h.memes.Remove(r.Context(), identity, id); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("meme deleted", slog.String("id", id), slog.String("owner", identity.ID))
	w.WriteHeader(http.StatusNoContent)
}

// HandleView bumps a meme's view counter.
//
// HTTP: POST /api/memes/{id}/view
func (h *MemeHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	if err := h.memes.RecordView(r.Context(), identity, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleShare bumps a meme's share counter.
//
// HTTP: POST /api/memes/{id}/share
func (h *MemeHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	if err := h.memes.RecordShare(r.Context(), identity, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
