// Package handler wires the HTTP surface to the services below it.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/memeforge/internal/overlay"
	"github.com/sakif/memeforge/internal/template"
)

// TemplateHandler serves the meme template catalog.
type TemplateHandler struct {
	templates *template.Source
	logger    *slog.Logger
}

func NewTemplateHandler(templates *template.Source, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

// HandleList returns the catalog, optionally filtered by category.
//
// HTTP: GET /api/templates?category=Classic
//
// This endpoint never fails: an unreachable upstream serves the built-in
// fallback catalog instead.
func (h *TemplateHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	writeJSON(w, http.StatusOK, h.templates.ByCategory(r.Context(), category))
}

// HandleGet returns one template by id.
//
// HTTP: GET /api/templates/{id}
func (h *TemplateHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.templates.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// HandleSlots returns the initial overlay elements for a template, laid out
// for its declared text slot count.
//
// HTTP: GET /api/templates/{id}/slots
func (h *TemplateHandler) HandleSlots(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.templates.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overlay.InitSlots(tmpl.SlotCount))
}
