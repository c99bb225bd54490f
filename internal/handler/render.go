package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/memeforge/internal/compositor"
	"github.com/sakif/memeforge/internal/model"
	"github.com/sakif/memeforge/internal/template"
)

// RenderHandler composites finished memes server-side.
type RenderHandler struct {
	templates *template.Source
	logger    *slog.Logger
}

func NewRenderHandler(templates *template.Source, logger *slog.Logger) *RenderHandler {
	return &RenderHandler{templates: templates, logger: logger}
}

type renderRequest struct {
	TemplateID string                 `json:"templateId"`
	ImageURL   string                 `json:"imageUrl"` // overrides the template's image when set
	Elements   []model.OverlayElement `json:"overlayElements"`
}

// HandleRender draws the overlay elements onto the template image and
// returns the finished PNG.
//
// HTTP: POST /api/render
// BODY: {"templateId": "181913649", "overlayElements": [...]}
func (h *RenderHandler) HandleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid render request", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	imageURL := req.ImageURL
	if imageURL == "" {
		tmpl, err := h.templates.ByID(r.Context(), req.TemplateID)
		if err != nil {
			writeError(w, err)
			return
		}
		imageURL = tmpl.ImageURL
	}

	frame, err := compositor.Decode(r.Context(), imageURL)
	if err != nil {
		writeError(w, err)
		return
	}

	rendered, err := compositor.Render(frame, req.Elements)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(rendered); err != nil {
		h.logger.Error("failed to write rendered image", slog.String("error", err.Error()))
	}
}
