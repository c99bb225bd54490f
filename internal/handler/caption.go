package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/memeforge/internal/caption"
)

// CaptionHandler exposes AI caption generation. Every endpoint degrades
// gracefully: when no AI backend is configured or reachable, generation
// falls back to rule-based captions inside the generator.
type CaptionHandler struct {
	captions *caption.Generator
	logger   *slog.Logger
}

func NewCaptionHandler(captions *caption.Generator, logger *slog.Logger) *CaptionHandler {
	return &CaptionHandler{captions: captions, logger: logger}
}

type generateRequest struct {
	TemplateName string `json:"templateName"`
	Concept      string `json:"concept"`
}

// HandleGenerate produces a top/bottom caption pair for a concept.
//
// HTTP: POST /api/captions/generate
// BODY: {"templateName": "Drake Pointing", "concept": "me trying to cook"}
func (h *CaptionHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid caption request", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	pair, err := h.captions.Generate(r.Context(), req.TemplateName, req.Concept)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// HandleSuggestions returns caption ideas for a template.
//
// HTTP: GET /api/captions/suggestions?template=Drake+Pointing
func (h *CaptionHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.captions.Suggestions(r.Context(), r.URL.Query().Get("template"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

type improveRequest struct {
	Text         string `json:"text"`
	TemplateName string `json:"templateName"`
}

// HandleImprove returns punchier variants of caption text the user already
// wrote. Unlike generation there is no rule-based fallback, so this returns
// 503 when no AI backend is configured.
//
// HTTP: POST /api/captions/improve
func (h *CaptionHandler) HandleImprove(w http.ResponseWriter, r *http.Request) {
	var req improveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid improve request", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	variants, err := h.captions.Improve(r.Context(), req.Text, req.TemplateName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, variants)
}
