// Package caption turns a free-text concept into a top/bottom caption pair.
//
// PROVIDER CHAIN:
// Generation is expressed as an ordered list of providers, each returning a
// (Pair, error). The selection rule — first success wins — lives in one
// named function instead of nested try/catch. The chain is:
//
//	Gemini (generative-language backend)  →  may fail: network, auth, parse
//	deterministic fallback                →  never fails
//
// Failures on the way down are absorbed: callers get a pair or a validation
// error for empty input, never a transport error. A missing API key just
// means the chain is built without the Gemini provider.
package caption

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/memeforge/internal/apperror"
)

// Pair is one top/bottom caption combination.
type Pair struct {
	TopText    string `json:"topText"`
	BottomText string `json:"bottomText"`
}

// Suggestion is a caption pair offered for a template without a user concept.
type Suggestion struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
}

// Provider is one way of producing a caption pair. Providers report failure
// through the error return; they must not panic and must respect ctx.
type Provider interface {
	Name() string
	Generate(ctx context.Context, templateName, concept string) (Pair, error)
}

// firstSuccess walks the provider list in order and returns the first
// successful pair along with the name of the provider that produced it.
// Earlier failures are reported to the caller only through the log.
func firstSuccess(ctx context.Context, logger *slog.Logger, providers []Provider, templateName, concept string) (Pair, string, error) {
	var lastErr error
	for _, p := range providers {
		pair, err := p.Generate(ctx, templateName, concept)
		if err == nil {
			return pair, p.Name(), nil
		}
		lastErr = err
		logger.Debug("caption provider failed, trying next",
			slog.String("provider", p.Name()),
			slog.String("error", err.Error()),
		)
	}
	return Pair{}, "", lastErr
}

// Generator produces captions for the editor. It owns the provider chain.
type Generator struct {
	providers []Provider
	logger    *slog.Logger
}

// NewGenerator builds the provider chain. With an API key the chain is
// Gemini-then-fallback; without one the generator runs in fallback-only
// mode. The degradation is deliberately silent to users.
func NewGenerator(apiKey, geminiModel string, logger *slog.Logger) *Generator {
	providers := []Provider{}
	if apiKey == "" {
		logger.Warn("caption backend not configured — captions use deterministic fallback only")
	} else {
		providers = append(providers, newGeminiProvider(apiKey, geminiModel, logger))
	}
	providers = append(providers, fallbackProvider{})

	return &Generator{providers: providers, logger: logger}
}

// Generate returns a caption pair for the concept. Empty concepts are a
// caller error; everything else always yields a pair because the fallback
// provider cannot fail.
func (g *Generator) Generate(ctx context.Context, templateName, concept string) (Pair, error) {
	if strings.TrimSpace(concept) == "" {
		return Pair{}, apperror.ValidationFailed("concept", "concept is required")
	}

	pair, provider, err := firstSuccess(ctx, g.logger, g.providers, templateName, concept)
	if err != nil {
		// Unreachable while the fallback provider is in the chain, but the
		// chain is data, not a guarantee.
		return Pair{}, err
	}

	g.logger.Info("captions generated",
		slog.String("provider", provider),
		slog.String("template", templateName),
	)
	return pair, nil
}

// Suggestions returns three caption pairs for a template. The AI path is
// tried first; on any failure the fixed per-template table answers.
func (g *Generator) Suggestions(ctx context.Context, templateName string) ([]Suggestion, error) {
	templateName = strings.TrimSpace(templateName)
	if templateName == "" {
		return nil, apperror.ValidationFailed("template", "template name is required")
	}

	for _, p := range g.providers {
		if sp, ok := p.(suggestionProvider); ok {
			if suggestions, err := sp.Suggest(ctx, templateName); err == nil {
				return suggestions, nil
			}
		}
	}
	return fallbackSuggestions(templateName), nil
}

// Improve rewrites an existing caption into two punchier variants. There is
// no deterministic fallback here: without a configured backend the feature
// is simply unavailable.
func (g *Generator) Improve(ctx context.Context, text, templateName string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.ValidationFailed("text", "text to improve is required")
	}

	for _, p := range g.providers {
		if ip, ok := p.(improveProvider); ok {
			return ip.Improve(ctx, text, templateName)
		}
	}
	return nil, apperror.Unconfigured("caption improvement")
}

// Optional provider capabilities. Only the AI provider implements these.
type suggestionProvider interface {
	Suggest(ctx context.Context, templateName string) ([]Suggestion, error)
}

type improveProvider interface {
	Improve(ctx context.Context, text, templateName string) ([]string, error)
}
