package caption

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/sakif/memeforge/internal/apperror"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiProvider asks the Gemini API for captions. Every failure mode —
// client construction, transport, quota, malformed output — surfaces as an
// error so the chain can fall through to the deterministic provider.
type geminiProvider struct {
	apiKey string
	model  string
	logger *slog.Logger

	once      sync.Once
	client    *genai.Client
	clientErr error
}

func newGeminiProvider(apiKey, model string, logger *slog.Logger) *geminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiProvider{apiKey: apiKey, model: model, logger: logger}
}

func (p *geminiProvider) Name() string { return "gemini" }

// init builds the API client once. Construction is deferred to first use so
// the server can start (and the fallback can serve) even if the client
// cannot be created.
func (p *geminiProvider) init(ctx context.Context) error {
	p.once.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.apiKey})
		if err != nil {
			p.clientErr = apperror.Unavailable("caption backend", err)
			return
		}
		p.client = client
	})
	return p.clientErr
}

func (p *geminiProvider) generateText(ctx context.Context, prompt string) (string, error) {
	if err := p.init(ctx); err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return "", apperror.Unavailable("caption backend", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperror.ParseFailed("caption backend", "empty response")
	}
	return text, nil
}

func (p *geminiProvider) Generate(ctx context.Context, templateName, concept string) (Pair, error) {
	prompt := fmt.Sprintf(`Write meme captions for the "%s" template about: %q

Rules:
- Short, punchy, funny
- CRITICAL: Respond ONLY with valid JSON, no explanations

JSON format:
{"topText": "text", "bottomText": "text"}`, templateName, concept)

	text, err := p.generateText(ctx, prompt)
	if err != nil {
		return Pair{}, err
	}

	var pair Pair
	if err := unmarshalLoose(text, &pair); err != nil {
		return Pair{}, err
	}
	if pair.TopText == "" && pair.BottomText == "" {
		return Pair{}, apperror.ParseFailed("caption backend", "response has no caption fields")
	}
	return pair, nil
}

func (p *geminiProvider) Suggest(ctx context.Context, templateName string) ([]Suggestion, error) {
	prompt := fmt.Sprintf(`Generate 3 meme caption suggestions for the "%s" template.

Rules:
- Each suggestion needs top and bottom text
- CRITICAL: Respond ONLY with valid JSON, no explanations

JSON format:
{"suggestion1": {"top": "", "bottom": ""}, "suggestion2": {"top": "", "bottom": ""}, "suggestion3": {"top": "", "bottom": ""}}`, templateName)

	text, err := p.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Suggestion1 Suggestion `json:"suggestion1"`
		Suggestion2 Suggestion `json:"suggestion2"`
		Suggestion3 Suggestion `json:"suggestion3"`
	}
	if err := unmarshalLoose(text, &raw); err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, 3)
	for _, s := range []Suggestion{raw.Suggestion1, raw.Suggestion2, raw.Suggestion3} {
		if s.Top != "" || s.Bottom != "" {
			suggestions = append(suggestions, s)
		}
	}
	if len(suggestions) == 0 {
		return nil, apperror.ParseFailed("caption backend", "response has no suggestions")
	}
	return suggestions, nil
}

func (p *geminiProvider) Improve(ctx context.Context, text, templateName string) ([]string, error) {
	prompt := fmt.Sprintf(`Improve this meme caption to make it funnier: %q

Template: %s

Rules:
- Keep the same general meaning
- Make it more punchy and memorable
- IMPORTANT: Respond ONLY with valid JSON: {"improved1": "text", "improved2": "text"}`, text, templateName)

	reply, err := p.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Improved1 string `json:"improved1"`
		Improved2 string `json:"improved2"`
	}
	if err := unmarshalLoose(reply, &raw); err != nil {
		return nil, err
	}
	if raw.Improved1 == "" && raw.Improved2 == "" {
		return nil, apperror.ParseFailed("caption backend", "response has no improvements")
	}
	return []string{raw.Improved1, raw.Improved2}, nil
}

// extractJSON cleans a model reply down to the JSON object it should
// contain: code-fence markers are stripped, then the text is trimmed to the
// outermost {...} span. Models love wrapping JSON in markdown and prose;
// this undoes both.
func extractJSON(s string) (string, error) {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", apperror.ParseFailed("caption backend", "no JSON object in response")
	}
	return s[start : end+1], nil
}

func unmarshalLoose(s string, v any) error {
	cleaned, err := extractJSON(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return apperror.ParseFailed("caption backend", err.Error())
	}
	return nil
}
