// Package template provides the meme template catalog.
//
// Templates come from an imgflip-style HTTP API. The catalog is cached in
// process with a TTL, and every failure mode — transport error, non-2xx,
// malformed body, API-level error flag — falls back to a fixed local catalog
// so the editor always has something to offer. The fallback is a feature,
// not an error path: callers of Templates never see a fetch failure.
package template

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sakif/memeforge/internal/apperror"
	"github.com/sakif/memeforge/internal/model"
)

const (
	// DefaultBaseURL is the public imgflip API.
	DefaultBaseURL = "https://api.imgflip.com"

	catalogKey = "catalog"
	cacheTTL   = 10 * time.Minute
)

// Source fetches and caches the template catalog.
//
// Refreshes are serialized: while one fetch is in flight, a second trigger
// waits on the mutex and then reuses the freshly-cached result instead of
// issuing a duplicate request. None of the calls are cancelled mid-flight —
// there's one pending fetch at a time, nothing more clever than that.
type Source struct {
	baseURL string
	client  *http.Client
	cache   *gocache.Cache
	logger  *slog.Logger

	refreshMu sync.Mutex
}

// NewSource creates a Source against the given API base URL (empty means
// the public default).
func NewSource(baseURL string, logger *slog.Logger) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   gocache.New(cacheTTL, cacheTTL),
		logger:  logger,
	}
}

// Templates returns the current catalog, fetching it if the cache is cold.
// It never returns an error: a failed fetch yields the fixed local catalog.
func (s *Source) Templates(ctx context.Context) []model.Template {
	if cached, ok := s.cache.Get(catalogKey); ok {
		return cached.([]model.Template)
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// A concurrent refresh may have filled the cache while we waited.
	if cached, ok := s.cache.Get(catalogKey); ok {
		return cached.([]model.Template)
	}

	templates, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("template API unavailable, serving fallback catalog",
			slog.String("error", err.Error()),
		)
		templates = FallbackCatalog()
	}

	s.cache.Set(catalogKey, templates, cacheTTL)
	return templates
}

// ByCategory filters the catalog; an empty or "All" category returns
// everything.
func (s *Source) ByCategory(ctx context.Context, category string) []model.Template {
	templates := s.Templates(ctx)
	if category == "" || strings.EqualFold(category, "All") {
		return templates
	}

	filtered := make([]model.Template, 0, len(templates))
	for _, t := range templates {
		if strings.EqualFold(t.Category, category) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// ByID looks a template up in the cached catalog.
func (s *Source) ByID(ctx context.Context, id string) (*model.Template, error) {
	for _, t := range s.Templates(ctx) {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, apperror.NotFound("template", id)
}

// imgflip response shapes. The API wraps everything in a success envelope;
// success=false carries an error_message instead of data.
type imgflipResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message"`
	Data         struct {
		Memes []imgflipMeme `json:"memes"`
	} `json:"data"`
}

type imgflipMeme struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	BoxCount int    `json:"box_count"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

func (s *Source) fetch(ctx context.Context) ([]model.Template, error) {
	url := s.baseURL + "/get_memes"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.Unavailable("template API", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperror.Unavailable("template API", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Unavailable("template API",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload imgflipResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperror.ParseFailed("template API", err.Error())
	}
	if !payload.Success {
		return nil, apperror.Unavailable("template API",
			fmt.Errorf("API error: %s", payload.ErrorMessage))
	}
	if len(payload.Data.Memes) == 0 {
		return nil, apperror.ParseFailed("template API", "empty catalog")
	}

	templates := make([]model.Template, 0, len(payload.Data.Memes))
	for _, m := range payload.Data.Memes {
		templates = append(templates, model.Template{
			ID:        m.ID,
			Name:      m.Name,
			ImageURL:  m.URL,
			Category:  Categorize(m.Name),
			SlotCount: m.BoxCount,
			Width:     m.Width,
			Height:    m.Height,
		})
	}

	s.logger.Info("template catalog refreshed", slog.Int("count", len(templates)))
	return templates, nil
}

// Categorize buckets a template by well-known name fragments. Anything
// unrecognized lands in Popular.
func Categorize(name string) string {
	n := strings.ToLower(name)

	contains := func(fragments ...string) bool {
		for _, f := range fragments {
			if strings.Contains(n, f) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("drake", "distracted boyfriend", "woman yelling at cat",
		"two buttons", "success kid", "bad luck brian", "overly attached girlfriend"):
		return "Popular"
	case contains("expanding brain", "change my mind", "this is fine",
		"philosoraptor", "ancient aliens", "y u no", "first world problems"):
		return "Classic"
	case contains("mario", "pokemon", "gaming", "minecraft", "gamer"):
		return "Gaming"
	case contains("reaction", "face you make", "surprised pikachu",
		"hide the pain", "awkward", "facepalm"):
		return "Reaction"
	case contains("stonks", "panik", "kalm", "chad", "wojak", "pepe"):
		return "Trending"
	default:
		return "Popular"
	}
}

// FallbackCatalog is the fixed local catalog served when the API is
// unreachable. Eight entries spanning every category the UI filters on.
func FallbackCatalog() []model.Template {
	return []model.Template{
		{ID: "fallback-1", Name: "Drake Pointing", ImageURL: "https://images.unsplash.com/photo-1633332755192-727a05c4013d?w=400&h=400&fit=crop", Category: "Popular", SlotCount: 2, Width: 400, Height: 400},
		{ID: "fallback-2", Name: "Distracted Boyfriend", ImageURL: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=400&h=400&fit=crop", Category: "Popular", SlotCount: 3, Width: 400, Height: 400},
		{ID: "fallback-3", Name: "Woman Yelling at Cat", ImageURL: "https://images.unsplash.com/photo-1544005313-94ddf0286df2?w=400&h=400&fit=crop", Category: "Trending", SlotCount: 2, Width: 400, Height: 400},
		{ID: "fallback-4", Name: "Expanding Brain", ImageURL: "https://images.unsplash.com/photo-1507238691740-187a5b1d37b8?w=400&h=400&fit=crop", Category: "Classic", SlotCount: 4, Width: 400, Height: 400},
		{ID: "fallback-5", Name: "Change My Mind", ImageURL: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=400&h=400&fit=crop", Category: "Classic", SlotCount: 1, Width: 400, Height: 400},
		{ID: "fallback-6", Name: "This Is Fine", ImageURL: "https://images.unsplash.com/photo-1574169208507-84376144848b?w=400&h=400&fit=crop", Category: "Reaction", SlotCount: 1, Width: 400, Height: 400},
		{ID: "fallback-7", Name: "Success Kid", ImageURL: "https://images.unsplash.com/photo-1548199973-03cce0bbc87b?w=400&h=400&fit=crop", Category: "Classic", SlotCount: 1, Width: 400, Height: 400},
		{ID: "fallback-8", Name: "Surprised Pikachu", ImageURL: "https://images.unsplash.com/photo-1551698618-1dfe5d97d256?w=400&h=400&fit=crop", Category: "Gaming", SlotCount: 1, Width: 400, Height: 400},
	}
}
