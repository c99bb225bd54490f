package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sakif/memeforge/internal/model"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func realIdentity() model.Identity {
	return model.Identity{
		ID:          "google-sub-42",
		Email:       "alex@example.com",
		DisplayName: "Alex",
		PhotoURL:    "https://example.com/a.png",
		Kind:        model.KindReal,
	}
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Error("expected an error for a short secret")
	}
}

func TestGenerateAndValidate_RoundTripsIdentity(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Generate(realIdentity())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("expected a three-part JWT, got %q", token)
	}

	got, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != realIdentity() {
		t.Errorf("identity did not round-trip: %+v", got)
	}
}

func TestValidate_DemoIdentity(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Generate(model.DemoIdentity())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !got.IsDemo() {
		t.Errorf("expected a demo identity, got kind %q", got.Kind)
	}
	if got.ID != model.DemoUserID {
		t.Errorf("expected the fixed demo id, got %q", got.ID)
	}
}

func TestValidate_RejectsExpiredToken(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateWithDuration(realIdentity(), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := svc.Validate(token); err == nil {
		t.Error("expected an error for an expired token")
	}
}

func TestValidate_RejectsWrongSecret(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := svc.Generate(realIdentity())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := other.Validate(token); err == nil {
		t.Error("expected an error for a token signed with another secret")
	}
}

func TestValidate_RejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t)

	for _, tok := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := svc.Validate(tok); err == nil {
			t.Errorf("expected an error for token %q", tok)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	svc := newTestTokenService(t)

	var seen model.Identity
	handler := RequireAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No cookie → 401.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/memes", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a cookie, got %d", rec.Code)
	}

	// Valid cookie → identity in context.
	token, _ := svc.Generate(realIdentity())
	req := httptest.NewRequest(http.MethodGet, "/api/memes", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid cookie, got %d", rec.Code)
	}
	if seen.ID != "google-sub-42" {
		t.Errorf("handler saw identity %+v", seen)
	}
}

func TestOptionalAuth_PassesAnonymousThrough(t *testing.T) {
	svc := newTestTokenService(t)

	var ok bool
	handler := OptionalAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("anonymous request should pass, got %d", rec.Code)
	}
	if ok {
		t.Error("anonymous request should have no identity in context")
	}
}
