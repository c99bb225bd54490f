// GO TESTING BASICS:
// 1. Test files MUST end in _test.go — Go's tooling auto-discovers them
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v  (-v = verbose, shows each test name)
package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	// Each test case checks that errors.Is() correctly identifies the error kind
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("meme", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("concept", "concept is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("you can only delete your own memes"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("sign in to save memes"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Unavailable wraps ErrUnavailable",
			err:       Unavailable("template API", errors.New("connection refused")),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "ParseFailed wraps ErrParse",
			err:       ParseFailed("caption backend", "no JSON object in response"),
			target:    ErrParse,
			wantMatch: true,
		},
		{
			name:      "Unconfigured wraps ErrUnconfigured",
			err:       Unconfigured("caption backend"),
			target:    ErrUnconfigured,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrForbidden",
			err:       NotFound("meme", "abc123"),
			target:    ErrForbidden,
			wantMatch: false,
		},
		{
			name:      "Unavailable does NOT match ErrParse",
			err:       Unavailable("template API", errors.New("timeout")),
			target:    ErrParse,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("meme", "abc123"),
			wantMessage: "meme not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("concept", "concept is required"),
			wantMessage: "concept is required",
		},
		{
			name:        "Unconfigured names the feature",
			err:         Unconfigured("caption backend"),
			wantMessage: "caption backend is not configured",
		},
		{
			name:        "ParseFailed names the backend and detail",
			err:         ParseFailed("caption backend", "unbalanced braces"),
			wantMessage: "caption backend returned a malformed response: unbalanced braces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	// Unwrap() must return the underlying sentinel — that's what makes
	// errors.Is() walk the chain.
	err := Forbidden("nope")
	if unwrapped := err.Unwrap(); unwrapped != ErrForbidden {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrForbidden)
	}
}

func TestValidationFailedField(t *testing.T) {
	// The Field lets handlers tell the frontend WHICH field was invalid.
	err := ValidationFailed("templateName", "template name is required")
	if err.Field != "templateName" {
		t.Errorf("Field = %q, want %q", err.Field, "templateName")
	}
}
