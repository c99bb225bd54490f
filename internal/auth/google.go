package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// userinfoURL is Google's OpenID userinfo endpoint.
const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUser is the slice of the userinfo response we care about.
type GoogleUser struct {
	ID      string `json:"id"` // Google's stable subject id
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization
// Code flow. The code-for-token exchange happens server-to-server with the
// client secret, so the access token never reaches the browser.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a provider with the given credentials.
// callbackURL must exactly match an authorized redirect URI configured in
// the Google Cloud console.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Configured reports whether OAuth credentials were supplied. Without
// them the app still works — demo mode covers everything locally.
func (p *GoogleProvider) Configured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthURL returns the Google authorization URL for the given state. The
// caller stores the state in a cookie and checks it on callback to stop
// CSRF on the OAuth flow.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for a Google user profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo API returned status %d", resp.StatusCode)
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if user.ID == "" {
		return nil, fmt.Errorf("auth: Google returned an invalid user (empty id)")
	}

	return &user, nil
}
