package model

import "time"

// Identity kinds. Exactly one identity is active per session: either a
// provider-authenticated one or the locally-synthesized demo identity.
const (
	KindReal = "real"
	KindDemo = "demo"
)

// The demo identity is fixed and synthetic — it enables full feature use
// without a backend account. Everything it saves goes to the local store.
const (
	DemoUserID    = "demo-user-123"
	DemoUserEmail = "demo@memeforge.local"
	DemoUserName  = "Meme Master"
)

// Identity is the session-level view of whoever is making requests.
// The core treats it as opaque beyond these fields.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	Kind        string `json:"kind"` // KindReal or KindDemo
}

// IsDemo reports whether this is the local demo identity.
func (i Identity) IsDemo() bool {
	return i.Kind == KindDemo
}

// DemoIdentity returns the fixed synthetic identity used when no real
// authentication has occurred.
func DemoIdentity() Identity {
	return Identity{
		ID:          DemoUserID,
		Email:       DemoUserEmail,
		DisplayName: DemoUserName,
		Kind:        KindDemo,
	}
}

// User is a provider-authenticated account persisted in the user store.
//
// The primary key is the provider's stable subject id. We keep the profile
// fields the auth provider exposes; they're refreshed on every sign-in.
type User struct {
	ID          string    `json:"id"          db:"id"`
	Email       string    `json:"email"       db:"email"`
	DisplayName string    `json:"displayName" db:"display_name"`
	PhotoURL    string    `json:"photoUrl"    db:"photo_url"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// Identity converts a stored user into the session identity shape.
func (u *User) Identity() Identity {
	return Identity{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Kind:        KindReal,
	}
}
