package domain

import (
	"strings"
	"time"
)

// AnonymousAuthorName is shown in place of an author name when the user
// has no first or last name set.
const AnonymousAuthorName = "anonymous user"

// User represents a registered user in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenPair bundles an access token with its refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// DisplayName returns the user's public name. Users with neither a first
// nor a last name are shown under a fixed anonymous label.
func (u *User) DisplayName() string {
	return AuthorDisplayName(u.FirstName, u.LastName)
}

// AuthorDisplayName builds a public display name from name parts.
func AuthorDisplayName(firstName, lastName string) string {
	name := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	if name == "" {
		return AnonymousAuthorName
	}
	return name
}
