package user

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User is an account created on first login through the identity provider.
// GitHubID is unique across users.
type User struct {
	ID        string    `json:"id"`
	GitHubID  string    `json:"-"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is the subset of the identity provider's profile the app keeps.
type Profile struct {
	ID       string
	Username string
}

func (p Profile) Validate() error {
	if p.ID == "" {
		return errors.New("provider id is required")
	}
	return nil
}
