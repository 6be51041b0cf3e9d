package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// FindOrCreate returns the user linked to the profile's provider id,
	// creating it on first sight. Concurrent first logins resolve to one user.
	FindOrCreate(ctx context.Context, profile Profile) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
