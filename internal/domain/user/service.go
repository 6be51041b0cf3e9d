package user

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log.Named("user")}
}

// Login resolves the identity provider profile to a stored user, creating
// one on first login.
func (s *Service) Login(ctx context.Context, profile Profile) (*User, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindOrCreate(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	s.log.Info("User logged in", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Get returns the user with id, or ErrUserNotFound.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
