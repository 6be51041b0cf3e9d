package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pricetrack/internal/domain/user"
)

type UserRepository struct {
	db *DB
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindOrCreate(ctx context.Context, profile user.Profile) (*user.User, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO users (github_id, username)
		VALUES ($1, $2)
		ON CONFLICT (github_id) DO UPDATE SET github_id = EXCLUDED.github_id
		RETURNING id, github_id, username, created_at
	`

	var u user.User
	err := r.db.QueryRowContext(ctx, query, profile.ID, profile.Username).Scan(
		&u.ID, &u.GitHubID, &u.Username, &u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}

	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, user.ErrUserNotFound
	}

	query := `
		SELECT id, github_id, username, created_at
		FROM users
		WHERE id = $1
	`

	var u user.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.GitHubID, &u.Username, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	query := `
		SELECT id, github_id, username, created_at
		FROM users
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.GitHubID, &u.Username, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}
