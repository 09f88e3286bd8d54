package repository

import (
	"context"

	"github.com/trahulprabhu38/obe-analytics-api/internal/models"
)

// UserRepository reads platform accounts for authentication.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new user repository.
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

// FindByEmail returns one user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, name, role, active, created_at, updated_at
        FROM users WHERE email = $1`
	var user models.User
	if err := r.q.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns one user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, name, role, active, created_at, updated_at
        FROM users WHERE id = $1`
	var user models.User
	if err := r.q.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}
