package users

import (
	"context"

	"github.com/uleam/vehicle-gate/internal/auth"
	"github.com/uleam/vehicle-gate/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]auth.User, error)
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	accounts, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(accounts))
	for _, u := range accounts {
		out = append(out, fromAccount(u))
	}
	return out, nil
}

// GetUser returns the user with id.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	accounts, err := s.repo.ListUsers(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range accounts {
		if u.ID == id {
			return fromAccount(u), nil
		}
	}
	return User{}, shared.ErrNotFound
}
