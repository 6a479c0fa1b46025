package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uleam/vehicle-gate/internal/storage"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	ListUsers(ctx context.Context) ([]User, error)
	SaveUsers(ctx context.Context, users []User) error
	LoadSession(ctx context.Context) (*Session, error)
	SaveSession(ctx context.Context, sess *Session) error
	DeleteSession(ctx context.Context) error
}

// StoreRepository implements Repository on top of a profile Store.
type StoreRepository struct {
	store storage.Store
}

// NewRepository constructs a repository for one profile.
func NewRepository(store storage.Store) *StoreRepository {
	return &StoreRepository{store: store}
}

// ListUsers returns the stored users. Absent or malformed data yields an
// empty list.
func (r *StoreRepository) ListUsers(ctx context.Context) ([]User, error) {
	raw, ok, err := r.store.Get(ctx, storage.KeyUsers)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var users []User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, nil
	}
	return users, nil
}

// SaveUsers replaces the stored user collection.
func (r *StoreRepository) SaveUsers(ctx context.Context, users []User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("auth: encode users: %w", err)
	}
	return r.store.Set(ctx, storage.KeyUsers, string(data))
}

// LoadSession returns the persisted session, or nil when absent or malformed.
// A session without a user id or role, such as a stored null or {}, is
// malformed.
func (r *StoreRepository) LoadSession(ctx context.Context) (*Session, error) {
	raw, ok, err := r.store.Get(ctx, storage.KeyCurrentSession)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, nil
	}
	if sess.UserID == 0 || sess.Role == "" {
		return nil, nil
	}
	return &sess, nil
}

// SaveSession persists sess as the profile's only session.
func (r *StoreRepository) SaveSession(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("auth: encode session: %w", err)
	}
	return r.store.Set(ctx, storage.KeyCurrentSession, string(data))
}

// DeleteSession removes the persisted session.
func (r *StoreRepository) DeleteSession(ctx context.Context) error {
	return r.store.Delete(ctx, storage.KeyCurrentSession)
}

var _ Repository = (*StoreRepository)(nil)
