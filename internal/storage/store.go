// Package storage provides the durable per-profile key/value storage the
// gate persists users, seed data and the current session into.
package storage

import (
	"context"
	"errors"
	"time"
)

// Keys written by the gate. Values are JSON text.
const (
	KeyUsers          = "users"
	KeyVehicles       = "vehiculos"
	KeyEntries        = "ingresos"
	KeyMaxCapacity    = "MAX_CAPACITY"
	KeyCurrentSession = "currentSession"
)

// ErrEmptyKey is returned for operations on an empty key.
var ErrEmptyKey = errors.New("storage: empty key")

// Store is a synchronous string key/value store scoped to one browser profile.
// Get reports ok=false for absent keys; backend failures are returned as errors.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Provider opens the Store that belongs to a browser profile.
type Provider interface {
	Profile(profileID string) Store
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(profileID string) Store

// Profile implements Provider.
func (f ProviderFunc) Profile(profileID string) Store {
	return f(profileID)
}

// Sweeper removes profiles that have not been written to for longer than the
// retention window. It reports how many profiles were removed.
type Sweeper interface {
	Sweep(ctx context.Context, retention time.Duration) (int64, error)
}
