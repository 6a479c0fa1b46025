package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/uleam/vehicle-gate/internal/storage"
)

// Registry keeps one Service per browser profile, the server-side stand-in
// for a browser tab's in-memory state. Evicting an entry is equivalent to a
// page reload: the next navigation re-hydrates it from storage.
type Registry struct {
	provider storage.Provider
	opts     []Option
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
	group   singleflight.Group
}

type registryEntry struct {
	service  *Service
	lastUsed time.Time
}

// NewRegistry constructs a Registry. opts are applied to every Service.
func NewRegistry(provider storage.Provider, opts ...Option) *Registry {
	return &Registry{
		provider: provider,
		opts:     opts,
		now:      time.Now,
		entries:  make(map[string]*registryEntry),
	}
}

// Service returns the profile's Service, constructing and seeding it on
// first use. Concurrent first requests for one profile share the work.
func (r *Registry) Service(ctx context.Context, profileID string) (*Service, error) {
	if profileID == "" {
		return nil, fmt.Errorf("auth: registry: empty profile id")
	}
	if svc := r.lookup(profileID); svc != nil {
		return svc, nil
	}
	v, err, _ := r.group.Do(profileID, func() (any, error) {
		if svc := r.lookup(profileID); svc != nil {
			return svc, nil
		}
		svc := NewService(r.provider.Profile(profileID), r.opts...)
		if err := svc.InitializeSeedData(ctx); err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.entries[profileID] = &registryEntry{service: svc, lastUsed: r.now()}
		r.mu.Unlock()
		return svc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Service), nil
}

// Evict drops services idle for longer than idle and reports how many.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, entry := range r.entries {
		if entry.lastUsed.Before(cutoff) {
			entry.service.Close()
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}

// Len reports how many profiles are resident.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) lookup(profileID string) *Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[profileID]
	if !ok {
		return nil
	}
	entry.lastUsed = r.now()
	return entry.service
}
