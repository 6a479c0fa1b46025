package storage

import (
	"context"
	"sync"
	"time"
)

// Memory keeps every profile in process memory. It is the default backend
// for development and tests. Reads and writes both count as activity for
// Sweep.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]*memoryProfile
	now      func() time.Time
}

type memoryProfile struct {
	values  map[string]string
	touched time.Time
}

// NewMemory constructs an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{profiles: make(map[string]*memoryProfile), now: time.Now}
}

// Profile implements Provider.
func (m *Memory) Profile(profileID string) Store {
	return &memoryStore{backend: m, profile: profileID}
}

// Sweep implements Sweeper.
func (m *Memory) Sweep(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := m.now().Add(-retention)
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, p := range m.profiles {
		if p.touched.Before(cutoff) {
			delete(m.profiles, id)
			removed++
		}
	}
	return removed, nil
}

// Snapshot copies the values of a profile, mainly for tests and the CLI.
func (m *Memory) Snapshot(profileID string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string)
	if p, ok := m.profiles[profileID]; ok {
		for k, v := range p.values {
			out[k] = v
		}
	}
	return out
}

type memoryStore struct {
	backend *Memory
	profile string
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	p, ok := s.backend.profiles[s.profile]
	if !ok {
		return "", false, nil
	}
	p.touched = s.backend.now()
	value, ok := p.values[key]
	return value, ok, nil
}

func (s *memoryStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	p, ok := s.backend.profiles[s.profile]
	if !ok {
		p = &memoryProfile{values: make(map[string]string)}
		s.backend.profiles[s.profile] = p
	}
	p.values[key] = value
	p.touched = s.backend.now()
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	if p, ok := s.backend.profiles[s.profile]; ok {
		delete(p.values, key)
		p.touched = s.backend.now()
	}
	return nil
}
