package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/uleam/vehicle-gate/internal/rbac"
	"github.com/uleam/vehicle-gate/internal/storage"
)

// DefaultMaxCapacity is the parking capacity written on first run.
const DefaultMaxCapacity = 500

type seedAccount struct {
	user   User
	secret string
}

var seedAccounts = []seedAccount{
	{User{ID: 1, NationalID: "1310000000", Name: "Admin ULEAM", Email: "admin@uleam.edu.ec", Username: "admin", Role: rbac.RoleAdmin, Status: StatusActive}, "admin12345"},
	{User{ID: 2, NationalID: "1310000001", Name: "Guardia Principal", Email: "guardia@uleam.edu.ec", Username: "guardia", Role: rbac.RoleGuard, Status: StatusActive}, "guardia12345"},
	{User{ID: 3, NationalID: "1310000002", Name: "Supervisor Turno", Email: "supervisor@uleam.edu.ec", Username: "supervisor", Role: rbac.RoleSupervisor, Status: StatusActive}, "supervisor12345"},
}

var seedVehicles = []Vehicle{
	{ID: 1, Plate: "MAB-0001", Owner: "Admin ULEAM", DriverID: "1310000000", UserType: "Docente", VehicleType: "Auto", Status: "Autorizado"},
	{ID: 2, Plate: "PTE-1234", Owner: "Supervisor ULEAM", DriverID: "1310000002", UserType: "Administrativo", VehicleType: "Camioneta", Status: "Autorizado"},
}

// InitializeSeedData writes the first-run data set. Each key is checked on
// its own and only written when absent, so a partially seeded profile is
// completed and a seeded one is left untouched.
func (s *Service) InitializeSeedData(ctx context.Context) error {
	seeds := []struct {
		key   string
		build func() (string, error)
	}{
		{storage.KeyUsers, s.seedUsers},
		{storage.KeyVehicles, func() (string, error) { return encode(seedVehicles) }},
		{storage.KeyEntries, func() (string, error) { return "[]", nil }},
		{storage.KeyMaxCapacity, func() (string, error) { return strconv.Itoa(DefaultMaxCapacity), nil }},
	}
	for _, seed := range seeds {
		_, ok, err := s.store.Get(ctx, seed.key)
		if err != nil {
			return fmt.Errorf("auth: seed %s: %w", seed.key, err)
		}
		if ok {
			continue
		}
		value, err := seed.build()
		if err != nil {
			return fmt.Errorf("auth: seed %s: %w", seed.key, err)
		}
		if err := s.store.Set(ctx, seed.key, value); err != nil {
			return fmt.Errorf("auth: seed %s: %w", seed.key, err)
		}
		s.logger.Debug("seeded profile storage", slog.String("key", seed.key))
	}
	return nil
}

func (s *Service) seedUsers() (string, error) {
	hashes, err := seedHashes.get(s.bcryptCost)
	if err != nil {
		return "", err
	}
	users := make([]User, 0, len(seedAccounts))
	for i, acct := range seedAccounts {
		u := acct.user
		u.SecretHash = hashes[i]
		users = append(users, u)
	}
	return encode(users)
}

// seedHashes holds the seed account hashes per bcrypt cost. Every new
// profile is seeded, so the hashes are computed once per process.
var seedHashes = &hashCache{byCost: make(map[int][]string)}

type hashCache struct {
	mu     sync.Mutex
	byCost map[int][]string
}

func (c *hashCache) get(cost int) ([]string, error) {
	cost = normalizeCost(cost)
	c.mu.Lock()
	defer c.mu.Unlock()
	if hashes, ok := c.byCost[cost]; ok {
		return hashes, nil
	}
	hashes := make([]string, 0, len(seedAccounts))
	for _, acct := range seedAccounts {
		hash, err := HashSecret(acct.secret, cost)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	c.byCost[cost] = hashes
	return hashes, nil
}

// HashSecret hashes a plaintext secret with bcrypt at the given cost.
func HashSecret(secret string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), normalizeCost(cost))
	if err != nil {
		return "", fmt.Errorf("auth: hash secret: %w", err)
	}
	return string(hash), nil
}

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
