package pages

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/uleam/vehicle-gate/internal/storage"
)

// Stats summarises the registry data kept in a profile's storage.
type Stats struct {
	Capacity int
	Vehicles int
	Entries  int
}

// LoadStats reads the dashboard figures. Absent or malformed values count as
// zero.
func LoadStats(ctx context.Context, store storage.Store) (Stats, error) {
	var stats Stats
	raw, ok, err := store.Get(ctx, storage.KeyMaxCapacity)
	if err != nil {
		return stats, err
	}
	if ok {
		stats.Capacity, _ = strconv.Atoi(raw)
	}
	if stats.Vehicles, err = countItems(ctx, store, storage.KeyVehicles); err != nil {
		return stats, err
	}
	if stats.Entries, err = countItems(ctx, store, storage.KeyEntries); err != nil {
		return stats, err
	}
	return stats, nil
}

func countItems(ctx context.Context, store storage.Store, key string) (int, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	var items []json.RawMessage
	if json.Unmarshal([]byte(raw), &items) != nil {
		return 0, nil
	}
	return len(items), nil
}
