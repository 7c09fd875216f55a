package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
	"github.com/tiffinworks/commerce-backend/pkg/redis"
)

const snapshotName = "catalog"

// Snapshot is the serializable view of the whole store.
type Snapshot struct {
	CurrentDay string                     `json:"current_day,omitempty"`
	Days       map[string][]CategoryGroup `json:"days"`
}

// Snapshot captures the full store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days := make(map[string][]CategoryGroup, len(s.days))
	for day, groups := range s.days {
		days[day] = copyGroups(groups)
	}
	return Snapshot{CurrentDay: s.currentDay, Days: days}
}

// Restore replaces the full store state from a snapshot.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	s.days = make(map[string][]CategoryGroup, len(snap.Days))
	for day, groups := range snap.Days {
		s.days[day] = copyGroups(groups)
	}
	s.currentDay = snap.CurrentDay
	s.mu.Unlock()
	s.notify()
}

// SnapshotKeeper persists store snapshots to Redis so a restarted process
// does not start with an empty menu.
type SnapshotKeeper struct {
	store  *Store
	redis  redis.SnapshotStore
	logger *logger.Logger
	ttl    time.Duration
}

// NewSnapshotKeeper wires a keeper for the given store.
func NewSnapshotKeeper(store *Store, redisClient redis.SnapshotStore, logg *logger.Logger, ttl time.Duration) (*SnapshotKeeper, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	if redisClient == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &SnapshotKeeper{store: store, redis: redisClient, logger: logg, ttl: ttl}, nil
}

// Save writes the current store state.
func (k *SnapshotKeeper) Save(ctx context.Context) error {
	payload, err := json.Marshal(k.store.Snapshot())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal catalog snapshot")
	}
	if err := k.redis.Set(ctx, k.redis.SnapshotKey(snapshotName), string(payload), k.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist catalog snapshot")
	}
	return nil
}

// Load restores a previously saved snapshot. A missing snapshot is not an
// error; the store simply stays empty.
func (k *SnapshotKeeper) Load(ctx context.Context) error {
	raw, err := k.redis.Get(ctx, k.redis.SnapshotKey(snapshotName))
	if err != nil {
		if redis.IsNil(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read catalog snapshot")
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		if k.logger != nil {
			k.logger.Warn(ctx, "discarding unreadable catalog snapshot")
		}
		return nil
	}

	k.store.Restore(snap)
	return nil
}
