// Package snapshot persists named plan snapshots in Redis.  Snapshots
// are the save/load mechanism for the planner UI: each one is a JSON
// document under its own key plus an entry in a per-wedding name
// index.  Redis is the external document store here; the engine only
// sees decoded model.PlanSnapshot values.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// ErrNotFound is returned when no snapshot exists under the name.
var ErrNotFound = errors.New("snapshot not found")

// ErrCorrupt is returned when a stored snapshot no longer decodes.
// Callers must leave their in-memory state untouched on ErrCorrupt.
var ErrCorrupt = errors.New("snapshot corrupt")

// ErrUnavailable is returned when no Redis client was configured.
var ErrUnavailable = errors.New("snapshot store unavailable")

// Store reads and writes snapshots.  A nil client degrades every
// operation to ErrUnavailable so the rest of the service keeps
// working without Redis.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// NewStore returns a Store.  rdb may be nil.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, prefix: "seating"}
}

func (s *Store) dataKey(weddingID, name string) string {
	return fmt.Sprintf("%s:%s:snapshot:%s", s.prefix, weddingID, name)
}

func (s *Store) indexKey(weddingID string) string {
	return fmt.Sprintf("%s:%s:snapshots", s.prefix, weddingID)
}

// Save stores the snapshot under its name, overwriting any previous
// snapshot with the same name, and records the name in the index.
func (s *Store) Save(ctx context.Context, snap *model.PlanSnapshot) error {
	if s.rdb == nil {
		return ErrUnavailable
	}
	if snap == nil || snap.Name == "" {
		return ErrCorrupt
	}
	body, err := Encode(snap)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.dataKey(snap.WeddingID, snap.Name), body, 0)
	pipe.SAdd(ctx, s.indexKey(snap.WeddingID), snap.Name)
	_, err = pipe.Exec(ctx)
	return err
}

// Load fetches and decodes one snapshot.
func (s *Store) Load(ctx context.Context, weddingID, name string) (*model.PlanSnapshot, error) {
	if s.rdb == nil {
		return nil, ErrUnavailable
	}
	body, err := s.rdb.Get(ctx, s.dataKey(weddingID, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return Decode(body)
}

// List returns the snapshot names saved for a wedding, sorted.
func (s *Store) List(ctx context.Context, weddingID string) ([]string, error) {
	if s.rdb == nil {
		return nil, ErrUnavailable
	}
	names, err := s.rdb.SMembers(ctx, s.indexKey(weddingID)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a snapshot and its index entry.
func (s *Store) Delete(ctx context.Context, weddingID, name string) error {
	if s.rdb == nil {
		return ErrUnavailable
	}
	pipe := s.rdb.TxPipeline()
	del := pipe.Del(ctx, s.dataKey(weddingID, name))
	pipe.SRem(ctx, s.indexKey(weddingID), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// Encode serializes a snapshot to its stored JSON form.
func Encode(snap *model.PlanSnapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// Decode parses a stored snapshot.  Any decode failure surfaces as
// ErrCorrupt; structural validation beyond JSON shape is the engine's
// job when the snapshot is restored.
func Decode(body []byte) (*model.PlanSnapshot, error) {
	var snap model.PlanSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &snap, nil
}
