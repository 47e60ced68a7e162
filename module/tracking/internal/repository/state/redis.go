package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
)

const keyPrefix = "herdtrack:membership:"

// MembershipStore snapshots the evaluator's geofence membership cache to
// Redis so a restart does not lose dwell timers. The cache is reconstructable
// from geometry, so every operation here is best effort for the caller.
type MembershipStore struct {
	client *redis.Client
}

func NewMembershipStore(client *redis.Client) *MembershipStore {
	return &MembershipStore{client: client}
}

// Save writes one JSON value per animal, replacing any previous snapshot for
// the animals present in the map.
func (s *MembershipStore) Save(ctx context.Context, snapshot map[string]map[string]domain.MembershipState) error {
	pipe := s.client.Pipeline()
	for animalID, byFence := range snapshot {
		data, err := json.Marshal(byFence)
		if err != nil {
			return fmt.Errorf("marshal membership for %s: %w", animalID, err)
		}
		pipe.Set(ctx, keyPrefix+animalID, data, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save membership snapshot: %w", err)
	}
	return nil
}

// Load reads every stored snapshot back into the evaluator's import shape.
func (s *MembershipStore) Load(ctx context.Context) (map[string]map[string]domain.MembershipState, error) {
	snapshot := make(map[string]map[string]domain.MembershipState)

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan membership keys: %w", err)
		}
		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Bytes()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				return nil, fmt.Errorf("read %s: %w", key, err)
			}
			var byFence map[string]domain.MembershipState
			if err := json.Unmarshal(data, &byFence); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
			snapshot[key[len(keyPrefix):]] = byFence
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return snapshot, nil
}
