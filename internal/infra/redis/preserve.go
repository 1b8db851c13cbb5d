package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/faultguard/internal/core/domain"
)

// preserveTTL bounds how long preserved payloads survive without an
// explicit recovery.
const preserveTTL = 24 * time.Hour

// PreserveRepo implements storage.PreserveRepository using Redis.
// Entries go into a per-controller sorted set ordered by capture time,
// with the payload under a TTL'd key.
type PreserveRepo struct {
	rdb *redis.Client
}

// NewPreserveRepo creates a Redis-backed preserve repository.
func NewPreserveRepo(client *Client) *PreserveRepo {
	return &PreserveRepo{rdb: client.rdb}
}

func (r *PreserveRepo) queueKey(controllerID string) string {
	return fmt.Sprintf("preserved:%s", controllerID)
}

func (r *PreserveRepo) faultKey(controllerID, id string) string {
	return fmt.Sprintf("preserved:%s:%s", controllerID, id)
}

// Preserve stores the fault whose pending data needs recovery.
func (r *PreserveRepo) Preserve(ctx context.Context, controllerID string, f domain.Fault) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal fault: %w", err)
	}

	if err := r.rdb.Set(ctx, r.faultKey(controllerID, f.ID), data, preserveTTL).Err(); err != nil {
		return fmt.Errorf("failed to set preserved fault: %w", err)
	}

	// Score = capture time, so List returns oldest first.
	if err := r.rdb.ZAdd(ctx, r.queueKey(controllerID), redis.Z{
		Score:  float64(f.CapturedAt.UnixMilli()),
		Member: f.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to preserve queue: %w", err)
	}

	return nil
}

// List returns preserved faults for a controller, oldest first.
func (r *PreserveRepo) List(ctx context.Context, controllerID string) ([]*domain.Fault, error) {
	ids, err := r.rdb.ZRange(ctx, r.queueKey(controllerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}

	out := make([]*domain.Fault, 0, len(ids))
	for _, id := range ids {
		data, err := r.rdb.Get(ctx, r.faultKey(controllerID, id)).Bytes()
		if err == redis.Nil {
			// Payload expired but ID still queued, drop it.
			r.rdb.ZRem(ctx, r.queueKey(controllerID), id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get failed: %w", err)
		}

		var f domain.Fault
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fault: %w", err)
		}
		out = append(out, &f)
	}
	return out, nil
}

// Clear drops all preserved entries for a controller.
func (r *PreserveRepo) Clear(ctx context.Context, controllerID string) error {
	ids, err := r.rdb.ZRange(ctx, r.queueKey(controllerID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("zrange failed: %w", err)
	}
	for _, id := range ids {
		if err := r.rdb.Del(ctx, r.faultKey(controllerID, id)).Err(); err != nil {
			return fmt.Errorf("del failed: %w", err)
		}
	}
	return r.rdb.Del(ctx, r.queueKey(controllerID)).Err()
}
