package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/config"
)

// RedisCheckpointStore keeps attempt snapshots in Redis for fast reload and
// queues every write for durable persistence by the checkpoint worker.
// Reads fail over to the durable store on a cache miss and self-heal the
// cache, so an evicted key does not lose a resumable attempt.
type RedisCheckpointStore struct {
	rdb     *redis.Client
	durable CheckpointStore
	log     zerolog.Logger
}

// NewRedisCheckpointStore creates a checkpoint store backed by Redis with an
// optional durable fallback (usually the PostgreSQL checkpoint repository).
func NewRedisCheckpointStore(rdb *redis.Client, durable CheckpointStore, log zerolog.Logger) *RedisCheckpointStore {
	return &RedisCheckpointStore{
		rdb:     rdb,
		durable: durable,
		log:     log.With().Str("component", "checkpoint_store").Logger(),
	}
}

// Save writes the snapshot to Redis and enqueues it for the durable store.
// Last write wins on both paths.
func (s *RedisCheckpointStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	key := config.CacheKey.AttemptCheckpointKey(snap.UserID, snap.TestID)
	if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("cache checkpoint: %w", err)
	}

	// Queue for PostgreSQL. A failed enqueue is not fatal: the Redis copy
	// already covers reloads, the durable copy only covers Redis loss.
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistCheckpointsQueue, data).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Checkpoint enqueue failed")
	}

	return nil
}

// Load returns the snapshot for (user, test), or nil when none exists.
func (s *RedisCheckpointStore) Load(ctx context.Context, userID int, testID int64) (*Snapshot, error) {
	key := config.CacheKey.AttemptCheckpointKey(userID, testID)

	val, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		return DecodeSnapshot([]byte(val))
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	// Cache miss: fall back to the durable copy (maybe evicted, maybe a
	// different node) and self-heal Redis so the next reload is fast.
	if s.durable == nil {
		return nil, nil
	}
	snap, err := s.durable.Load(ctx, userID, testID)
	if err != nil || snap == nil {
		return snap, err
	}
	if data, encErr := snap.Encode(); encErr == nil {
		_ = s.rdb.Set(ctx, key, data, 0)
	}
	return snap, nil
}

// Clear removes the snapshot from Redis and tombstones the durable row.
// Snapshots of this attempt still sitting in the persistence queue carry an
// older save time than the tombstone, so the worker's guarded upsert drops
// them instead of resurrecting the checkpoint.
func (s *RedisCheckpointStore) Clear(ctx context.Context, userID int, testID int64) error {
	key := config.CacheKey.AttemptCheckpointKey(userID, testID)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	if s.durable != nil {
		return s.durable.Clear(ctx, userID, testID)
	}
	return nil
}
