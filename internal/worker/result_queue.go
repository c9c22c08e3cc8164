package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/config"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/repository"
	"github.com/rtagency/mocktest-backend/internal/session"
)

// QueueResultSink hands graded results to the result worker through Redis.
// When Redis is down it writes straight to PostgreSQL instead; the sink only
// errors when both paths fail, which keeps the attempt retryable.
type QueueResultSink struct {
	rdb      *redis.Client
	fallback *repository.ResultRepository
	log      zerolog.Logger
}

// NewQueueResultSink creates a result sink backed by the worker queue.
func NewQueueResultSink(rdb *redis.Client, fallback *repository.ResultRepository, log zerolog.Logger) *QueueResultSink {
	return &QueueResultSink{
		rdb:      rdb,
		fallback: fallback,
		log:      log.With().Str("component", "result_sink").Logger(),
	}
}

var _ session.ResultSink = (*QueueResultSink)(nil)

// Persist enqueues the result for the worker, falling back to a direct
// insert when the queue is unreachable.
func (s *QueueResultSink) Persist(ctx context.Context, result *model.GradedResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	pushErr := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err()
	if pushErr == nil {
		return nil
	}
	s.log.Warn().Err(pushErr).Msg("Result enqueue failed, writing directly")

	if err := s.fallback.Insert(ctx, result); err != nil {
		return fmt.Errorf("persist result: %w", err)
	}
	return nil
}
