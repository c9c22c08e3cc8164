package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/config"
	"github.com/rtagency/mocktest-backend/internal/repository"
	"github.com/rtagency/mocktest-backend/internal/session"
)

// CheckpointWorker consumes persist_checkpoints_queue and UPSERTs attempt
// snapshots to PostgreSQL. Queue items are whole encoded snapshots carrying
// their save time; the repository keeps whichever is newest.
type CheckpointWorker struct {
	checkpoints *repository.CheckpointRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewCheckpointWorker creates a new CheckpointWorker.
func NewCheckpointWorker(checkpoints *repository.CheckpointRepository, rdb *redis.Client, log zerolog.Logger) *CheckpointWorker {
	return &CheckpointWorker{
		checkpoints: checkpoints,
		rdb:         rdb,
		log:         log.With().Str("component", "checkpoint_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *CheckpointWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *CheckpointWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistCheckpointsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	if err := w.persist(ctx, []byte(result[1])); err != nil {
		w.log.Error().Err(err).Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistCheckpointsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *CheckpointWorker) persist(ctx context.Context, payload []byte) error {
	snap, err := session.DecodeSnapshot(payload)
	if err != nil {
		// A payload that never decodes would requeue forever; log and drop.
		w.log.Error().Err(err).Msg("Dropping undecodable checkpoint payload")
		return nil
	}
	// The saved_at guard in the repository makes this write a no-op when
	// the attempt already finalized or a newer snapshot landed first, so
	// queue reordering (including requeues after a persist error) cannot
	// resurrect a cleared checkpoint.
	return w.checkpoints.UpsertRaw(ctx, snap.UserID, snap.TestID, payload, snap.SavedAt)
}

// drain processes all remaining items in the queue before shutdown.
func (w *CheckpointWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistCheckpointsQueue).Result()
		if err != nil {
			break
		}

		if err := w.persist(ctx, []byte(result)); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistCheckpointsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
