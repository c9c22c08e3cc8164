package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rtagency/mocktest-backend/internal/session"
)

// CheckpointRepository is the durable side of checkpoint storage. Redis
// fronts it for hot reads and writes; this table is what survives a Redis
// flush, so an in-progress attempt is never lost with the cache.
//
// Writes land here through the checkpoint worker's queue, so they can
// arrive out of order and can trail the Clear that follows submission.
// Every write is therefore guarded on saved_at: an older payload never
// overwrites a newer row, and Clear sets a finalized tombstone instead of
// deleting, so a queued snapshot of the finalized attempt cannot recreate
// a resumable row. A fresh attempt's snapshots carry a newer saved_at and
// replace the tombstone.
type CheckpointRepository struct {
	pool *pgxpool.Pool
}

// NewCheckpointRepository creates a new CheckpointRepository.
func NewCheckpointRepository(pool *pgxpool.Pool) *CheckpointRepository {
	return &CheckpointRepository{pool: pool}
}

var _ session.CheckpointStore = (*CheckpointRepository)(nil)

// Save UPSERTs the encoded snapshot for (user, test).
func (r *CheckpointRepository) Save(ctx context.Context, snap *session.Snapshot) error {
	payload, err := snap.Encode()
	if err != nil {
		return err
	}
	return r.UpsertRaw(ctx, snap.UserID, snap.TestID, payload, snap.SavedAt)
}

// UpsertRaw writes an already-encoded snapshot payload. The checkpoint
// worker uses this directly when draining the Redis queue. The write is a
// no-op when the stored row is newer than savedAt.
func (r *CheckpointRepository) UpsertRaw(ctx context.Context, userID int, testID int64, payload []byte, savedAt time.Time) error {
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempt_checkpoints (user_id, test_id, payload, finalized, saved_at)
		 VALUES ($1, $2, $3, FALSE, $4)
		 ON CONFLICT (user_id, test_id) DO UPDATE
		 SET payload = EXCLUDED.payload, finalized = FALSE, saved_at = EXCLUDED.saved_at
		 WHERE attempt_checkpoints.saved_at <= EXCLUDED.saved_at`,
		userID, testID, payload, savedAt,
	)
	return err
}

// Load returns the stored snapshot, or nil when the user has no in-progress
// attempt on the test. A finalized tombstone reads as no attempt.
func (r *CheckpointRepository) Load(ctx context.Context, userID int, testID int64) (*session.Snapshot, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM attempt_checkpoints
		 WHERE user_id = $1 AND test_id = $2 AND finalized = FALSE`,
		userID, testID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session.DecodeSnapshot(payload)
}

// Clear tombstones the checkpoint after an attempt finalizes. The tombstone
// is stamped at clear time, which is later than every snapshot the attempt
// queued, so stale queue items fail the UpsertRaw guard.
func (r *CheckpointRepository) Clear(ctx context.Context, userID int, testID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempt_checkpoints (user_id, test_id, payload, finalized, saved_at)
		 VALUES ($1, $2, '{}', TRUE, NOW())
		 ON CONFLICT (user_id, test_id) DO UPDATE
		 SET payload = '{}', finalized = TRUE, saved_at = NOW()`,
		userID, testID,
	)
	return err
}
