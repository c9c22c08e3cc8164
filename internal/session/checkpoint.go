package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rtagency/mocktest-backend/internal/grading"
	"github.com/rtagency/mocktest-backend/internal/model"
)

// Snapshot is the serialized in-progress state of an attempt, written after
// every mutation and restored on reload. It intentionally carries only the
// mutable fields; the paper itself is reloaded from the question bank.
// SavedAt orders writes that arrive out of order through the persistence
// queue: a store must never let an older snapshot overwrite a newer one,
// and in particular must not let one overwrite the tombstone Clear leaves
// when the attempt finalizes.
type Snapshot struct {
	UserID           int                           `json:"user_id"`
	TestID           int64                         `json:"test_id"`
	CurrentIndex     int                           `json:"current_index"`
	RemainingSeconds int                           `json:"remaining_seconds"`
	Answers          map[int64]grading.AnswerState `json:"answers"`
	SavedAt          time.Time                     `json:"saved_at"`
}

// Encode serializes the snapshot for the checkpoint store.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses a stored checkpoint payload.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	if snap.Answers == nil {
		snap.Answers = make(map[int64]grading.AnswerState)
	}
	return &snap, nil
}

// CheckpointStore persists in-progress snapshots keyed by (user, test).
// Writes are fire-and-forget and resolve by SavedAt, newest wins. Clear
// leaves a tombstone stamped at clear time rather than deleting outright,
// so snapshots of the finalized attempt that are still in flight cannot
// bring the checkpoint back; a later attempt's snapshots replace the
// tombstone because they carry a newer SavedAt.
type CheckpointStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context, userID int, testID int64) (*Snapshot, error)
	Clear(ctx context.Context, userID int, testID int64) error
}

// ResultSink accepts the final graded result of an attempt. Implementations
// must not be consulted during grading; grading is computed locally whether
// or not the sink write succeeds.
type ResultSink interface {
	Persist(ctx context.Context, result *model.GradedResult) error
}
