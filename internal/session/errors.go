package session

import "errors"

// Domain errors surfaced by attempt operations.
var (
	// ErrNoAnswer rejects Save & Next when the current question has no
	// selected answer. The state is left unchanged.
	ErrNoAnswer = errors.New("select an option before saving")

	// ErrPersistence wraps a failed result-store write. Grading has already
	// happened locally; the session stays in SUBMITTING so the user can
	// retry the submission.
	ErrPersistence = errors.New("failed to persist graded result")

	// ErrSubmitPending rejects a second submit trigger while one is already
	// in flight (manual double-click, or the timer expiring during a manual
	// submit).
	ErrSubmitPending = errors.New("submission already in progress")

	// ErrFinalized rejects any mutation after the attempt has been graded
	// and persisted.
	ErrFinalized = errors.New("attempt already finalized")

	// ErrIndexOutOfRange rejects navigation to a question index outside the
	// paper.
	ErrIndexOutOfRange = errors.New("question index out of range")

	// ErrUnknownSubject rejects a subject jump for a subject absent from the
	// exam profile.
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrDataIntegrity tags answers whose question is missing from the
	// loaded paper. Never fatal: the affected rows grade as placeholders
	// and the rest of the attempt proceeds.
	ErrDataIntegrity = errors.New("answer references a question missing from the paper")
)
