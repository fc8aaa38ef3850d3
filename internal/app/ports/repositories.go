package ports

import (
	"context"
	"time"

	"lifeline/internal/domain/life"
)

// TurnResult is the committed outcome of one turn, stored alongside the
// idempotency key so a retried request replays the same answer.
type TurnResult struct {
	UpdatedState life.RunState
	Events       []life.DomainEvent
	Died         bool
	CloseCall    bool
	AgeFrom      int
	AgeTo        int
	Epilogue     string
}

type TurnExecutionRecord struct {
	RunID          string
	IdempotencyKey string
	Option         life.Option
	Result         TurnResult
	AppliedAt      time.Time
}

type RunStateRepository interface {
	GetByRunID(ctx context.Context, runID string) (life.RunState, error)
	// SaveWithVersion persists the state iff the stored version still
	// equals expectedVersion; otherwise it returns ErrConflict. Expected
	// version 0 creates the run.
	SaveWithVersion(ctx context.Context, state life.RunState, expectedVersion int64) error
}

type TurnExecutionRepository interface {
	GetByIdempotencyKey(ctx context.Context, runID, key string) (*TurnExecutionRecord, error)
	SaveExecution(ctx context.Context, execution TurnExecutionRecord) error
}

// EventRepository receives analytics events. Appends are fire-and-forget
// from the engine's point of view: durability is the adapter's problem.
type EventRepository interface {
	Append(ctx context.Context, runID string, events []life.DomainEvent) error
	ListByRunID(ctx context.Context, runID string, limit int) ([]life.DomainEvent, error)
}
