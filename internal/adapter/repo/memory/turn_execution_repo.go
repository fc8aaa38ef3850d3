package memory

import (
	"context"

	"lifeline/internal/app/ports"
)

type TurnExecutionRepo struct {
	store *Store
}

func NewTurnExecutionRepo(store *Store) TurnExecutionRepo {
	return TurnExecutionRepo{store: store}
}

func (r TurnExecutionRepo) GetByIdempotencyKey(_ context.Context, runID, key string) (*ports.TurnExecutionRecord, error) {
	exec, ok := r.store.execution[execKey(runID, key)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &exec, nil
}

func (r TurnExecutionRepo) SaveExecution(_ context.Context, execution ports.TurnExecutionRecord) error {
	r.store.execution[execKey(execution.RunID, execution.IdempotencyKey)] = execution
	return nil
}
