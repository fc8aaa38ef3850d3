package memory

import (
	"context"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"
)

type RunStateRepo struct {
	store *Store
}

func NewRunStateRepo(store *Store) RunStateRepo {
	return RunStateRepo{store: store}
}

func (r RunStateRepo) GetByRunID(_ context.Context, runID string) (life.RunState, error) {
	state, ok := r.store.state[runID]
	if !ok {
		return life.RunState{}, ports.ErrNotFound
	}
	return state, nil
}

func (r RunStateRepo) SaveWithVersion(_ context.Context, state life.RunState, expectedVersion int64) error {
	current, ok := r.store.state[state.RunID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.state[state.RunID] = state
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.state[state.RunID] = state
	return nil
}
