package memory

import (
	"context"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, runID string, events []life.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	r.store.events[runID] = append(r.store.events[runID], events...)
	return nil
}

func (r EventRepo) ListByRunID(_ context.Context, runID string, limit int) ([]life.DomainEvent, error) {
	events, ok := r.store.events[runID]
	if !ok || len(events) == 0 {
		return nil, ports.ErrNotFound
	}
	out := make([]life.DomainEvent, len(events))
	copy(out, events)
	// Newest first, matching the persistent adapter.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
