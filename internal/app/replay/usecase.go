package replay

import (
	"context"
	"errors"
	"strings"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"
)

var ErrInvalidRequest = errors.New("invalid replay request")

// UseCase lists a run's analytics events, optionally windowed by unix
// timestamps.
type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.RunID) == "" {
		return Response{}, ErrInvalidRequest
	}
	events, err := u.Events.ListByRunID(ctx, req.RunID, req.Limit)
	if err != nil {
		return Response{}, err
	}
	return Response{Events: filterByTimeWindow(events, req.OccurredFrom, req.OccurredTo)}, nil
}

func filterByTimeWindow(events []life.DomainEvent, from, to int64) []life.DomainEvent {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]life.DomainEvent, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}
