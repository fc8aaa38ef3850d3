package snapshot

import (
	"context"
	"errors"
	"strings"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"
)

var ErrInvalidRequest = errors.New("invalid snapshot request")

// UseCase returns the current RunState for recovery and display.
type UseCase struct {
	StateRepo ports.RunStateRepository
}

type Request struct {
	RunID string
}

type Response struct {
	State life.RunState `json:"state"`
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.RunID) == "" {
		return Response{}, ErrInvalidRequest
	}
	state, err := u.StateRepo.GetByRunID(ctx, req.RunID)
	if err != nil {
		return Response{}, err
	}
	return Response{State: state}, nil
}
