package birth

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"

	"github.com/google/uuid"
)

var (
	ErrInvalidPayload = errors.New("invalid birth payload")
	ErrGenerator      = errors.New("birth generation failed")
)

// UseCase creates a run: it requests a birth payload from the generator,
// validates and coerces it, and persists the run at age 0 with all three
// relationship slots populated and the first offer pending.
type UseCase struct {
	TxManager ports.TxManager
	StateRepo ports.RunStateRepository
	EventRepo ports.EventRepository
	Generator ports.ScenarioGenerator
	Tuning    life.Tuning
	Now       func() time.Time
	NewRand   func() *rand.Rand
}

type Response struct {
	State life.RunState `json:"state"`
}

func (u UseCase) Execute(ctx context.Context) (Response, error) {
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	payload, err := u.Generator.Birth(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrGenerator, err)
	}
	if len(payload.Relationships) != life.RelationshipSlots {
		return Response{}, fmt.Errorf("%w: %d relationship slots", ErrInvalidPayload, len(payload.Relationships))
	}

	rels := make([]life.Relationship, life.RelationshipSlots)
	for i, r := range payload.Relationships {
		if r.Name == "" || r.Role == "" {
			return Response{}, fmt.Errorf("%w: empty slot %d", ErrInvalidPayload, i)
		}
		r.Alive = true
		rels[i] = r
	}

	offer := payload.Offer
	offer.OptionA = offer.OptionA.Bounded(u.Tuning.MaxEffectDelta)
	offer.OptionB = offer.OptionB.Bounded(u.Tuning.MaxEffectDelta)
	offer.NextAge = u.Tuning.AgeJump(0, u.newRand())

	now := nowFn()
	state := life.RunState{
		RunID:         uuid.NewString(),
		Age:           0,
		Stats:         payload.Stats.Clamped(),
		Relationships: rels,
		Alive:         true,
		Offer:         &offer,
		Version:       1,
		UpdatedAt:     now,
	}

	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := u.StateRepo.SaveWithVersion(txCtx, state, 0); err != nil {
			return err
		}
		return u.EventRepo.Append(txCtx, state.RunID, []life.DomainEvent{{
			Type:       life.EventRunStarted,
			OccurredAt: now,
			Payload: map[string]any{
				"stats":         state.Stats,
				"relationships": rels,
			},
		}})
	})
	if err != nil {
		return Response{}, err
	}
	return Response{State: state}, nil
}

func (u UseCase) newRand() *rand.Rand {
	if u.NewRand != nil {
		return u.NewRand()
	}
	return rand.New(rand.NewSource(rand.Int63()))
}
