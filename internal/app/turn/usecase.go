package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"
)

var (
	ErrInvalidRequest = errors.New("invalid turn request")
	ErrNoPendingOffer = errors.New("run has no pending offer")
	ErrGenerator      = errors.New("scenario generation failed")
)

// UseCase advances a run by one decision cycle: apply the chosen effects,
// jump the age, run the two-stage mortality check, rotate relationships,
// and fetch the next scenario. The whole mutation happens inside one
// transaction guarded by optimistic versioning, so concurrent turns
// against the same run resolve as conflicts instead of interleaving.
type UseCase struct {
	TxManager ports.TxManager
	StateRepo ports.RunStateRepository
	TurnRepo  ports.TurnExecutionRepository
	EventRepo ports.EventRepository
	Generator ports.ScenarioGenerator
	Cache     ports.ProposalCache
	Metrics   ports.TurnMetrics
	Tuning    life.Tuning
	Now       func() time.Time
	// NewRand supplies a fresh rng per turn; tests seed it.
	NewRand func() *rand.Rand
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.RunID = strings.TrimSpace(req.RunID)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.RunID == "" || req.IdempotencyKey == "" || !req.Option.Valid() {
		return Response{}, ErrInvalidRequest
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	rng := u.newRand()

	var out Response
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		exec, err := u.TurnRepo.GetByIdempotencyKey(txCtx, req.RunID, req.IdempotencyKey)
		if err == nil && exec != nil {
			out = responseFromResult(exec.Result)
			return nil
		}
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}

		state, err := u.StateRepo.GetByRunID(txCtx, req.RunID)
		if err != nil {
			return err
		}
		if !state.Alive {
			return ports.ErrRunTerminated
		}
		if !state.Initialized() || state.Offer == nil {
			return ErrNoPendingOffer
		}

		result, err := u.resolve(txCtx, &state, req.Option, nowFn(), rng)
		if err != nil {
			return err
		}

		if err := u.StateRepo.SaveWithVersion(txCtx, state, state.Version-1); err != nil {
			return err
		}
		if err := u.EventRepo.Append(txCtx, req.RunID, result.Events); err != nil {
			return err
		}
		execution := ports.TurnExecutionRecord{
			RunID:          req.RunID,
			IdempotencyKey: req.IdempotencyKey,
			Option:         req.Option,
			Result:         result,
			AppliedAt:      nowFn(),
		}
		if err := u.TurnRepo.SaveExecution(txCtx, execution); err != nil {
			return err
		}
		out = responseFromResult(result)
		return nil
	})
	if err != nil {
		if u.Metrics != nil && errors.Is(err, ports.ErrConflict) {
			u.Metrics.RecordConflict()
		}
		return Response{}, err
	}
	if u.Metrics != nil {
		u.Metrics.RecordTurn(out.Died, out.CloseCall)
	}
	return out, nil
}

// resolve mutates state in place and returns the committed result. Any
// error leaves the transaction uncommitted and the run untouched.
func (u UseCase) resolve(ctx context.Context, state *life.RunState, opt life.Option, now time.Time, rng *rand.Rand) (ports.TurnResult, error) {
	offer := *state.Offer
	effects := offer.Effects(opt).Bounded(u.Tuning.MaxEffectDelta)
	stats := life.Apply(state.Stats, effects)

	ageFrom := state.Age
	ageTo := offer.NextAge
	if ageTo <= ageFrom {
		ageTo = ageFrom + u.Tuning.AgeJump(ageFrom, rng)
	}
	if ageTo > u.Tuning.MaxAge {
		ageTo = u.Tuning.MaxAge
	}

	model := life.MortalityModel{Tuning: u.Tuning}
	check := model.EvaluateCheck(ageTo, stats)

	var died, closeCall bool
	if rng.Float64() < check.Probability {
		res := model.ResolveCheck(ageTo, state.CloseCalls, check.Natural, rng)
		switch {
		case res.CloseCall:
			closeCall = true
			state.CloseCalls++
			stats = model.ApplyCloseCallPenalty(stats)
		case res.Died:
			died = true
		}
	}

	events := make([]life.DomainEvent, 0, 4)
	result := ports.TurnResult{
		Died:      died,
		CloseCall: closeCall,
		AgeFrom:   ageFrom,
		AgeTo:     ageTo,
	}

	if died {
		state.Alive = false
		state.DeathCause = life.DeathCauseRisk
		if check.Natural {
			state.DeathCause = life.DeathCauseOldAge
		}
		state.Offer = nil
		if u.Cache != nil {
			u.Cache.Invalidate(state.RunID)
		}
		result.Epilogue = u.requestEpilogue(ctx, *state, stats, offer.DeathCauseHint, ageTo)
		events = append(events, life.DomainEvent{
			Type:       life.EventRunEnded,
			OccurredAt: now,
			Payload: map[string]any{
				"final_age":   ageTo,
				"cause":       string(state.DeathCause),
				"cause_hint":  offer.DeathCauseHint,
				"close_calls": state.CloseCalls,
			},
		})
	} else {
		// Parent mortality is a narrative trigger only; it never feeds the
		// player's own death math.
		parentSlot := -1
		if rng.Float64() < model.ParentDeathChance(ageTo) {
			parentSlot = life.SelectParentSlot(state.Relationships, u.Tuning.ParentRoles)
		}

		payload, err := u.nextProposal(ctx, state, stats, opt, ageTo, parentSlot)
		if err != nil {
			if u.Metrics != nil {
				u.Metrics.RecordGeneratorFailure()
			}
			return ports.TurnResult{}, fmt.Errorf("%w: %v", ErrGenerator, err)
		}

		if parentSlot >= 0 {
			state.Relationships[parentSlot].Alive = false
			events = append(events, life.DomainEvent{
				Type:       life.EventParentDied,
				OccurredAt: now,
				Payload: map[string]any{
					"slot": parentSlot,
					"name": state.Relationships[parentSlot].Name,
					"role": state.Relationships[parentSlot].Role,
					"age":  ageTo,
				},
			})
		}
		applyRelationshipChange(state, payload.RelationshipChange, parentSlot)

		next := payload.Offer
		next.OptionA = next.OptionA.Bounded(u.Tuning.MaxEffectDelta)
		next.OptionB = next.OptionB.Bounded(u.Tuning.MaxEffectDelta)
		next.NextAge = ageTo + u.Tuning.AgeJump(ageTo, rng)
		state.Offer = &next
	}

	if closeCall {
		events = append(events, life.DomainEvent{
			Type:       life.EventCloseCall,
			OccurredAt: now,
			Payload: map[string]any{
				"age":         ageTo,
				"close_calls": state.CloseCalls,
			},
		})
	}

	state.Age = ageTo
	state.Stats = stats
	state.RecordChoice(life.ChoiceRecord{
		Age:     ageFrom,
		Option:  opt,
		Effects: effects,
		Summary: summarize(offer.Narrative),
	}, u.Tuning.HistoryLimit)
	state.Version++
	state.UpdatedAt = now

	events = append(events, life.DomainEvent{
		Type:       life.EventTurnResolved,
		OccurredAt: now,
		Payload: map[string]any{
			"age_from":    ageFrom,
			"age_to":      ageTo,
			"option":      string(opt),
			"died":        died,
			"close_call":  closeCall,
			"stats_after": stats,
		},
	})

	result.UpdatedState = *state
	result.Events = events
	return result, nil
}

// nextProposal serves the next scenario from the prefetch cache when it
// can, falling back to a synchronous generator call. A mandatory parent
// death always bypasses the cache since the cached narrative cannot have
// known about it.
func (u UseCase) nextProposal(ctx context.Context, state *life.RunState, stats life.StatVector, opt life.Option, ageTo, parentSlot int) (ports.TurnPayload, error) {
	key := ports.ProposalKey{RunID: state.RunID, Age: ageTo, Branch: opt}
	if u.Cache != nil && parentSlot < 0 {
		if payload, ok := u.Cache.Get(key); ok {
			return payload, nil
		}
	}
	payload, err := u.Generator.Turn(ctx, ports.TurnContext{
		Age:             ageTo,
		Stats:           stats,
		Relationships:   state.Relationships,
		History:         state.History,
		CloseCalls:      state.CloseCalls,
		ParentDeathSlot: parentSlot,
	})
	if err != nil {
		return ports.TurnPayload{}, err
	}
	return payload, nil
}

// requestEpilogue is best-effort: a dead run stays dead even when the
// closing narrative cannot be fetched.
func (u UseCase) requestEpilogue(ctx context.Context, state life.RunState, stats life.StatVector, hint string, finalAge int) string {
	text, err := u.Generator.Epilogue(ctx, ports.EpilogueContext{
		FinalAge: finalAge,
		Cause:    state.DeathCause,
		Hint:     hint,
		Stats:    stats,
		History:  state.History,
	})
	if err != nil {
		slog.Warn("epilogue generation failed", "run_id", state.RunID, "error", err)
		return ""
	}
	return text
}

// Prefetch warms the proposal cache for both branches of the current
// offer. It is pure optimization: failures only mean the next turn pays
// for a synchronous generator call.
func (u UseCase) Prefetch(ctx context.Context, runID string) error {
	if u.Cache == nil {
		return nil
	}
	state, err := u.StateRepo.GetByRunID(ctx, runID)
	if err != nil {
		return err
	}
	if !state.Alive || state.Offer == nil {
		return nil
	}
	offer := *state.Offer
	for _, opt := range []life.Option{life.OptionA, life.OptionB} {
		key := ports.ProposalKey{RunID: runID, Age: offer.NextAge, Branch: opt}
		if _, ok := u.Cache.Get(key); ok {
			continue
		}
		predicted := life.Apply(state.Stats, offer.Effects(opt).Bounded(u.Tuning.MaxEffectDelta))
		payload, err := u.Generator.Turn(ctx, ports.TurnContext{
			Age:             offer.NextAge,
			Stats:           predicted,
			Relationships:   state.Relationships,
			History:         state.History,
			CloseCalls:      state.CloseCalls,
			ParentDeathSlot: -1,
		})
		if err != nil {
			return err
		}
		u.Cache.Set(key, payload)
	}
	return nil
}

func (u UseCase) newRand() *rand.Rand {
	if u.NewRand != nil {
		return u.NewRand()
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

func applyRelationshipChange(state *life.RunState, change *ports.RelationshipChange, parentSlot int) {
	if change == nil {
		return
	}
	if change.SlotIndex < 0 || change.SlotIndex >= len(state.Relationships) {
		return
	}
	// The scripted parent death owns its slot this turn.
	if change.SlotIndex == parentSlot {
		return
	}
	if change.Replacement == nil {
		state.Relationships[change.SlotIndex].Alive = false
		return
	}
	repl := *change.Replacement
	if strings.TrimSpace(repl.Name) == "" || strings.TrimSpace(repl.Role) == "" {
		return
	}
	repl.Alive = true
	state.Relationships[change.SlotIndex] = repl
}

func responseFromResult(result ports.TurnResult) Response {
	return Response{
		UpdatedStats:   result.UpdatedState.Stats,
		Died:           result.Died,
		CloseCall:      result.CloseCall,
		CloseCallCount: result.UpdatedState.CloseCalls,
		AgeFrom:        result.AgeFrom,
		AgeTo:          result.AgeTo,
		Relationships:  result.UpdatedState.Relationships,
		NextScenario:   result.UpdatedState.Offer,
		Epilogue:       result.Epilogue,
	}
}

func summarize(narrative string) string {
	const limit = 140
	narrative = strings.TrimSpace(narrative)
	if len(narrative) <= limit {
		return narrative
	}
	return narrative[:limit]
}
