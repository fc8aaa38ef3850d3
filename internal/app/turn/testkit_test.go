package turn

import (
	"context"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"
)

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubStateRepo struct {
	byRun   map[string]life.RunState
	saveErr error
}

func (r *stubStateRepo) GetByRunID(_ context.Context, runID string) (life.RunState, error) {
	state, ok := r.byRun[runID]
	if !ok {
		return life.RunState{}, ports.ErrNotFound
	}
	return state, nil
}

func (r *stubStateRepo) SaveWithVersion(_ context.Context, state life.RunState, expectedVersion int64) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	current, ok := r.byRun[state.RunID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.byRun[state.RunID] = state
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.byRun[state.RunID] = state
	return nil
}

type stubTurnRepo struct {
	byKey map[string]ports.TurnExecutionRecord
}

func (r *stubTurnRepo) GetByIdempotencyKey(_ context.Context, runID, key string) (*ports.TurnExecutionRecord, error) {
	record, ok := r.byKey[runID+"|"+key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &record, nil
}

func (r *stubTurnRepo) SaveExecution(_ context.Context, execution ports.TurnExecutionRecord) error {
	if r.byKey == nil {
		r.byKey = map[string]ports.TurnExecutionRecord{}
	}
	r.byKey[execution.RunID+"|"+execution.IdempotencyKey] = execution
	return nil
}

type stubEventRepo struct {
	appended []life.DomainEvent
}

func (r *stubEventRepo) Append(_ context.Context, _ string, events []life.DomainEvent) error {
	r.appended = append(r.appended, events...)
	return nil
}

func (r *stubEventRepo) ListByRunID(_ context.Context, _ string, _ int) ([]life.DomainEvent, error) {
	return r.appended, nil
}

type stubGenerator struct {
	turnCalls     int
	epilogueCalls int
	turnErr       error
	epilogueErr   error
	lastTurnCtx   ports.TurnContext
	payload       ports.TurnPayload
	epilogue      string
}

func (g *stubGenerator) Birth(_ context.Context) (ports.BirthPayload, error) {
	return ports.BirthPayload{}, nil
}

func (g *stubGenerator) Turn(_ context.Context, tc ports.TurnContext) (ports.TurnPayload, error) {
	g.turnCalls++
	g.lastTurnCtx = tc
	if g.turnErr != nil {
		return ports.TurnPayload{}, g.turnErr
	}
	return g.payload, nil
}

func (g *stubGenerator) Epilogue(_ context.Context, _ ports.EpilogueContext) (string, error) {
	g.epilogueCalls++
	if g.epilogueErr != nil {
		return "", g.epilogueErr
	}
	return g.epilogue, nil
}

type stubMetrics struct {
	turns, conflicts, generatorFailures int
	diedCount, closeCallCount           int
}

func (m *stubMetrics) RecordTurn(died, closeCall bool) {
	m.turns++
	if died {
		m.diedCount++
	}
	if closeCall {
		m.closeCallCount++
	}
}

func (m *stubMetrics) RecordConflict() { m.conflicts++ }

func (m *stubMetrics) RecordGeneratorFailure() { m.generatorFailures++ }

var (
	_ ports.TxManager               = stubTxManager{}
	_ ports.RunStateRepository      = (*stubStateRepo)(nil)
	_ ports.TurnExecutionRepository = (*stubTurnRepo)(nil)
	_ ports.EventRepository         = (*stubEventRepo)(nil)
	_ ports.ScenarioGenerator       = (*stubGenerator)(nil)
	_ ports.TurnMetrics             = (*stubMetrics)(nil)
)
