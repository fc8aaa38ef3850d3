package turn

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	repomem "lifeline/internal/adapter/repo/memory"
	"lifeline/internal/app/birth"
	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"
)

// Plays whole lives from birth to death against the in-memory adapters,
// checking the run invariants hold at every decision point.
func TestGameplay_FullRunsTerminateWithInvariantsIntact(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		seed := seed
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			store := repomem.NewStore()
			stateRepo := repomem.NewRunStateRepo(store)
			eventRepo := repomem.NewEventRepo(store)
			gen := &stubGenerator{payload: ports.TurnPayload{Offer: life.TurnOffer{
				Narrative:      "another year",
				OptionA:        life.EffectSet{Money: 0.05, Stress: 0.05, Exposure: 0.03},
				OptionB:        life.EffectSet{Freedom: 0.05, Health: -0.03},
				DeathCauseHint: "misadventure",
			}}}
			rng := rand.New(rand.NewSource(seed))
			newRand := func() *rand.Rand { return rng }
			now := func() time.Time { return time.Unix(1748500000, 0) }
			tuning := life.DefaultTuning()

			birthUC := birth.UseCase{
				TxManager: repomem.NewTxManager(store),
				StateRepo: stateRepo,
				EventRepo: eventRepo,
				Generator: gen,
				Tuning:    tuning,
				Now:       now,
				NewRand:   newRand,
			}
			born, err := birthFromScripted(birthUC)
			if err != nil {
				t.Fatalf("birth: %v", err)
			}
			runID := born.RunID

			uc := UseCase{
				TxManager: repomem.NewTxManager(store),
				StateRepo: stateRepo,
				TurnRepo:  repomem.NewTurnExecutionRepo(store),
				EventRepo: eventRepo,
				Generator: gen,
				Metrics:   &stubMetrics{},
				Tuning:    tuning,
				Now:       now,
				NewRand:   newRand,
			}

			prevAge := 0
			prevCloseCalls := 0
			died := false
			for i := 0; i < 200; i++ {
				opt := life.OptionA
				if rng.Intn(2) == 1 {
					opt = life.OptionB
				}
				resp, err := uc.Execute(context.Background(), Request{
					RunID:          runID,
					IdempotencyKey: fmt.Sprintf("turn-%d", i),
					Option:         opt,
				})
				if err != nil {
					t.Fatalf("turn %d: %v", i, err)
				}
				if resp.AgeTo <= prevAge {
					t.Fatalf("turn %d: age did not advance (%d -> %d)", i, prevAge, resp.AgeTo)
				}
				if resp.AgeTo > tuning.MaxAge {
					t.Fatalf("turn %d: age %d beyond cap", i, resp.AgeTo)
				}
				if !resp.UpdatedStats.Valid() {
					t.Fatalf("turn %d: stats out of range: %+v", i, resp.UpdatedStats)
				}
				if resp.CloseCallCount < prevCloseCalls {
					t.Fatalf("turn %d: ledger decreased %d -> %d", i, prevCloseCalls, resp.CloseCallCount)
				}
				if resp.CloseCall && resp.CloseCallCount != prevCloseCalls+1 {
					t.Fatalf("turn %d: close call must bump ledger by 1", i)
				}
				if resp.AgeTo < tuning.AdultAge && (resp.Died || resp.CloseCall) {
					t.Fatalf("turn %d: mortality fired below adult age %d", i, resp.AgeTo)
				}
				if len(resp.Relationships) != life.RelationshipSlots {
					t.Fatalf("turn %d: slot count %d", i, len(resp.Relationships))
				}
				prevAge, prevCloseCalls = resp.AgeTo, resp.CloseCallCount
				if resp.Died {
					died = true
					break
				}
			}
			if !died {
				t.Fatal("run never terminated; the age cap guarantees death")
			}

			// Terminal irreversibility.
			_, err = uc.Execute(context.Background(), Request{
				RunID:          runID,
				IdempotencyKey: "after-death",
				Option:         life.OptionA,
			})
			if !errors.Is(err, ports.ErrRunTerminated) {
				t.Fatalf("turn after death: expected ErrRunTerminated, got %v", err)
			}
			final, err := stateRepo.GetByRunID(context.Background(), runID)
			if err != nil {
				t.Fatalf("load final state: %v", err)
			}
			if final.Alive || final.Age != prevAge {
				t.Fatalf("terminal state mutated: %+v", final)
			}
		})
	}
}

// birthFromScripted runs the birth usecase with a fully scripted payload.
func birthFromScripted(uc birth.UseCase) (life.RunState, error) {
	uc.Generator = scriptedBirth{}
	resp, err := uc.Execute(context.Background())
	if err != nil {
		return life.RunState{}, err
	}
	return resp.State, nil
}

type scriptedBirth struct{}

func (scriptedBirth) Birth(_ context.Context) (ports.BirthPayload, error) {
	return ports.BirthPayload{
		Stats: life.StatVector{Money: 0.3, Stability: 0.6, Status: 0.4, Health: 0.9, Stress: 0.1, Freedom: 0.7, Exposure: 0.1},
		Relationships: []life.Relationship{
			{Name: "Maya", Role: "mother"},
			{Name: "Theo", Role: "father"},
			{Name: "Sam", Role: "friend"},
		},
		Offer: life.TurnOffer{
			Narrative: "a beginning",
			OptionA:   life.EffectSet{Stability: 0.05},
			OptionB:   life.EffectSet{Freedom: 0.05},
		},
	}, nil
}

func (scriptedBirth) Turn(_ context.Context, _ ports.TurnContext) (ports.TurnPayload, error) {
	return ports.TurnPayload{}, nil
}

func (scriptedBirth) Epilogue(_ context.Context, _ ports.EpilogueContext) (string, error) {
	return "", nil
}

var _ ports.ScenarioGenerator = scriptedBirth{}
