// Package scripted is a deterministic ScenarioGenerator used in dev mode
// and tests. It produces structurally valid payloads without narrative
// quality and never fails.
package scripted

import (
	"context"
	"fmt"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"
)

type Generator struct{}

func (Generator) Birth(_ context.Context) (ports.BirthPayload, error) {
	return ports.BirthPayload{
		Stats: life.StatVector{
			Money:     0.3,
			Stability: 0.6,
			Status:    0.4,
			Health:    0.9,
			Stress:    0.1,
			Freedom:   0.7,
			Exposure:  0.1,
		},
		Relationships: []life.Relationship{
			{Name: "Maya", Role: "mother", Alive: true},
			{Name: "Theo", Role: "father", Alive: true},
			{Name: "Sam", Role: "childhood friend", Alive: true},
		},
		Offer: life.TurnOffer{
			Narrative: "You are born on a rainy morning. The household is modest but warm.",
			OptionA:   life.EffectSet{Stability: 0.05, Stress: -0.02},
			OptionB:   life.EffectSet{Freedom: 0.05, Exposure: 0.02},
		},
	}, nil
}

func (Generator) Turn(_ context.Context, tc ports.TurnContext) (ports.TurnPayload, error) {
	narrative := fmt.Sprintf("At %d, a fork in the road appears.", tc.Age)
	if tc.ParentDeathSlot >= 0 && tc.ParentDeathSlot < len(tc.Relationships) {
		narrative = fmt.Sprintf("At %d, you lose %s. Life reshapes itself around the absence.",
			tc.Age, tc.Relationships[tc.ParentDeathSlot].Display())
	}
	return ports.TurnPayload{
		Offer: life.TurnOffer{
			Narrative:      narrative,
			OptionA:        life.EffectSet{Money: 0.05, Stress: 0.05, Freedom: -0.02},
			OptionB:        life.EffectSet{Freedom: 0.05, Exposure: 0.05, Money: -0.02},
			DeathCauseHint: "an untimely accident",
		},
	}, nil
}

func (Generator) Epilogue(_ context.Context, ec ports.EpilogueContext) (string, error) {
	return fmt.Sprintf("The story closes at %d, cause: %s.", ec.FinalAge, ec.Cause), nil
}

var _ ports.ScenarioGenerator = Generator{}
