package genai

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/birth.schema.json
var birthSchemaRaw string

//go:embed schemas/turn.schema.json
var turnSchemaRaw string

var (
	birthSchema = jsonschema.MustCompileString("birth.schema.json", birthSchemaRaw)
	turnSchema  = jsonschema.MustCompileString("turn.schema.json", turnSchemaRaw)
)

// The model is an untrusted collaborator: its output is checked against a
// schema before anything is unmarshalled, and failures are typed so the
// retry policy can tell transport trouble from bad content.
var (
	ErrMalformed = errors.New("generator payload is not valid JSON")
	ErrSchema    = errors.New("generator payload violates schema")
)

type personDTO struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type birthDTO struct {
	Stats          life.StatVector `json:"stats"`
	Relationships  []personDTO     `json:"relationships"`
	Narrative      string          `json:"narrative"`
	OptionA        life.EffectSet  `json:"option_a"`
	OptionB        life.EffectSet  `json:"option_b"`
	DeathCauseHint string          `json:"death_cause_hint"`
}

type relationshipChangeDTO struct {
	SlotIndex int        `json:"slot_index"`
	Person    *personDTO `json:"person"`
}

type turnDTO struct {
	Narrative          string                 `json:"narrative"`
	OptionA            life.EffectSet         `json:"option_a"`
	OptionB            life.EffectSet         `json:"option_b"`
	RelationshipChange *relationshipChangeDTO `json:"relationship_change"`
	DeathCauseHint     string                 `json:"death_cause_hint"`
}

// stripFences removes the ```json fences models wrap output in despite
// instructions.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

func validate(schema *jsonschema.Schema, raw string) error {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

func decodeBirthPayload(raw string) (ports.BirthPayload, error) {
	raw = stripFences(raw)
	if err := validate(birthSchema, raw); err != nil {
		return ports.BirthPayload{}, err
	}
	var dto birthDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return ports.BirthPayload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	rels := make([]life.Relationship, len(dto.Relationships))
	for i, p := range dto.Relationships {
		rels[i] = life.Relationship{Name: p.Name, Role: p.Role, Alive: true}
	}
	return ports.BirthPayload{
		Stats:         dto.Stats,
		Relationships: rels,
		Offer: life.TurnOffer{
			Narrative:      dto.Narrative,
			OptionA:        dto.OptionA,
			OptionB:        dto.OptionB,
			DeathCauseHint: dto.DeathCauseHint,
		},
	}, nil
}

func decodeTurnPayload(raw string) (ports.TurnPayload, error) {
	raw = stripFences(raw)
	if err := validate(turnSchema, raw); err != nil {
		return ports.TurnPayload{}, err
	}
	var dto turnDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return ports.TurnPayload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	payload := ports.TurnPayload{
		Offer: life.TurnOffer{
			Narrative:      dto.Narrative,
			OptionA:        dto.OptionA,
			OptionB:        dto.OptionB,
			DeathCauseHint: dto.DeathCauseHint,
		},
	}
	if dto.RelationshipChange != nil {
		change := &ports.RelationshipChange{SlotIndex: dto.RelationshipChange.SlotIndex}
		if p := dto.RelationshipChange.Person; p != nil {
			change.Replacement = &life.Relationship{Name: p.Name, Role: p.Role, Alive: true}
		}
		payload.RelationshipChange = change
	}
	return payload, nil
}
