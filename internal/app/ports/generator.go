package ports

import (
	"context"

	"lifeline/internal/domain/life"
)

// BirthPayload initializes a run: starting stats, all three relationship
// slots and the first pair of options.
type BirthPayload struct {
	Stats         life.StatVector
	Relationships []life.Relationship
	Offer         life.TurnOffer
}

// TurnContext is the snapshot handed to the generator for the next
// scenario. The generator never holds authoritative state; it only sees
// this and returns a proposal.
type TurnContext struct {
	Age           int
	Stats         life.StatVector
	Relationships []life.Relationship
	History       []life.ChoiceRecord
	CloseCalls    int
	// ParentDeathSlot, when >= 0, obliges the generator to narrate the
	// death of that relationship slot this turn.
	ParentDeathSlot int
}

// RelationshipChange proposes replacing one slot with a new person, or
// marking it deceased when Replacement is nil.
type RelationshipChange struct {
	SlotIndex   int
	Replacement *life.Relationship
}

// TurnPayload is the generator's proposal for the next decision point.
type TurnPayload struct {
	Offer              life.TurnOffer
	RelationshipChange *RelationshipChange
}

type EpilogueContext struct {
	FinalAge int
	Cause    life.DeathCause
	Hint     string
	Stats    life.StatVector
	History  []life.ChoiceRecord
}

// ScenarioGenerator is the external narrative collaborator. All methods
// may block on network I/O; retry policy lives behind the implementation.
// Errors surface as recoverable: the caller must not commit a turn whose
// generation failed.
type ScenarioGenerator interface {
	Birth(ctx context.Context) (BirthPayload, error)
	Turn(ctx context.Context, tc TurnContext) (TurnPayload, error)
	Epilogue(ctx context.Context, ec EpilogueContext) (string, error)
}
