package life

import "time"

// Option identifies one of the two choices offered each turn.
type Option string

const (
	OptionA Option = "a"
	OptionB Option = "b"
)

func (o Option) Valid() bool {
	return o == OptionA || o == OptionB
}

type DeathCause string

const (
	DeathCauseUnknown DeathCause = "unknown"
	DeathCauseOldAge  DeathCause = "old_age"
	DeathCauseRisk    DeathCause = "risk"
)

// TurnOffer is the pair of effect sets currently proposed to the player,
// together with the narrative they came wrapped in.
type TurnOffer struct {
	Narrative      string    `json:"narrative"`
	OptionA        EffectSet `json:"option_a"`
	OptionB        EffectSet `json:"option_b"`
	DeathCauseHint string    `json:"death_cause_hint,omitempty"`
	// NextAge is the age the character will reach when this offer is
	// resolved. It is drawn by the engine at offer creation so that
	// next-turn proposals can be prefetched under a stable key.
	NextAge int `json:"next_age"`
}

// Effects returns the effect set the given option selects.
func (o TurnOffer) Effects(opt Option) EffectSet {
	if opt == OptionB {
		return o.OptionB
	}
	return o.OptionA
}

// ChoiceRecord is one entry of the bounded per-run choice history.
type ChoiceRecord struct {
	Age     int       `json:"age"`
	Option  Option    `json:"option"`
	Effects EffectSet `json:"effects"`
	Summary string    `json:"summary,omitempty"`
}

// RunState is the aggregate for one playthrough. It is exclusively owned
// by the turn usecase for the duration of a run; adapters only ever see
// snapshots or proposals.
type RunState struct {
	RunID         string         `json:"run_id"`
	Age           int            `json:"age"`
	Stats         StatVector     `json:"stats"`
	Relationships []Relationship `json:"relationships"`
	CloseCalls    int            `json:"close_calls"`
	Alive         bool           `json:"alive"`
	DeathCause    DeathCause     `json:"death_cause,omitempty"`
	History       []ChoiceRecord `json:"history"`
	Offer         *TurnOffer     `json:"offer,omitempty"`
	Version       int64          `json:"version"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Initialized reports whether birth has populated the run.
func (s RunState) Initialized() bool {
	return len(s.Relationships) == RelationshipSlots
}

// RecordChoice appends to the choice history, dropping the oldest entries
// beyond limit.
func (s *RunState) RecordChoice(rec ChoiceRecord, limit int) {
	s.History = append(s.History, rec)
	if limit > 0 && len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}

type DomainEvent struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

const (
	EventRunStarted   = "run_started"
	EventTurnResolved = "turn_resolved"
	EventCloseCall    = "close_call"
	EventParentDied   = "parent_died"
	EventRunEnded     = "run_ended"
)
