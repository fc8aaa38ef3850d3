package turn

import "lifeline/internal/domain/life"

type Request struct {
	RunID          string
	IdempotencyKey string
	Option         life.Option
}

type Response struct {
	UpdatedStats   life.StatVector     `json:"updated_stats"`
	Died           bool                `json:"died"`
	CloseCall      bool                `json:"close_call"`
	CloseCallCount int                 `json:"close_call_count"`
	AgeFrom        int                 `json:"age_from"`
	AgeTo          int                 `json:"age_to"`
	Relationships  []life.Relationship `json:"relationships"`
	NextScenario   *life.TurnOffer     `json:"next_scenario,omitempty"`
	Epilogue       string              `json:"epilogue,omitempty"`
}
