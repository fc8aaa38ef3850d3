package replay

import "lifeline/internal/domain/life"

type Request struct {
	RunID        string
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
}

type Response struct {
	Events []life.DomainEvent `json:"events"`
}
