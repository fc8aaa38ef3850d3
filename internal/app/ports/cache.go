package ports

import "lifeline/internal/domain/life"

// ProposalKey addresses one precomputed next-turn proposal.
type ProposalKey struct {
	RunID  string
	Age    int
	Branch life.Option
}

// ProposalCache memoizes generator proposals. It is pure optimization: a
// miss or an eviction at any point only costs a synchronous regeneration.
type ProposalCache interface {
	Get(key ProposalKey) (TurnPayload, bool)
	Set(key ProposalKey, payload TurnPayload)
	Invalidate(runID string)
}
