package memory

import (
	"sync"

	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"
)

// Store backs the in-process repositories used in dev mode and tests.
type Store struct {
	mu        sync.RWMutex
	state     map[string]life.RunState
	execution map[string]ports.TurnExecutionRecord
	events    map[string][]life.DomainEvent
}

func NewStore() *Store {
	return &Store{
		state:     make(map[string]life.RunState),
		execution: make(map[string]ports.TurnExecutionRecord),
		events:    make(map[string][]life.DomainEvent),
	}
}

func execKey(runID, key string) string {
	return runID + "::" + key
}

func (s *Store) SeedState(state life.RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[state.RunID] = state
}
