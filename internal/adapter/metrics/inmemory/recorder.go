package inmemory

import "sync"

type Snapshot struct {
	TurnTotal         uint64 `json:"turn_total"`
	Deaths            uint64 `json:"deaths"`
	CloseCalls        uint64 `json:"close_calls"`
	Conflicts         uint64 `json:"conflicts"`
	GeneratorFailures uint64 `json:"generator_failures"`
}

type Recorder struct {
	mu                sync.Mutex
	turns             uint64
	deaths            uint64
	closeCalls        uint64
	conflicts         uint64
	generatorFailures uint64
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordTurn(died, closeCall bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns++
	if died {
		r.deaths++
	}
	if closeCall {
		r.closeCalls++
	}
}

func (r *Recorder) RecordConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

func (r *Recorder) RecordGeneratorFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generatorFailures++
}

// SnapshotAny satisfies the KPI endpoint's provider interface.
func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		TurnTotal:         r.turns,
		Deaths:            r.deaths,
		CloseCalls:        r.closeCalls,
		Conflicts:         r.conflicts,
		GeneratorFailures: r.generatorFailures,
	}
}
