package life

// StatVector is the 7-channel record of a life's condition. Every channel
// stays in [0,1]; write paths clamp rather than reject.
type StatVector struct {
	Money     float64 `json:"money"`
	Stability float64 `json:"stability"`
	Status    float64 `json:"status"`
	Health    float64 `json:"health"`
	Stress    float64 `json:"stress"`
	Freedom   float64 `json:"freedom"`
	Exposure  float64 `json:"exposure"`
}

// EffectSet holds proposed deltas to a StatVector. A zero field means no
// change on that channel.
type EffectSet struct {
	Money     float64 `json:"money,omitempty"`
	Stability float64 `json:"stability,omitempty"`
	Status    float64 `json:"status,omitempty"`
	Health    float64 `json:"health,omitempty"`
	Stress    float64 `json:"stress,omitempty"`
	Freedom   float64 `json:"freedom,omitempty"`
	Exposure  float64 `json:"exposure,omitempty"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampDelta(v, limit float64) float64 {
	if v < -limit {
		return -limit
	}
	if v > limit {
		return limit
	}
	return v
}

// Apply combines stats with effects channel by channel, clamping each
// result into [0,1]. Out-of-range inputs are coerced, never rejected;
// validation of untrusted payloads happens at the adapter boundary.
func Apply(stats StatVector, effects EffectSet) StatVector {
	return StatVector{
		Money:     clamp01(stats.Money + effects.Money),
		Stability: clamp01(stats.Stability + effects.Stability),
		Status:    clamp01(stats.Status + effects.Status),
		Health:    clamp01(stats.Health + effects.Health),
		Stress:    clamp01(stats.Stress + effects.Stress),
		Freedom:   clamp01(stats.Freedom + effects.Freedom),
		Exposure:  clamp01(stats.Exposure + effects.Exposure),
	}
}

// Clamped returns a copy with every channel coerced into [0,1].
func (s StatVector) Clamped() StatVector {
	return Apply(s, EffectSet{})
}

// Valid reports whether every channel already lies in [0,1].
func (s StatVector) Valid() bool {
	for _, v := range []float64{s.Money, s.Stability, s.Status, s.Health, s.Stress, s.Freedom, s.Exposure} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// Bounded returns a copy of the effect set with every delta clamped into
// [-limit, +limit].
func (e EffectSet) Bounded(limit float64) EffectSet {
	return EffectSet{
		Money:     clampDelta(e.Money, limit),
		Stability: clampDelta(e.Stability, limit),
		Status:    clampDelta(e.Status, limit),
		Health:    clampDelta(e.Health, limit),
		Stress:    clampDelta(e.Stress, limit),
		Freedom:   clampDelta(e.Freedom, limit),
		Exposure:  clampDelta(e.Exposure, limit),
	}
}

// IsZero reports whether no channel is changed.
func (e EffectSet) IsZero() bool {
	return e == EffectSet{}
}
