package life

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AgeBand gives the inclusive jump range used while age <= UpTo.
type AgeBand struct {
	UpTo    int `yaml:"up_to" json:"up_to"`
	MinJump int `yaml:"min_jump" json:"min_jump"`
	MaxJump int `yaml:"max_jump" json:"max_jump"`
}

// Tuning carries every balance parameter of the engine. The curve shape is
// a tuning decision, not a correctness one, so nothing here is a literal
// in the rules code.
type Tuning struct {
	MaxAge         int     `yaml:"max_age"`
	AdultAge       int     `yaml:"adult_age"`
	MaxEffectDelta float64 `yaml:"max_effect_delta"`
	HistoryLimit   int     `yaml:"history_limit"`

	AgeBands []AgeBand `yaml:"age_bands"`

	NaturalOnsetAge int     `yaml:"natural_onset_age"`
	NaturalPower    float64 `yaml:"natural_power"`
	NaturalCeiling  float64 `yaml:"natural_ceiling"`

	RiskExposureWeight float64 `yaml:"risk_exposure_weight"`
	RiskHealthWeight   float64 `yaml:"risk_health_weight"`
	RiskStressWeight   float64 `yaml:"risk_stress_weight"`
	RiskPower          float64 `yaml:"risk_power"`

	CombineMinorFraction float64 `yaml:"combine_minor_fraction"`
	StabilityBuffer      float64 `yaml:"stability_buffer"`
	FreedomBuffer        float64 `yaml:"freedom_buffer"`
	TriggerCeiling       float64 `yaml:"trigger_ceiling"`

	ShieldByCloseCalls    [4]float64 `yaml:"shield_by_close_calls"`
	NaturalBypassStartAge int        `yaml:"natural_bypass_start_age"`
	NaturalBypassEndAge   int        `yaml:"natural_bypass_end_age"`

	CloseCallHealthPenalty    float64 `yaml:"close_call_health_penalty"`
	CloseCallHealthFloor      float64 `yaml:"close_call_health_floor"`
	CloseCallStressPenalty    float64 `yaml:"close_call_stress_penalty"`
	CloseCallExposureRelief   float64 `yaml:"close_call_exposure_relief"`
	CloseCallStabilityPenalty float64 `yaml:"close_call_stability_penalty"`

	ParentDeathStartAge int      `yaml:"parent_death_start_age"`
	ParentDeathEndAge   int      `yaml:"parent_death_end_age"`
	ParentDeathMax      float64  `yaml:"parent_death_max"`
	ParentRoles         []string `yaml:"parent_roles"`
}

// DefaultTuning returns the refined-variant balance values.
func DefaultTuning() Tuning {
	return Tuning{
		MaxAge:         111,
		AdultAge:       17,
		MaxEffectDelta: 0.25,
		HistoryLimit:   12,

		AgeBands: []AgeBand{
			{UpTo: 4, MinJump: 3, MaxJump: 6},
			{UpTo: 11, MinJump: 2, MaxJump: 4},
			{UpTo: 25, MinJump: 1, MaxJump: 3},
			{UpTo: 49, MinJump: 2, MaxJump: 6},
			{UpTo: 69, MinJump: 3, MaxJump: 8},
			{UpTo: 111, MinJump: 4, MaxJump: 10},
		},

		NaturalOnsetAge: 50,
		NaturalPower:    3,
		NaturalCeiling:  0.9,

		RiskExposureWeight: 0.40,
		RiskHealthWeight:   0.45,
		RiskStressWeight:   0.25,
		RiskPower:          2,

		CombineMinorFraction: 0.25,
		StabilityBuffer:      0.05,
		FreedomBuffer:        0.05,
		TriggerCeiling:       0.95,

		ShieldByCloseCalls:    [4]float64{1.0, 0.8, 0.5, 0.15},
		NaturalBypassStartAge: 90,
		NaturalBypassEndAge:   110,

		CloseCallHealthPenalty:    0.15,
		CloseCallHealthFloor:      0.10,
		CloseCallStressPenalty:    0.20,
		CloseCallExposureRelief:   0.20,
		CloseCallStabilityPenalty: 0.05,

		ParentDeathStartAge: 30,
		ParentDeathEndAge:   60,
		ParentDeathMax:      0.35,
		ParentRoles:         []string{"mother", "father", "parent", "guardian"},
	}
}

var errBadTuning = errors.New("invalid tuning")

// Validate checks the structural invariants the rules code relies on.
func (t Tuning) Validate() error {
	if t.MaxAge <= t.AdultAge {
		return fmt.Errorf("%w: max_age %d must exceed adult_age %d", errBadTuning, t.MaxAge, t.AdultAge)
	}
	if len(t.AgeBands) == 0 {
		return fmt.Errorf("%w: no age bands", errBadTuning)
	}
	prev := -1
	for _, b := range t.AgeBands {
		if b.UpTo <= prev {
			return fmt.Errorf("%w: age bands must be strictly increasing", errBadTuning)
		}
		if b.MinJump < 1 || b.MaxJump < b.MinJump {
			return fmt.Errorf("%w: band up to %d has jump range [%d,%d]", errBadTuning, b.UpTo, b.MinJump, b.MaxJump)
		}
		prev = b.UpTo
	}
	if t.AgeBands[len(t.AgeBands)-1].UpTo < t.MaxAge {
		return fmt.Errorf("%w: bands must cover ages up to %d", errBadTuning, t.MaxAge)
	}
	if t.TriggerCeiling <= 0 || t.TriggerCeiling >= 1 {
		return fmt.Errorf("%w: trigger_ceiling %v must be in (0,1)", errBadTuning, t.TriggerCeiling)
	}
	for i := 1; i < len(t.ShieldByCloseCalls); i++ {
		if t.ShieldByCloseCalls[i] > t.ShieldByCloseCalls[i-1] {
			return fmt.Errorf("%w: shield table must be non-increasing", errBadTuning)
		}
	}
	for i, s := range t.ShieldByCloseCalls {
		if s < 0 || s > 1 {
			return fmt.Errorf("%w: shield[%d]=%v out of [0,1]", errBadTuning, i, s)
		}
	}
	if t.NaturalBypassEndAge <= t.NaturalBypassStartAge {
		return fmt.Errorf("%w: natural bypass band [%d,%d]", errBadTuning, t.NaturalBypassStartAge, t.NaturalBypassEndAge)
	}
	if t.ParentDeathEndAge <= t.ParentDeathStartAge {
		return fmt.Errorf("%w: parent death band [%d,%d]", errBadTuning, t.ParentDeathStartAge, t.ParentDeathEndAge)
	}
	if t.MaxEffectDelta <= 0 {
		return fmt.Errorf("%w: max_effect_delta %v", errBadTuning, t.MaxEffectDelta)
	}
	return nil
}

// LoadTuning reads a YAML overlay on top of the defaults. Absent keys keep
// their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}
