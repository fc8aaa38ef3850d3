package life

import (
	"math"
	"math/rand"
)

// MortalityModel implements the two-stage death mechanic: stage 1 decides
// whether a death check fires this turn, stage 2 decides whether a fired
// check kills or is survived as a close call.
type MortalityModel struct {
	Tuning Tuning
}

// DeathCheck is the stage-1 output. Natural records which pathway
// dominated, which stage 2 needs for the old-age shield bypass.
type DeathCheck struct {
	Probability float64
	Natural     bool
}

// Resolution is the stage-2 output of a fired check.
type Resolution struct {
	Died      bool
	CloseCall bool
}

// EvaluateCheck computes the probability that a death check fires at the
// given age with the given post-effect stats.
//
// Below AdultAge the probability is exactly 0; at MaxAge and beyond it is
// exactly 1. In between, the natural-age pathway and the stat-risk pathway
// are combined so either can dominate while the smaller still contributes,
// stability and freedom above the midpoint buy a small buffer, and the
// result is capped below 1 so no pre-cap age is certain death.
func (m MortalityModel) EvaluateCheck(age int, stats StatVector) DeathCheck {
	t := m.Tuning
	if age < t.AdultAge {
		return DeathCheck{Probability: 0}
	}
	if age >= t.MaxAge {
		return DeathCheck{Probability: 1, Natural: true}
	}

	stats = stats.Clamped()
	natural := m.naturalTerm(age)
	risk := m.riskTerm(stats)

	p := math.Max(natural, risk) + t.CombineMinorFraction*math.Min(natural, risk)
	if stats.Stability > 0.5 {
		p -= t.StabilityBuffer * (stats.Stability - 0.5)
	}
	if stats.Freedom > 0.5 {
		p -= t.FreedomBuffer * (stats.Freedom - 0.5)
	}
	if p < 0 {
		p = 0
	}
	if p > t.TriggerCeiling {
		p = t.TriggerCeiling
	}
	return DeathCheck{Probability: p, Natural: natural >= risk}
}

// naturalTerm rises convexly from 0 at the onset age towards (but never
// reaching) the ceiling at MaxAge.
func (m MortalityModel) naturalTerm(age int) float64 {
	t := m.Tuning
	if age <= t.NaturalOnsetAge {
		return 0
	}
	span := float64(t.MaxAge - t.NaturalOnsetAge)
	x := float64(age-t.NaturalOnsetAge) / span
	return t.NaturalCeiling * math.Pow(x, t.NaturalPower)
}

// riskTerm builds danger from convex terms of exposure, missing health and
// stress. The convexity means moderate values contribute little; only
// several simultaneous extremes add up to real danger, and no single
// channel's weight reaches the trigger ceiling on its own.
func (m MortalityModel) riskTerm(stats StatVector) float64 {
	t := m.Tuning
	pw := func(v float64) float64 { return math.Pow(clamp01(v), t.RiskPower) }
	return t.RiskExposureWeight*pw(stats.Exposure) +
		t.RiskHealthWeight*pw(1-stats.Health) +
		t.RiskStressWeight*pw(stats.Stress)
}

// ShieldProbability is the chance a fired check resolves as a survived
// close call, indexed by how often the run has cheated death already.
func (m MortalityModel) ShieldProbability(closeCalls int) float64 {
	idx := closeCalls
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.Tuning.ShieldByCloseCalls) {
		idx = len(m.Tuning.ShieldByCloseCalls) - 1
	}
	return m.Tuning.ShieldByCloseCalls[idx]
}

// naturalBypassFraction is the share of natural old-age checks that skip
// the shield entirely, linear across the bypass band.
func (m MortalityModel) naturalBypassFraction(age int) float64 {
	t := m.Tuning
	if age <= t.NaturalBypassStartAge {
		return 0
	}
	span := float64(t.NaturalBypassEndAge - t.NaturalBypassStartAge)
	return clamp01(float64(age-t.NaturalBypassStartAge) / span)
}

// ResolveCheck decides whether a fired check kills. At or past MaxAge
// death is unconditional. Natural checks at advanced age bypass the shield
// with a probability growing to 1 across the bypass band. Everything else
// rolls against the shield table.
func (m MortalityModel) ResolveCheck(age, closeCalls int, natural bool, rng *rand.Rand) Resolution {
	if age >= m.Tuning.MaxAge {
		return Resolution{Died: true}
	}
	if natural && age > m.Tuning.NaturalBypassStartAge {
		if rng.Float64() < m.naturalBypassFraction(age) {
			return Resolution{Died: true}
		}
	}
	if rng.Float64() < m.ShieldProbability(closeCalls) {
		return Resolution{CloseCall: true}
	}
	return Resolution{Died: true}
}

// ApplyCloseCallPenalty applies the fixed survival cost: health down (but
// never below the floor), stress up, exposure down as the character backs
// off from danger, stability slightly down.
func (m MortalityModel) ApplyCloseCallPenalty(stats StatVector) StatVector {
	t := m.Tuning
	next := stats
	floor := t.CloseCallHealthFloor
	if next.Health < floor {
		floor = next.Health
	}
	next.Health -= t.CloseCallHealthPenalty
	if next.Health < floor {
		next.Health = floor
	}
	next.Stress += t.CloseCallStressPenalty
	next.Exposure -= t.CloseCallExposureRelief
	next.Stability -= t.CloseCallStabilityPenalty
	return next.Clamped()
}

// ParentDeathChance is the narrative side-channel: the probability that a
// parent-role slot is scripted to die this turn, linear across the
// configured age band. It never feeds into the player's own mortality.
func (m MortalityModel) ParentDeathChance(age int) float64 {
	t := m.Tuning
	if age < t.ParentDeathStartAge || age > t.ParentDeathEndAge {
		return 0
	}
	span := float64(t.ParentDeathEndAge - t.ParentDeathStartAge)
	return t.ParentDeathMax * float64(age-t.ParentDeathStartAge) / span
}
