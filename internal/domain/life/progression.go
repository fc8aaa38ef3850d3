package life

import "math/rand"

// AgeJump draws the number of years to advance from the band covering the
// current age. The result is at least 1 and never carries the run past
// MaxAge. Birth does not progress; callers initialize age 0 directly and
// only consult the policy from the first real turn on.
func (t Tuning) AgeJump(age int, rng *rand.Rand) int {
	band := t.AgeBands[len(t.AgeBands)-1]
	for _, b := range t.AgeBands {
		if age <= b.UpTo {
			band = b
			break
		}
	}
	jump := band.MinJump
	if span := band.MaxJump - band.MinJump; span > 0 {
		jump += rng.Intn(span + 1)
	}
	if age+jump > t.MaxAge {
		jump = t.MaxAge - age
	}
	if jump < 1 {
		jump = 1
	}
	return jump
}
