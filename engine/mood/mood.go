// Package mood advances the bounded mood counter and flips Calm↔Angry.
// The counter counts down: reaching 0 resets it to the max and flips.
package mood

import "github.com/nathoo/moodgrid/types"

// Tick decrements e's counter by one. It reports whether the mood flipped.
// Dead entities and entities not affected by mood are left alone.
func Tick(e *types.Entity) bool {
	if e == nil || e.Dead || !e.AffectedByMood {
		return false
	}
	e.MoodValue--
	if e.MoodValue <= 0 {
		e.MoodValue = e.MoodMax
		Flip(e)
		return true
	}
	if e.MoodValue > e.MoodMax {
		e.MoodValue = e.MoodMax
	}
	return false
}

// Increase adds amount to e's counter, clamped to [0, MoodMax]. It never
// flips the mood.
func Increase(e *types.Entity, amount int) {
	e.MoodValue = Clamp(e.MoodValue+amount, 0, e.MoodMax)
}

// Flip swaps Calm and Angry. Any other mood becomes Angry.
func Flip(e *types.Entity) {
	if e.Mood == types.MoodAngry {
		e.Mood = types.MoodCalm
		return
	}
	e.Mood = types.MoodAngry
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// InBounds reports whether e's counter satisfies 0 ≤ MoodValue ≤ MoodMax.
func InBounds(e *types.Entity) bool {
	return e.MoodValue >= 0 && e.MoodValue <= e.MoodMax
}
