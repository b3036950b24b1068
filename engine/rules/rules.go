// Package rules holds the toggles for behaviours that differ between
// revisions of the game, and the activation conditions they influence.
package rules

// Rules selects between alternative puzzle rules. The zero value is not the
// default; use Default.
type Rules struct {
	// ExitRequiresKeys gates Exit triggers on every key being collected.
	ExitRequiresKeys bool `yaml:"exit_requires_keys"`

	// ClearActivationOnMoodRevert deactivates mood-gated entities when the
	// player's mood stops matching.
	ClearActivationOnMoodRevert bool `yaml:"clear_activation_on_mood_revert"`

	// FallIntoVoid kills a mover stepping onto an in-bounds cell with no
	// tile and nothing standing on it, instead of blocking the move. Walls
	// always block.
	FallIntoVoid bool `yaml:"fall_into_void"`

	// RetryOnDeath restarts the level when the player dies. When false the
	// game moves to the Defeat screen.
	RetryOnDeath bool `yaml:"retry_on_death"`
}

// Default returns the standard rule set.
func Default() Rules {
	return Rules{
		ExitRequiresKeys:            false,
		ClearActivationOnMoodRevert: true,
		FallIntoVoid:                false,
		RetryOnDeath:                true,
	}
}
