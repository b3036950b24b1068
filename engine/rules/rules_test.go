package rules

import "testing"

func TestDefault(t *testing.T) {
	r := Default()
	if r.ExitRequiresKeys {
		t.Error("ExitRequiresKeys should default to false")
	}
	if !r.ClearActivationOnMoodRevert {
		t.Error("ClearActivationOnMoodRevert should default to true")
	}
	if r.FallIntoVoid {
		t.Error("FallIntoVoid should default to false")
	}
	if !r.RetryOnDeath {
		t.Error("RetryOnDeath should default to true")
	}
}
