package mood

import (
	"testing"

	"github.com/nathoo/moodgrid/types"
)

func TestTick_FlipsAtZero(t *testing.T) {
	e := &types.Entity{AffectedByMood: true, MoodMax: 3, MoodValue: 1, Mood: types.MoodCalm}
	if !Tick(e) {
		t.Fatal("expected flip when counter reaches 0")
	}
	if e.Mood != types.MoodAngry {
		t.Errorf("mood = %v, want angry", e.Mood)
	}
	if e.MoodValue != 3 {
		t.Errorf("counter = %d, want reset to 3", e.MoodValue)
	}
}

func TestTick_FullCycle(t *testing.T) {
	e := &types.Entity{AffectedByMood: true, MoodMax: 3, MoodValue: 3, Mood: types.MoodCalm}
	var flips []int
	for turn := 1; turn <= 6; turn++ {
		if Tick(e) {
			flips = append(flips, turn)
		}
		if !InBounds(e) {
			t.Fatalf("turn %d: counter %d out of [0,%d]", turn, e.MoodValue, e.MoodMax)
		}
	}
	if len(flips) != 2 || flips[0] != 3 || flips[1] != 6 {
		t.Errorf("flips on turns %v, want [3 6]", flips)
	}
	if e.Mood != types.MoodCalm {
		t.Errorf("after two flips mood = %v, want calm", e.Mood)
	}
}

func TestTick_IgnoresUnaffectedAndDead(t *testing.T) {
	unaffected := &types.Entity{MoodMax: 3, MoodValue: 1}
	dead := &types.Entity{AffectedByMood: true, Dead: true, MoodMax: 3, MoodValue: 1}
	if Tick(unaffected) || unaffected.MoodValue != 1 {
		t.Error("unaffected entity ticked")
	}
	if Tick(dead) || dead.MoodValue != 1 {
		t.Error("dead entity ticked")
	}
	if Tick(nil) {
		t.Error("nil entity ticked")
	}
}

func TestIncrease_Clamps(t *testing.T) {
	tests := []struct {
		start, amount, want int
	}{
		{1, 1, 2},
		{2, 5, 3},
		{2, -5, 0},
		{3, 0, 3},
	}
	for _, tt := range tests {
		e := &types.Entity{MoodMax: 3, MoodValue: tt.start, Mood: types.MoodCalm}
		Increase(e, tt.amount)
		if e.MoodValue != tt.want {
			t.Errorf("Increase(%d by %d) = %d, want %d", tt.start, tt.amount, e.MoodValue, tt.want)
		}
		if e.Mood != types.MoodCalm {
			t.Error("Increase must never flip")
		}
	}
}

func TestFlip(t *testing.T) {
	e := &types.Entity{Mood: types.MoodNone}
	Flip(e)
	if e.Mood != types.MoodAngry {
		t.Errorf("None flips to %v, want angry", e.Mood)
	}
	Flip(e)
	if e.Mood != types.MoodCalm {
		t.Errorf("Angry flips to %v, want calm", e.Mood)
	}
}
