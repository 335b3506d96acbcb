package engine

import (
	"math"
	"testing"
)

func TestApplyMovingAverage(t *testing.T) {
	hotkeys := []string{"hk-a", "hk-b", "hk-c"}

	t.Run("alpha of one replaces scores with combined", func(t *testing.T) {
		state := NewScoresState(3)
		state.Scores = []float64{0.9, 0.1, 0.4}
		copy(state.Hotkeys, hotkeys)
		combined := []float64{0.2, 0.5, 0.3}

		ApplyMovingAverage(state, combined, hotkeys, 1.0)

		for i := range combined {
			if !almostEqual(state.Scores[i], combined[i]) {
				t.Errorf("uid %d: expected %f, got %f", i, combined[i], state.Scores[i])
			}
		}
	})

	t.Run("small alpha keeps scores close to history", func(t *testing.T) {
		state := NewScoresState(3)
		state.Scores = []float64{0.5, 0.5, 0.5}
		copy(state.Hotkeys, hotkeys)
		alpha := 0.001

		ApplyMovingAverage(state, []float64{1, 0, 1}, hotkeys, alpha)

		for i, s := range state.Scores {
			if math.Abs(s-0.5) > alpha {
				t.Errorf("uid %d: score %f drifted more than alpha from history", i, s)
			}
		}
	})

	t.Run("smoothing formula", func(t *testing.T) {
		state := NewScoresState(1)
		state.Scores[0] = 0.4
		state.Hotkeys[0] = "hk-a"

		ApplyMovingAverage(state, []float64{0.8}, []string{"hk-a"}, 0.3)

		expected := 0.3*0.8 + 0.7*0.4
		if !almostEqual(state.Scores[0], expected) {
			t.Errorf("expected %f, got %f", expected, state.Scores[0])
		}
	})

	t.Run("reassigned slot is reset before smoothing", func(t *testing.T) {
		state := NewScoresState(3)
		state.Scores = []float64{0.8, 0.8, 0.8}
		copy(state.Hotkeys, hotkeys)

		current := []string{"hk-a", "hk-replaced", "hk-c"}
		resetUIDs := ApplyMovingAverage(state, []float64{0.5, 0.5, 0.5}, current, 0.3)

		if len(resetUIDs) != 1 || resetUIDs[0] != 1 {
			t.Fatalf("expected reset of uid 1 only, got %v", resetUIDs)
		}
		// Replaced slot smooths from a zero base, not the old holder's score.
		if !almostEqual(state.Scores[1], 0.3*0.5) {
			t.Errorf("expected reset slot score %f, got %f", 0.3*0.5, state.Scores[1])
		}
		if !almostEqual(state.Scores[0], 0.3*0.5+0.7*0.8) {
			t.Errorf("unchanged slot should smooth normally, got %f", state.Scores[0])
		}
		if state.Hotkeys[1] != "hk-replaced" {
			t.Errorf("expected hotkey snapshot updated, got %s", state.Hotkeys[1])
		}
	})

	t.Run("empty recorded hotkey never triggers a reset", func(t *testing.T) {
		state := NewScoresState(2)
		resetUIDs := ApplyMovingAverage(state, []float64{0.5, 0.5}, []string{"hk-a", "hk-b"}, 0.3)
		if len(resetUIDs) != 0 {
			t.Errorf("expected no resets on first run, got %v", resetUIDs)
		}
	})

	t.Run("registry growth extends scores with zeros", func(t *testing.T) {
		state := NewScoresState(2)
		state.Scores = []float64{0.4, 0.6}
		copy(state.Hotkeys, []string{"hk-a", "hk-b"})

		grown := []string{"hk-a", "hk-b", "hk-new"}
		ApplyMovingAverage(state, []float64{0, 0, 1}, grown, 0.5)

		if len(state.Scores) != 3 {
			t.Fatalf("expected 3 scores after growth, got %d", len(state.Scores))
		}
		if !almostEqual(state.Scores[0], 0.2) || !almostEqual(state.Scores[1], 0.3) {
			t.Errorf("existing scores must survive growth, got %v", state.Scores)
		}
		if !almostEqual(state.Scores[2], 0.5) {
			t.Errorf("new slot should smooth from zero, got %f", state.Scores[2])
		}
	})

	t.Run("registry shrink truncates scores", func(t *testing.T) {
		state := NewScoresState(3)
		state.Scores = []float64{0.2, 0.3, 0.5}
		copy(state.Hotkeys, hotkeys)

		ApplyMovingAverage(state, []float64{1, 1}, []string{"hk-a", "hk-b"}, 1.0)

		if len(state.Scores) != 2 || len(state.Hotkeys) != 2 {
			t.Fatalf("expected state truncated to registry size, got %d scores", len(state.Scores))
		}
	})

	t.Run("step counter increments every cycle", func(t *testing.T) {
		state := NewScoresState(1)
		ApplyMovingAverage(state, []float64{1}, []string{"hk-a"}, 0.5)
		ApplyMovingAverage(state, []float64{1}, []string{"hk-a"}, 0.5)
		if state.Step != 2 {
			t.Errorf("expected step 2, got %d", state.Step)
		}
	})
}
