package engine

import (
	"math"
	"testing"
)

func TestNewEngine(t *testing.T) {
	valid := Options{ExternalRewardWeight: 0.5, MovingAverageAlpha: 0.3}

	t.Run("valid options", func(t *testing.T) {
		if _, err := NewEngine(valid); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	invalid := []Options{
		{ExternalRewardWeight: -0.1, MovingAverageAlpha: 0.3},
		{ExternalRewardWeight: 1.1, MovingAverageAlpha: 0.3},
		{ExternalRewardWeight: 0.5, MovingAverageAlpha: 0},
		{ExternalRewardWeight: 0.5, MovingAverageAlpha: 1.5},
		{ExternalRewardWeight: 0.5, MovingAverageAlpha: 0.3, MaxWeightsPerSubmission: -1},
		{ExternalRewardWeight: 0.5, MovingAverageAlpha: 0.3, MinWeightCutoff: -0.1},
	}
	for _, opts := range invalid {
		if _, err := NewEngine(opts); err == nil {
			t.Errorf("expected error for options %+v", opts)
		}
	}
}

func TestRunCycle(t *testing.T) {
	snapshot := MetagraphSnapshot{
		UIDs:    []int64{0, 1, 2},
		Hotkeys: []string{"hk-a", "hk-b", "hk-c"},
		Stakes:  []float64{10, 20, 30},
		Active:  []bool{true, true, true},
		Block:   100,
	}

	t.Run("full pipeline from zero state", func(t *testing.T) {
		eng, err := NewEngine(Options{ExternalRewardWeight: 0.5, MovingAverageAlpha: 0.3})
		if err != nil {
			t.Fatal(err)
		}
		state := NewScoresState(3)

		result, err := eng.RunCycle(state, snapshot, map[int64]float64{1: 1.0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// stake rewards [1/6 2/6 3/6], blend with external [0 1 0] at w=0.5
		// gives [1/12 2/3 1/4], EMA from zero at alpha=0.3 scales by 0.3.
		expectedScores := []float64{0.025, 0.2, 0.075}
		for i := range expectedScores {
			if !almostEqual(state.Scores[i], expectedScores[i]) {
				t.Errorf("score uid %d: expected %f, got %f", i, expectedScores[i], state.Scores[i])
			}
		}

		// Normalization divides the 0.3 back out.
		expectedWeights := []float64{1.0 / 12, 2.0 / 3, 0.25}
		for i := range expectedWeights {
			if !almostEqual(result.Weights[i], expectedWeights[i]) {
				t.Errorf("weight uid %d: expected %f, got %f", i, expectedWeights[i], result.Weights[i])
			}
		}

		total := 0
		for _, v := range result.WeightVals {
			total += int(v)
		}
		if total != 65535 {
			t.Errorf("encoded weights must sum to 65535, got %d", total)
		}
		for i := range result.WeightUIDs {
			exact := expectedWeights[result.WeightUIDs[i]] * 65535
			if math.Abs(float64(result.WeightVals[i])-exact) > 1 {
				t.Errorf("uid %d: encoded %d too far from exact %f", result.WeightUIDs[i], result.WeightVals[i], exact)
			}
		}

		if result.StakeOnly {
			t.Error("cycle with external observations must not be flagged stake-only")
		}
		if result.Step != 1 || state.Step != 1 {
			t.Errorf("expected step 1, got result %d state %d", result.Step, state.Step)
		}
		if state.LastRun.IsZero() {
			t.Error("expected LastRun to be stamped")
		}
	})

	t.Run("no observations runs stake-only", func(t *testing.T) {
		eng, err := NewEngine(Options{ExternalRewardWeight: 0.5, MovingAverageAlpha: 1.0})
		if err != nil {
			t.Fatal(err)
		}
		state := NewScoresState(3)

		result, err := eng.RunCycle(state, snapshot, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.StakeOnly {
			t.Error("expected stake-only cycle")
		}
		expected := []float64{1.0 / 6, 2.0 / 6, 3.0 / 6}
		for i := range expected {
			if !almostEqual(result.Weights[i], expected[i]) {
				t.Errorf("uid %d: expected stake distribution %f, got %f", i, expected[i], result.Weights[i])
			}
		}
	})

	t.Run("hotkey churn is reported", func(t *testing.T) {
		eng, err := NewEngine(Options{ExternalRewardWeight: 0.5, MovingAverageAlpha: 0.3})
		if err != nil {
			t.Fatal(err)
		}
		state := NewScoresState(3)
		state.Scores = []float64{0.1, 0.9, 0.1}
		copy(state.Hotkeys, []string{"hk-a", "hk-old", "hk-c"})

		result, err := eng.RunCycle(state, snapshot, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.ResetSlots) != 1 || result.ResetSlots[0] != 1 {
			t.Errorf("expected slot 1 reset, got %v", result.ResetSlots)
		}
	})

	t.Run("empty snapshot is an error", func(t *testing.T) {
		eng, _ := NewEngine(Options{ExternalRewardWeight: 0.5, MovingAverageAlpha: 0.3})
		if _, err := eng.RunCycle(NewScoresState(0), MetagraphSnapshot{}, nil); err == nil {
			t.Error("expected error for empty snapshot")
		}
	})

	t.Run("stake length mismatch is an error", func(t *testing.T) {
		eng, _ := NewEngine(Options{ExternalRewardWeight: 0.5, MovingAverageAlpha: 0.3})
		bad := snapshot
		bad.Stakes = []float64{10, 20}
		if _, err := eng.RunCycle(NewScoresState(3), bad, nil); err == nil {
			t.Error("expected error for stake length mismatch")
		}
	})

	t.Run("repeated cycles converge toward the combined signal", func(t *testing.T) {
		eng, err := NewEngine(Options{ExternalRewardWeight: 0.5, MovingAverageAlpha: 0.3})
		if err != nil {
			t.Fatal(err)
		}
		state := NewScoresState(3)
		for i := 0; i < 200; i++ {
			if _, err := eng.RunCycle(state, snapshot, map[int64]float64{1: 1.0}); err != nil {
				t.Fatal(err)
			}
		}
		combined := []float64{1.0 / 12, 2.0 / 3, 0.25}
		for i := range combined {
			if math.Abs(state.Scores[i]-combined[i]) > 1e-6 {
				t.Errorf("uid %d: score %f did not converge to %f", i, state.Scores[i], combined[i])
			}
		}
	})
}
