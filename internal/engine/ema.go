package engine

import (
	"github.com/rs/zerolog/log"
)

// ApplyMovingAverage folds the combined per-cycle rewards into the persisted
// score vector with EMA smoothing: new = alpha*combined + (1-alpha)*old.
//
// Before blending, any UID slot whose currently registered hotkey differs from
// the hotkey recorded when the slot's score was last written is reset to 0.
// A UID is a slot, not an identity: a fresh registration must not inherit the
// trust accumulated by whoever held the slot before.
//
// Returns the UIDs that were reset.
func ApplyMovingAverage(state *ScoresState, combined []float64, hotkeys []string, alpha float64) []int64 {
	n := len(hotkeys)
	resized := resizeState(state, n)
	if resized {
		log.Info().Int("registry_size", n).Msg("score vector resized to current registry")
	}

	var resetUIDs []int64
	for uid := 0; uid < n; uid++ {
		if state.Hotkeys[uid] != "" && state.Hotkeys[uid] != hotkeys[uid] {
			log.Warn().
				Int("uid", uid).
				Str("old_hotkey", state.Hotkeys[uid]).
				Str("new_hotkey", hotkeys[uid]).
				Float64("discarded_score", state.Scores[uid]).
				Msg("uid reassigned to a new hotkey, resetting score")
			state.Scores[uid] = 0
			resetUIDs = append(resetUIDs, int64(uid))
		}
	}

	for uid := 0; uid < n; uid++ {
		state.Scores[uid] = alpha*combined[uid] + (1-alpha)*state.Scores[uid]
	}

	copy(state.Hotkeys, hotkeys)
	state.Step++

	return resetUIDs
}

// resizeState grows the score vector with zeros or rebuilds it shorter when
// the registry shrank. Reports whether a resize happened.
func resizeState(state *ScoresState, n int) bool {
	if len(state.Scores) == n && len(state.Hotkeys) == n {
		return false
	}

	scores := make([]float64, n)
	hotkeys := make([]string, n)
	copy(scores, state.Scores)
	copy(hotkeys, state.Hotkeys)
	state.Scores = scores
	state.Hotkeys = hotkeys
	return true
}
