// Package engine implements the validator scoring pipeline: per-cycle reward
// accumulation, stake-weighted trust, EMA smoothing against persisted scores,
// and conversion of the smoothed scores into chain weights.
package engine

import "time"

// StateVersion guards the persisted scores layout. Bump on incompatible changes.
const StateVersion = 1

// MetagraphSnapshot is a value-typed view of the subnet registry for one cycle.
// UIDs are dense slot indices 0..N-1; a UID can be reassigned to a different
// hotkey across cycles, so Hotkeys is the identity record, not UIDs.
type MetagraphSnapshot struct {
	UIDs    []int64
	Hotkeys []string
	Stakes  []float64
	Active  []bool
	Block   int64
}

// ScoresState is the persisted cross-cycle score record for one validator.
type ScoresState struct {
	Version int       `json:"version"`
	Step    int       `json:"step"`
	Scores  []float64 `json:"scores"`
	Hotkeys []string  `json:"hotkeys"`
	LastRun time.Time `json:"last_run"`
}

// NewScoresState returns a zero-initialized state sized to the registry.
func NewScoresState(n int) *ScoresState {
	return &ScoresState{
		Version: StateVersion,
		Step:    0,
		Scores:  make([]float64, n),
		Hotkeys: make([]string, n),
	}
}

// Options are the scoring hyperparameters recognized by the engine.
type Options struct {
	// ExternalRewardWeight is the blend weight of the external quality signal
	// against the stake signal, in [0, 1].
	ExternalRewardWeight float64
	// MovingAverageAlpha is the EMA smoothing factor, in (0, 1].
	MovingAverageAlpha float64
	// MaxWeightsPerSubmission caps the number of nonzero weights handed to the
	// chain. 0 means unlimited.
	MaxWeightsPerSubmission int
	// MinWeightCutoff drops normalized weights below this value before encoding.
	MinWeightCutoff float64
}

// CycleResult is what one engine cycle produces for the submission collaborator.
type CycleResult struct {
	Weights    []float64
	WeightUIDs []int64
	WeightVals []uint16
	StakeOnly  bool
	ResetSlots []int64
	Step       int
}
