package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gonum.org/v1/gonum/floats"
)

// Engine runs the scoring pipeline for one validator. It performs no I/O:
// the caller supplies the metagraph snapshot and observations, and commits
// the returned state through the persistence layer.
type Engine struct {
	opts Options
}

// NewEngine validates the scoring hyperparameters and returns an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.ExternalRewardWeight < 0 || opts.ExternalRewardWeight > 1 {
		return nil, fmt.Errorf("external reward weight must be in [0, 1], got %f", opts.ExternalRewardWeight)
	}
	if opts.MovingAverageAlpha <= 0 || opts.MovingAverageAlpha > 1 {
		return nil, fmt.Errorf("moving average alpha must be in (0, 1], got %f", opts.MovingAverageAlpha)
	}
	if opts.MaxWeightsPerSubmission < 0 {
		return nil, fmt.Errorf("max weights per submission cannot be negative, got %d", opts.MaxWeightsPerSubmission)
	}
	if opts.MinWeightCutoff < 0 {
		return nil, fmt.Errorf("min weight cutoff cannot be negative, got %f", opts.MinWeightCutoff)
	}
	return &Engine{opts: opts}, nil
}

// RunCycle executes one synchronous scoring step. It mutates state in place
// (scores, hotkey snapshot, step counter) and returns the weight vector plus
// its chain encoding. The caller persists state before submitting.
func (e *Engine) RunCycle(state *ScoresState, snapshot MetagraphSnapshot, observations map[int64]float64) (CycleResult, error) {
	n := len(snapshot.Hotkeys)
	if n == 0 {
		return CycleResult{}, fmt.Errorf("empty metagraph snapshot")
	}
	if len(snapshot.Stakes) != n {
		return CycleResult{}, fmt.Errorf("stake vector length %d does not match registry size %d", len(snapshot.Stakes), n)
	}

	rewards := AccumulateRewards(observations, n)
	stakeRewards := StakeRewards(snapshot.Stakes)
	combined := BlendRewards(rewards, stakeRewards, e.opts.ExternalRewardWeight)
	stakeOnly := floats.Sum(rewards) <= 0

	resetUIDs := ApplyMovingAverage(state, combined, snapshot.Hotkeys, e.opts.MovingAverageAlpha)
	state.LastRun = time.Now().UTC()

	weights := NormalizeScores(state.Scores)
	uids := snapshot.UIDs
	if len(uids) == 0 {
		uids = make([]int64, n)
		for i := range uids {
			uids[i] = int64(i)
		}
	}

	weightUIDs, weightVals, err := EncodeWeights(uids, weights, e.opts.MaxWeightsPerSubmission, e.opts.MinWeightCutoff)
	if err != nil {
		return CycleResult{}, fmt.Errorf("encode weights: %w", err)
	}

	log.Info().
		Int("step", state.Step).
		Int("registry_size", n).
		Int("observed", len(observations)).
		Int("emitted", len(weightUIDs)).
		Bool("stake_only", stakeOnly).
		Msg("scoring cycle computed")

	return CycleResult{
		Weights:    weights,
		WeightUIDs: weightUIDs,
		WeightVals: weightVals,
		StakeOnly:  stakeOnly,
		ResetSlots: resetUIDs,
		Step:       state.Step,
	}, nil
}
