package validator

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/taoillium/bittensor-subnet-taoillium/internal/engine"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/kami"
)

func (v *Validator) syncMetagraph() {
	log.Info().Msg(fmt.Sprintf("syncing metagraph data for subnet: %d", v.ValidatorConfig.Netuid))

	newMetagraph, err := v.Kami.GetMetagraph(v.ValidatorConfig.Netuid)
	if err != nil {
		log.Error().Err(err).Msg("failed to get metagraph")
		return
	}

	snapshot := snapshotFromMetagraph(&newMetagraph.Data)
	log.Info().Msgf("Metagraph synced. Registry size %d at block %d", len(snapshot.Hotkeys), snapshot.Block)

	// Weight submissions from an unregistered hotkey are rejected by the
	// chain; surface the deregistration as soon as the sync sees it.
	if uid, ok := kami.FindUIDByHotkey(&newMetagraph.Data, v.ValidatorHotkey); ok {
		log.Info().Int("uid", uid).Msg("validator registration confirmed on subnet")
	} else {
		log.Warn().Str("hotkey", v.ValidatorHotkey).Int("netuid", v.ValidatorConfig.Netuid).
			Msg("validator hotkey is not registered on the subnet")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.MetagraphData.Metagraph = newMetagraph.Data
	v.MetagraphData.Snapshot = snapshot
}

func (v *Validator) syncBlock() {
	newBlockResp, err := v.Kami.GetLatestBlock()
	if err != nil {
		log.Error().Err(err).Msg("failed to get latest block")
		return
	}
	block := newBlockResp.Data.BlockNumber

	v.mu.Lock()
	v.LatestBlock = int64(block)
	v.mu.Unlock()

	if v.epochCallback != nil {
		if _, err := v.epochCallback.MaybeTrigger(block); err != nil {
			log.Error().Err(err).Int("block", block).Msg("epoch weight submission failed")
		}
	}
}

// runScoringCycle executes one synchronous engine step: drain observations,
// score, commit state, then (depending on gating) submit weights. State is
// always committed before submission so a failed submission never rolls back
// scores.
func (v *Validator) runScoringCycle() {
	if !v.cycleRunning.CompareAndSwap(false, true) {
		return
	}
	defer v.cycleRunning.Store(false)

	v.mu.Lock()
	snapshot := v.MetagraphData.Snapshot
	v.mu.Unlock()

	if len(snapshot.Hotkeys) == 0 {
		log.Info().Msg("metagraph not synced yet, skipping scoring for this step")
		return
	}

	observations := v.collectObservations(snapshot)

	v.mu.Lock()
	scores := v.Scores
	v.mu.Unlock()
	if scores == nil {
		scores = v.Store.Load(len(snapshot.Hotkeys))
	}

	result, err := v.Engine.RunCycle(scores, snapshot, observations)
	if err != nil {
		log.Error().Err(err).Msg("scoring cycle failed")
		return
	}

	if err := v.Store.Save(scores); err != nil {
		// The cycle's scores survive in memory; the previous snapshot stays
		// authoritative on disk until the next successful commit.
		log.Error().Err(err).Msg("failed to commit scores state")
	}

	v.mu.Lock()
	v.Scores = scores
	v.lastResult = &result
	v.mu.Unlock()

	if v.epochCallback == nil {
		v.setWeights(scores.Step, &result)
	}
}

// setWeights submits weights every WeightSettingInterval worth of scoring
// steps, mirroring the step-count gating of the score file.
func (v *Validator) setWeights(step int, result *engine.CycleResult) {
	weightSettingSteps := int(v.IntervalConfig.WeightSettingInterval / v.IntervalConfig.ScoringInterval)
	if weightSettingSteps <= 0 {
		weightSettingSteps = 1
	}

	if step == 0 || step%weightSettingSteps != 0 {
		log.Info().Msgf("Current score step is %d. Next weight setting at step %d",
			step, ((step/weightSettingSteps)+1)*weightSettingSteps)
		return
	}

	if err := v.setWeightsOnChain(result.WeightUIDs, result.WeightVals); err != nil {
		log.Error().Err(err).Msg("failed to set weights")
	}
}

// submitLastWeights is the epoch callback target: submit whatever the most
// recent cycle computed.
func (v *Validator) submitLastWeights() error {
	v.mu.Lock()
	result := v.lastResult
	v.mu.Unlock()

	if result == nil {
		log.Info().Msg("no scoring cycle completed yet, skipping epoch weight submission")
		return nil
	}
	return v.setWeightsOnChain(result.WeightUIDs, result.WeightVals)
}

func (v *Validator) setWeightsOnChain(uids []int64, weights []uint16) error {
	if len(uids) == 0 {
		log.Warn().Msg("empty weight submission, nothing to set on chain")
		return nil
	}

	dests := make([]int, len(uids))
	vals := make([]int, len(weights))
	for i := range uids {
		dests[i] = int(uids[i])
		vals[i] = int(weights[i])
	}

	v.mu.Lock()
	versionKey := v.MetagraphData.Metagraph.WeightsVersion
	netuid := v.ValidatorConfig.Netuid
	v.mu.Unlock()

	resp, err := v.Kami.SetWeights(kami.SetWeightsParams{
		Netuid:     netuid,
		Dests:      dests,
		Weights:    vals,
		VersionKey: versionKey,
	})
	if err != nil {
		return fmt.Errorf("set weights extrinsic: %w", err)
	}

	log.Info().Str("extrinsic_hash", resp.Data).Int("entries", len(dests)).Msg("weights set on chain")
	return nil
}
