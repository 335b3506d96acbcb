// Package validator implements the validator runtime: metagraph sync, the
// periodic scoring cycle, and on-chain weight submission.
package validator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/taoillium/bittensor-subnet-taoillium/internal/config"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/engine"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/kami"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/observation"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/scheduler"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/serviceapi"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/state"
)

// Validator coordinates scoring cycles and on-chain state for a subnet.
type Validator struct {
	Kami       kami.KamiInterface
	ServiceAPI serviceapi.ServiceAPIInterface // nil when no service API is configured
	Buffer     observation.Buffer
	Engine     *engine.Engine
	Store      *state.Store

	// Chain global state
	LatestBlock     int64
	MetagraphData   MetagraphData
	ValidatorHotkey string
	Scores          *engine.ScoresState

	IntervalConfig  *config.IntervalConfig
	ValidatorConfig *config.ValidatorEnvConfig

	Ctx    context.Context
	Cancel context.CancelFunc
	Wg     sync.WaitGroup

	mu            sync.Mutex  // protects MetagraphData, LatestBlock, Scores, lastResult
	cycleRunning  atomic.Bool // a cycle must never overlap itself
	lastResult    *engine.CycleResult
	epochCallback *scheduler.BlockCallback
}

// NewValidator constructs a Validator. The persisted score state is loaded
// lazily on the first cycle, once the registry size is known.
func NewValidator(
	cfg *config.AppConfig,
	k kami.KamiInterface,
	svc serviceapi.ServiceAPIInterface,
	buffer observation.Buffer,
	store *state.Store,
) *Validator {
	eng, err := engine.NewEngine(engine.Options{
		ExternalRewardWeight:    cfg.ExternalRewardWeight,
		MovingAverageAlpha:      cfg.MovingAverageAlpha,
		MaxWeightsPerSubmission: cfg.MaxWeightsPerSubmission,
		MinWeightCutoff:         cfg.MinWeightCutoff,
	})
	if err != nil {
		log.Error().Err(err).Msg("invalid scoring configuration")
		return nil
	}

	keyringData, err := k.GetKeyringPair()
	if err != nil {
		log.Error().Err(err).Msg("failed to get validator hotkey")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	log.Info().Msgf("Validator hotkey %s loaded!", keyringData.Data.KeyringPair.Address)

	v := &Validator{
		Kami:       k,
		ServiceAPI: svc,
		Buffer:     buffer,
		Engine:     eng,
		Store:      store,

		LatestBlock:     0,
		MetagraphData:   MetagraphData{},
		ValidatorHotkey: keyringData.Data.KeyringPair.Address,

		IntervalConfig:  config.NewIntervalConfig(cfg.Environment),
		ValidatorConfig: &cfg.ValidatorEnvConfig,

		Ctx:    ctx,
		Cancel: cancel,
		Wg:     sync.WaitGroup{},
	}

	if cfg.WeightEpochBlocks > 0 {
		v.epochCallback = scheduler.NewBlockCallback(cfg.WeightEpochBlocks, v.submitLastWeights)
		log.Info().Int("weight_epoch_blocks", cfg.WeightEpochBlocks).Msg("weight submission gated on block epochs")
	}

	return v
}

// runTicker runs a function periodically until the provided context is canceled.
// fn is executed in its own goroutine to ensure the ticker loop can exit quickly
// when the context is canceled.
func (v *Validator) runTicker(ctx context.Context, d time.Duration, fn func()) {
	defer v.Wg.Done()
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			go fn()
		}
	}
}

// Start kicks off the periodic routines.
func (v *Validator) Start() {
	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.MetagraphInterval, func() {
		v.syncMetagraph()
	})

	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.BlockInterval, func() {
		v.syncBlock()
	})

	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.ScoringInterval, func() {
		v.runScoringCycle()
	})
}

// Stop cancels background routines and waits for them to finish.
func (v *Validator) Stop() {
	if v.Cancel != nil {
		v.Cancel()
	}
	v.Wg.Wait()
}
