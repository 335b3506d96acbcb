package engine

import (
	"math"

	"github.com/rs/zerolog/log"

	"gonum.org/v1/gonum/floats"
)

// AccumulateRewards scatters sparse per-cycle observations into a dense reward
// vector of length n. Unsampled UIDs stay at 0. NaN/Inf observations and
// out-of-range UIDs are dropped, never propagated.
func AccumulateRewards(observations map[int64]float64, n int) []float64 {
	rewards := make([]float64, n)
	for uid, reward := range observations {
		if uid < 0 || uid >= int64(n) {
			log.Warn().Int64("uid", uid).Int("registry_size", n).Msg("observation for unknown uid, dropping")
			continue
		}
		if math.IsNaN(reward) || math.IsInf(reward, 0) {
			log.Warn().Int64("uid", uid).Float64("reward", reward).Msg("non-finite reward observation, substituting 0")
			continue
		}
		rewards[uid] = reward
	}
	return rewards
}

// StakeRewards normalizes a stake snapshot into a reward distribution.
// NaN and negative stake entries are zeroed before summation; a zero or NaN
// total yields the uniform distribution 1/N.
func StakeRewards(stakes []float64) []float64 {
	n := len(stakes)
	if n == 0 {
		return []float64{}
	}

	rewards := make([]float64, n)
	for i, s := range stakes {
		if math.IsNaN(s) {
			log.Warn().Int("uid", i).Msg("NaN stake entry, substituting 0")
			continue
		}
		if s < 0 {
			log.Warn().Int("uid", i).Float64("stake", s).Msg("negative stake entry, substituting 0")
			continue
		}
		rewards[i] = s
	}

	total := floats.Sum(rewards)
	if total <= 0 || math.IsNaN(total) {
		log.Info().Int("registry_size", n).Msg("zero total stake, falling back to uniform distribution")
		uniform := 1.0 / float64(n)
		for i := range rewards {
			rewards[i] = uniform
		}
		return rewards
	}

	floats.Scale(1.0/total, rewards)
	return rewards
}

// BlendRewards combines the external reward signal with the stake signal using
// weight w in [0, 1]. A cycle with no positive external signal falls back to
// the stake rewards unconditionally: an absent signal must not zero out every
// miner's trust.
func BlendRewards(rewards, stakeRewards []float64, w float64) []float64 {
	combined := make([]float64, len(stakeRewards))

	if floats.Sum(rewards) <= 0 {
		log.Info().Msg("no external reward signal this cycle, using stake-only rewards")
		copy(combined, stakeRewards)
		return combined
	}

	for i := range combined {
		combined[i] = w*rewards[i] + (1-w)*stakeRewards[i]
	}
	return combined
}
