package validator

import (
	"github.com/rs/zerolog/log"

	"github.com/taoillium/bittensor-subnet-taoillium/internal/engine"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/serviceapi"
)

// collectObservations assembles this cycle's external reward signal: the
// service API's validation values merged with whatever landed in the
// observation buffer since the last cycle. Buffer entries win on conflict,
// they are the fresher, per-response signal. An empty map is a valid outcome
// and triggers the stake-only blend downstream.
func (v *Validator) collectObservations(snapshot engine.MetagraphSnapshot) map[int64]float64 {
	observations := make(map[int64]float64)

	if v.ServiceAPI != nil {
		for uid, value := range v.validateWithServiceAPI(snapshot) {
			observations[uid] = value
		}
	}

	buffered, err := v.Buffer.Drain(v.Ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to drain observation buffer, proceeding without it")
	} else {
		for uid, reward := range buffered {
			observations[uid] = reward
		}
	}

	return observations
}

// validateWithServiceAPI reports the cycle's node responses and takes back one
// raw reward value per UID. A structurally inconsistent or non-positive result
// is discarded: the cycle then runs stake-only rather than punishing every
// node with a zero reward.
func (v *Validator) validateWithServiceAPI(snapshot engine.MetagraphSnapshot) map[int64]float64 {
	responses := make([]serviceapi.NodeResponse, len(snapshot.UIDs))
	for i, uid := range snapshot.UIDs {
		responses[i] = serviceapi.NodeResponse{UID: uid, Success: snapshot.Active[i]}
	}

	result, err := v.ServiceAPI.ValidateNodes(serviceapi.ValidateRequest{
		UIDs:      snapshot.UIDs,
		Responses: responses,
	})
	if err != nil {
		log.Warn().Err(err).Msg("service api validation failed, using stake-only scoring")
		return nil
	}

	if len(result.Values) != len(result.UIDs) || !sameUIDs(result.UIDs, snapshot.UIDs) {
		log.Warn().
			Int("uids", len(result.UIDs)).
			Int("values", len(result.Values)).
			Msg("validation result does not mirror request, using stake-only scoring")
		return nil
	}

	total := 0.0
	for _, value := range result.Values {
		total += value
	}
	if total <= 0 {
		log.Warn().Msg("validation values sum to zero, using stake-only scoring")
		return nil
	}

	observations := make(map[int64]float64, len(result.UIDs))
	for i, uid := range result.UIDs {
		observations[uid] = result.Values[i] / total
	}
	return observations
}

func sameUIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
