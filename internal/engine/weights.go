package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"gonum.org/v1/gonum/floats"
)

const u16Max = 65535

// NormalizeScores L1-normalizes the score vector into a weight distribution.
// Negative scores are clamped to 0 first; a zero or NaN norm yields the
// uniform distribution 1/N so the submission never carries an invalid vector.
func NormalizeScores(scores []float64) []float64 {
	n := len(scores)
	if n == 0 {
		return []float64{}
	}

	weights := make([]float64, n)
	for i, s := range scores {
		if s > 0 && !math.IsNaN(s) {
			weights[i] = s
		}
	}

	norm := floats.Sum(weights)
	if norm <= 0 || math.IsNaN(norm) {
		log.Info().Int("registry_size", n).Msg("zero score norm, falling back to uniform weights")
		uniform := 1.0 / float64(n)
		for i := range weights {
			weights[i] = uniform
		}
		return weights
	}

	floats.Scale(1.0/norm, weights)
	return weights
}

// EncodeWeights converts a normalized weight vector into the chain's u16
// fixed-point encoding.
//
// Filtering first: entries below minCutoff are dropped, then only the
// maxWeights largest survive (0 means unlimited) and the survivors are
// re-normalized. Quantization floors each weight against the full u16 budget
// and hands the remaining units to the entries with the largest fractional
// remainders, so the integer sum reaches 65535 while relative ordering is
// preserved. Both output slices are sorted by UID.
func EncodeWeights(uids []int64, weights []float64, maxWeights int, minCutoff float64) ([]int64, []uint16, error) {
	if len(uids) != len(weights) {
		return nil, nil, fmt.Errorf("uids and weights must have the same length, got %d and %d", len(uids), len(weights))
	}
	if len(uids) == 0 {
		return []int64{}, []uint16{}, nil
	}

	type entry struct {
		uid    int64
		weight float64
	}

	kept := make([]entry, 0, len(uids))
	for i, w := range weights {
		if w < 0 {
			return nil, nil, fmt.Errorf("weights cannot be negative: uid %d has %f", uids[i], w)
		}
		if w > 0 && w >= minCutoff {
			kept = append(kept, entry{uid: uids[i], weight: w})
		}
	}

	if len(kept) == 0 {
		log.Warn().Msg("no weights survive filtering, nothing to emit")
		return []int64{}, []uint16{}, nil
	}

	// Largest weights first; ties broken by lower UID for determinism.
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].weight != kept[j].weight {
			return kept[i].weight > kept[j].weight
		}
		return kept[i].uid < kept[j].uid
	})
	if maxWeights > 0 && len(kept) > maxWeights {
		log.Info().Int("dropped", len(kept)-maxWeights).Int("max_weights", maxWeights).Msg("capping weight submission size")
		kept = kept[:maxWeights]
	}

	total := 0.0
	for _, e := range kept {
		total += e.weight
	}

	// Floor quantization, remainder budget by largest fractional part.
	vals := make([]int, len(kept))
	fracs := make([]float64, len(kept))
	budget := u16Max
	for i, e := range kept {
		exact := e.weight / total * u16Max
		vals[i] = int(math.Floor(exact))
		fracs[i] = exact - math.Floor(exact)
		budget -= vals[i]
	}

	order := make([]int, len(kept))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		// kept is already sorted by weight desc, so stable sort on fraction
		// keeps heavier entries first among equal fractions.
		return fracs[order[a]] > fracs[order[b]]
	})
	for _, idx := range order {
		if budget == 0 {
			break
		}
		vals[idx]++
		budget--
	}

	outUIDs := make([]int64, len(kept))
	outVals := make([]uint16, len(kept))
	for i, e := range kept {
		outUIDs[i] = e.uid
		outVals[i] = uint16(vals[i])
	}
	sortByUID(outUIDs, outVals)

	return outUIDs, outVals, nil
}

func sortByUID(uids []int64, vals []uint16) {
	idx := make([]int, len(uids))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return uids[idx[a]] < uids[idx[b]] })

	sortedUIDs := make([]int64, len(uids))
	sortedVals := make([]uint16, len(vals))
	for i, j := range idx {
		sortedUIDs[i] = uids[j]
		sortedVals[i] = vals[j]
	}
	copy(uids, sortedUIDs)
	copy(vals, sortedVals)
}
