// Package observation buffers per-cycle miner reward observations. Producers
// (the intake server, the service API poller) append; the scoring cycle is
// the single consumer and drains the buffer once per cycle. The persisted
// score vector is never touched from here.
package observation

import (
	"context"
	"sync"
)

// Observation is one externally observed reward for a sampled UID.
type Observation struct {
	UID          int64   `json:"uid"`
	Reward       float64 `json:"reward"`
	ScorerHotkey string  `json:"scorer_hotkey,omitempty"`
}

// Buffer collects observations between cycles.
type Buffer interface {
	Add(ctx context.Context, obs ...Observation) error
	// Drain returns the buffered observations aggregated per UID and empties
	// the buffer. Multiple observations for the same UID average out.
	Drain(ctx context.Context) (map[int64]float64, error)
}

// MemoryBuffer is the in-process Buffer used when no Redis is configured.
type MemoryBuffer struct {
	mu      sync.Mutex
	pending []Observation
}

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{}
}

func (b *MemoryBuffer) Add(_ context.Context, obs ...Observation) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, obs...)
	return nil
}

func (b *MemoryBuffer) Drain(_ context.Context) (map[int64]float64, error) {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	return aggregate(pending), nil
}

// aggregate reduces raw observations to one reward per UID by arithmetic mean.
func aggregate(pending []Observation) map[int64]float64 {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, o := range pending {
		sums[o.UID] += o.Reward
		counts[o.UID]++
	}

	out := make(map[int64]float64, len(sums))
	for uid, sum := range sums {
		out[uid] = sum / float64(counts[uid])
	}
	return out
}
