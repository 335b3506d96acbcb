package validator

import (
	"github.com/taoillium/bittensor-subnet-taoillium/internal/engine"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/kami"
)

// MetagraphData holds the current subnet metagraph and the derived snapshot
// handed to the engine.
type MetagraphData struct {
	Metagraph kami.SubnetMetagraph
	Snapshot  engine.MetagraphSnapshot
}

// snapshotFromMetagraph converts the gateway metagraph into the value-typed
// registry view the engine consumes. Stake is the combined (root+alpha) total.
func snapshotFromMetagraph(m *kami.SubnetMetagraph) engine.MetagraphSnapshot {
	n := len(m.Hotkeys)
	uids := make([]int64, n)
	for i := range uids {
		uids[i] = int64(i)
	}

	hotkeys := make([]string, n)
	copy(hotkeys, m.Hotkeys)

	stakes := make([]float64, n)
	if len(m.TotalStake) == n {
		copy(stakes, m.TotalStake)
	}

	active := make([]bool, n)
	if len(m.Active) == n {
		copy(active, m.Active)
	}

	return engine.MetagraphSnapshot{
		UIDs:    uids,
		Hotkeys: hotkeys,
		Stakes:  stakes,
		Active:  active,
		Block:   int64(m.Block),
	}
}
