package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/taoillium/bittensor-subnet-taoillium/internal/engine"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/kami"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/observation"
	"github.com/taoillium/bittensor-subnet-taoillium/internal/serviceapi"
)

type stubServiceAPI struct {
	result serviceapi.ValidateResult
	err    error
}

func (s *stubServiceAPI) ValidateNodes(_ serviceapi.ValidateRequest) (serviceapi.ValidateResult, error) {
	return s.result, s.err
}

func testSnapshot() engine.MetagraphSnapshot {
	return engine.MetagraphSnapshot{
		UIDs:    []int64{0, 1, 2},
		Hotkeys: []string{"hk-a", "hk-b", "hk-c"},
		Stakes:  []float64{10, 20, 30},
		Active:  []bool{true, true, false},
		Block:   100,
	}
}

func newObserveValidator(svc serviceapi.ServiceAPIInterface, buffer observation.Buffer) *Validator {
	return &Validator{
		ServiceAPI: svc,
		Buffer:     buffer,
		Ctx:        context.Background(),
	}
}

func TestCollectObservations(t *testing.T) {
	ctx := context.Background()

	t.Run("buffer only", func(t *testing.T) {
		buffer := observation.NewMemoryBuffer()
		_ = buffer.Add(ctx, observation.Observation{UID: 1, Reward: 0.9})

		v := newObserveValidator(nil, buffer)
		observations := v.collectObservations(testSnapshot())

		if len(observations) != 1 || observations[1] != 0.9 {
			t.Errorf("expected buffer observation passthrough, got %v", observations)
		}
	})

	t.Run("service api values are normalized", func(t *testing.T) {
		svc := &stubServiceAPI{result: serviceapi.ValidateResult{
			UIDs:   []int64{0, 1, 2},
			Values: []float64{1, 2, 1},
		}}
		v := newObserveValidator(svc, observation.NewMemoryBuffer())
		observations := v.collectObservations(testSnapshot())

		if observations[0] != 0.25 || observations[1] != 0.5 || observations[2] != 0.25 {
			t.Errorf("expected normalized values, got %v", observations)
		}
	})

	t.Run("buffer wins over service api on conflict", func(t *testing.T) {
		svc := &stubServiceAPI{result: serviceapi.ValidateResult{
			UIDs:   []int64{0, 1, 2},
			Values: []float64{1, 1, 2},
		}}
		buffer := observation.NewMemoryBuffer()
		_ = buffer.Add(ctx, observation.Observation{UID: 1, Reward: 0.99})

		v := newObserveValidator(svc, buffer)
		observations := v.collectObservations(testSnapshot())

		if observations[1] != 0.99 {
			t.Errorf("buffer observation must override service api value, got %f", observations[1])
		}
		if observations[0] != 0.25 {
			t.Errorf("non-conflicting service api values must survive, got %f", observations[0])
		}
	})

	t.Run("service api failure yields empty observations", func(t *testing.T) {
		svc := &stubServiceAPI{err: errors.New("service unavailable")}
		v := newObserveValidator(svc, observation.NewMemoryBuffer())

		observations := v.collectObservations(testSnapshot())
		if len(observations) != 0 {
			t.Errorf("expected empty observations on service failure, got %v", observations)
		}
	})

	t.Run("mismatched uid mirror is discarded", func(t *testing.T) {
		svc := &stubServiceAPI{result: serviceapi.ValidateResult{
			UIDs:   []int64{0, 1},
			Values: []float64{1, 1},
		}}
		v := newObserveValidator(svc, observation.NewMemoryBuffer())

		observations := v.collectObservations(testSnapshot())
		if len(observations) != 0 {
			t.Errorf("expected mismatched result discarded, got %v", observations)
		}
	})

	t.Run("zero-sum validation values are discarded", func(t *testing.T) {
		svc := &stubServiceAPI{result: serviceapi.ValidateResult{
			UIDs:   []int64{0, 1, 2},
			Values: []float64{0, 0, 0},
		}}
		v := newObserveValidator(svc, observation.NewMemoryBuffer())

		observations := v.collectObservations(testSnapshot())
		if len(observations) != 0 {
			t.Errorf("expected zero-sum result discarded, got %v", observations)
		}
	})
}

func TestSnapshotFromMetagraph(t *testing.T) {
	t.Run("parallel vectors copied through", func(t *testing.T) {
		m := kami.SubnetMetagraph{
			Netuid:     98,
			Block:      12345,
			Hotkeys:    []string{"hk-a", "hk-b"},
			Active:     []bool{true, false},
			TotalStake: []float64{10, 20},
		}

		snapshot := snapshotFromMetagraph(&m)

		if len(snapshot.UIDs) != 2 || snapshot.UIDs[0] != 0 || snapshot.UIDs[1] != 1 {
			t.Errorf("expected sequential uids, got %v", snapshot.UIDs)
		}
		if snapshot.Hotkeys[1] != "hk-b" || snapshot.Stakes[1] != 20 || snapshot.Active[0] != true {
			t.Errorf("expected metagraph vectors copied, got %+v", snapshot)
		}
		if snapshot.Block != 12345 {
			t.Errorf("expected block 12345, got %d", snapshot.Block)
		}
	})

	t.Run("missing stake vector yields zeros not panic", func(t *testing.T) {
		m := kami.SubnetMetagraph{Hotkeys: []string{"hk-a", "hk-b"}}
		snapshot := snapshotFromMetagraph(&m)
		if len(snapshot.Stakes) != 2 || snapshot.Stakes[0] != 0 {
			t.Errorf("expected zero stakes, got %v", snapshot.Stakes)
		}
	})
}
