package observation

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryBuffer(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate uids average out", func(t *testing.T) {
		b := NewMemoryBuffer()
		err := b.Add(ctx,
			Observation{UID: 1, Reward: 0.2},
			Observation{UID: 1, Reward: 0.8},
			Observation{UID: 2, Reward: 1.0},
		)
		if err != nil {
			t.Fatal(err)
		}

		rewards, err := b.Drain(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(rewards) != 2 {
			t.Fatalf("expected 2 aggregated uids, got %d", len(rewards))
		}
		if rewards[1] != 0.5 {
			t.Errorf("expected uid 1 mean 0.5, got %f", rewards[1])
		}
		if rewards[2] != 1.0 {
			t.Errorf("expected uid 2 reward 1.0, got %f", rewards[2])
		}
	})

	t.Run("drain empties the buffer", func(t *testing.T) {
		b := NewMemoryBuffer()
		if err := b.Add(ctx, Observation{UID: 1, Reward: 1}); err != nil {
			t.Fatal(err)
		}
		if _, err := b.Drain(ctx); err != nil {
			t.Fatal(err)
		}

		rewards, err := b.Drain(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(rewards) != 0 {
			t.Errorf("expected empty buffer after drain, got %v", rewards)
		}
	})

	t.Run("concurrent producers", func(t *testing.T) {
		b := NewMemoryBuffer()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(uid int64) {
				defer wg.Done()
				_ = b.Add(ctx, Observation{UID: uid, Reward: 1})
			}(int64(i))
		}
		wg.Wait()

		rewards, err := b.Drain(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(rewards) != 10 {
			t.Errorf("expected 10 uids, got %d", len(rewards))
		}
	})
}
