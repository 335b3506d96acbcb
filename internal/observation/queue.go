package observation

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/taoillium/bittensor-subnet-taoillium/internal/utils/redis"
)

const (
	defaultQueueKey = "validator:observations"
	drainBatchSize  = 128
)

// Queue is a Redis-backed Buffer. It survives validator restarts between
// cycles and lets the intake server run in a separate process from the
// cycle loop. Single consumer: Drain reads the whole list and deletes it.
type Queue struct {
	redis redis.RedisInterface
	key   string
}

func NewQueue(r redis.RedisInterface, key string) *Queue {
	if key == "" {
		key = defaultQueueKey
	}
	return &Queue{redis: r, key: key}
}

func (q *Queue) Add(ctx context.Context, obs ...Observation) error {
	if len(obs) == 0 {
		return nil
	}
	values := make([]string, 0, len(obs))
	for _, o := range obs {
		data, err := sonic.Marshal(o)
		if err != nil {
			return fmt.Errorf("marshal observation: %w", err)
		}
		values = append(values, string(data))
	}
	if err := q.redis.RPush(ctx, q.key, values...); err != nil {
		return fmt.Errorf("push observations: %w", err)
	}
	return nil
}

// Drain pops the queue in batches. Each LPOP removes exactly what it returns,
// so an observation pushed while a drain is in flight stays queued for the
// next cycle instead of being deleted unread.
func (q *Queue) Drain(ctx context.Context) (map[int64]float64, error) {
	var pending []Observation
	for {
		vals, err := q.redis.LPop(ctx, q.key, drainBatchSize)
		if err != nil {
			return nil, fmt.Errorf("pop observation queue: %w", err)
		}
		if len(vals) == 0 {
			break
		}
		for _, v := range vals {
			if v == "" {
				continue
			}
			var o Observation
			if err := sonic.Unmarshal([]byte(v), &o); err != nil {
				log.Warn().Err(err).Msg("malformed observation in queue, dropping")
				continue
			}
			pending = append(pending, o)
		}
		if len(vals) < drainBatchSize {
			break
		}
	}
	return aggregate(pending), nil
}
