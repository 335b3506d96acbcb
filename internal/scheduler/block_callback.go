// Package scheduler provides block-interval callbacks for work that must
// align with chain epochs rather than wall-clock tickers.
package scheduler

import "sync"

// BlockCallback triggers every N blocks. Safe for concurrent block updates:
// the check and the execution are one critical section, so overlapping
// callers cannot double-fire the same interval.
// WARN: if the block updater stalls and then jumps multiple intervals at
// once, the callback fires once, not once per missed interval.
type BlockCallback struct {
	mu                 sync.Mutex
	LastTriggerAtBlock int
	// interval is the number of blocks between triggers
	interval  int
	executeFn func() error
}

// NewBlockCallback creates a new BlockCallback that triggers every N blocks
func NewBlockCallback(interval int, execute func() error) *BlockCallback {
	return &BlockCallback{
		LastTriggerAtBlock: -1,
		interval:           interval,
		executeFn:          execute,
	}
}

// ShouldTrigger checks if the callback should trigger at the given block.
func (bc *BlockCallback) ShouldTrigger(currentBlock int) bool {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.shouldTrigger(currentBlock)
}

func (bc *BlockCallback) shouldTrigger(currentBlock int) bool {
	if bc.interval <= 0 {
		return false
	}

	// First trigger aligns with the interval boundary.
	if bc.LastTriggerAtBlock <= 0 {
		return currentBlock%bc.interval == 0
	}

	return currentBlock-bc.LastTriggerAtBlock >= bc.interval
}

// Execute runs the callback; the trigger block is only recorded on success so
// failed executions retry on the next block.
func (bc *BlockCallback) Execute(currentBlock int) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.execute(currentBlock)
}

func (bc *BlockCallback) execute(currentBlock int) error {
	err := bc.executeFn()
	if err == nil {
		bc.LastTriggerAtBlock = currentBlock
	}
	return err
}

// MaybeTrigger checks and executes in one step. Reports whether the callback
// fired; a caller that lost the race to a concurrent trigger gets false.
func (bc *BlockCallback) MaybeTrigger(currentBlock int) (bool, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if !bc.shouldTrigger(currentBlock) {
		return false, nil
	}
	return true, bc.execute(currentBlock)
}
