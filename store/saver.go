package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/game"
)

var errQueueFull = errors.New("save queue full")

const flushPoll = 10 * time.Millisecond

// Saver persists steps in the background. Enqueue never blocks the caller;
// steps that cannot be saved after the retry limit are parked and reported
// by Failed until Retry re-queues them.
type Saver struct {
	store Store
	simID int64
	log   *slog.Logger

	retryLimit int
	backoff    time.Duration

	queue   chan game.SimulationStep
	pending atomic.Int64
	saved   atomic.Int64

	mu     sync.Mutex
	failed map[int64]game.SimulationStep
}

// NewSaver creates a saver writing to simID in st.
func NewSaver(st Store, simID int64, cfg config.StoreConfig, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{
		store:      st,
		simID:      simID,
		log:        logger,
		retryLimit: max(cfg.SaveRetryLimit, 1),
		backoff:    cfg.SaveBackoff,
		queue:      make(chan game.SimulationStep, max(cfg.QueueSize, 1)),
		failed:     make(map[int64]game.SimulationStep),
	}
}

// Enqueue schedules a step for saving. The step must not be modified
// afterwards. A full queue parks the step as failed instead of blocking.
func (s *Saver) Enqueue(step game.SimulationStep) {
	s.pending.Add(1)
	select {
	case s.queue <- step:
	default:
		s.pending.Add(-1)
		s.park(step, 0, errQueueFull)
	}
}

// Run saves queued steps until ctx is cancelled.
func (s *Saver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case step := <-s.queue:
			s.save(ctx, step)
			s.pending.Add(-1)
		}
	}
}

func (s *Saver) save(ctx context.Context, step game.SimulationStep) {
	var err error
	for attempt := 1; attempt <= s.retryLimit; attempt++ {
		if err = s.store.SaveStep(ctx, s.simID, step); err == nil {
			s.saved.Add(1)
			return
		}
		s.log.Warn("failed to save step",
			"sim_id", s.simID,
			"step", step.Number,
			"attempt", attempt,
			"error", err,
		)
		if attempt == s.retryLimit {
			break
		}

		wait := s.backoff * time.Duration(1<<(attempt-1))
		select {
		case <-ctx.Done():
			s.park(step, attempt, ctx.Err())
			return
		case <-time.After(wait):
		}
	}
	s.park(step, s.retryLimit, err)
}

func (s *Saver) park(step game.SimulationStep, attempts int, err error) {
	s.mu.Lock()
	s.failed[step.Number] = step
	s.mu.Unlock()
	s.log.Error("step parked",
		"sim_id", s.simID,
		"step", step.Number,
		"attempts", attempts,
		"error", err,
	)
}

// Failed returns the numbers of parked steps in ascending order.
func (s *Saver) Failed() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.failed))
	for n := range s.failed {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Retry re-queues parked steps and returns how many were queued.
func (s *Saver) Retry() int {
	s.mu.Lock()
	parked := s.failed
	s.failed = make(map[int64]game.SimulationStep)
	s.mu.Unlock()

	numbers := make([]int64, 0, len(parked))
	for n := range parked {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for _, n := range numbers {
		s.Enqueue(parked[n])
	}
	return len(numbers)
}

// Saved returns the number of steps written successfully.
func (s *Saver) Saved() int64 { return s.saved.Load() }

// Pending returns the number of queued or in-flight steps.
func (s *Saver) Pending() int64 { return s.pending.Load() }

// Flush waits until every queued step has been saved or parked. Run must be
// active for the queue to drain.
func (s *Saver) Flush(ctx context.Context) error {
	ticker := time.NewTicker(flushPoll)
	defer ticker.Stop()
	for s.Pending() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
