package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/game"
)

// flakyStore fails the first failures SaveStep calls.
type flakyStore struct {
	*Memory
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyStore) SaveStep(ctx context.Context, simID int64, step game.SimulationStep) error {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		return errors.New("disk on fire")
	}
	return f.Memory.SaveStep(ctx, simID, step)
}

func (f *flakyStore) heal() {
	f.mu.Lock()
	f.failures = 0
	f.mu.Unlock()
}

func testStoreConfig() config.StoreConfig {
	return config.StoreConfig{SaveRetryLimit: 3, SaveBackoff: time.Millisecond, QueueSize: 16}
}

func runSaver(t *testing.T, s *Saver) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

func flush(t *testing.T, s *Saver) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestSaverRetries(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{Memory: NewMemory(), failures: 2}
	id, _ := st.CreateSimulation(ctx, Simulation{Name: "flaky"})

	var buf bytes.Buffer
	s := NewSaver(st, id, testStoreConfig(), slog.New(slog.NewJSONHandler(&buf, nil)))
	stop := runSaver(t, s)
	defer stop()

	s.Enqueue(sampleStep(1))
	flush(t, s)

	if s.Saved() != 1 || len(s.Failed()) != 0 {
		t.Fatalf("saved %d, failed %v; want 1 saved", s.Saved(), s.Failed())
	}
	if _, err := st.LoadStep(ctx, id, 1); err != nil {
		t.Errorf("step not stored: %v", err)
	}
	logs := buf.String()
	if strings.Count(logs, "failed to save step") != 2 || !strings.Contains(logs, `"attempt":2`) {
		t.Errorf("unexpected logs:\n%s", logs)
	}
}

func TestSaverParksAndRetries(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{Memory: NewMemory(), failures: 1000}
	id, _ := st.CreateSimulation(ctx, Simulation{Name: "down"})

	s := NewSaver(st, id, testStoreConfig(), slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))
	stop := runSaver(t, s)
	defer stop()

	s.Enqueue(sampleStep(2))
	s.Enqueue(sampleStep(1))
	flush(t, s)

	failed := s.Failed()
	if len(failed) != 2 || failed[0] != 1 || failed[1] != 2 {
		t.Fatalf("failed = %v, want [1 2]", failed)
	}

	st.heal()
	if n := s.Retry(); n != 2 {
		t.Errorf("Retry queued %d, want 2", n)
	}
	flush(t, s)

	if s.Saved() != 2 || len(s.Failed()) != 0 {
		t.Errorf("after retry: saved %d, failed %v", s.Saved(), s.Failed())
	}
}

func TestSaverEnqueueNeverBlocks(t *testing.T) {
	cfg := testStoreConfig()
	cfg.QueueSize = 1
	s := NewSaver(NewMemory(), 1, cfg, slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))

	done := make(chan struct{})
	go func() {
		for n := int64(0); n < 5; n++ {
			s.Enqueue(sampleStep(n))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked without a running saver")
	}
	if got := len(s.Failed()); got != 4 {
		t.Errorf("parked %d steps, want 4", got)
	}
	if s.Pending() != 1 {
		t.Errorf("pending = %d, want 1", s.Pending())
	}
}
