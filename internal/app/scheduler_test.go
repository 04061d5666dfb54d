package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingEvicter struct {
	calls atomic.Int32
}

func (c *countingEvicter) EvictIdle(time.Duration) int {
	c.calls.Add(1)
	return 1
}

func TestSchedulerSweepsAndStops(t *testing.T) {
	ev := &countingEvicter{}
	s := NewScheduler(ev, time.Hour, zap.NewNop())
	s.interval = 5 * time.Millisecond

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return ev.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	n := ev.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, ev.calls.Load(), "no sweeps after Stop")
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	s := NewScheduler(&countingEvicter{}, time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}

func TestSchedulerIntervalFloor(t *testing.T) {
	s := NewScheduler(&countingEvicter{}, time.Second, zap.NewNop())
	assert.Equal(t, time.Minute, s.interval)
}
