package runner

import (
	"context"
	"testing"
	"time"

	"kudanforge/internal/broker"
	"kudanforge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerDisabledStartIsNoOp(t *testing.T) {
	r, _ := newTestRunner(t, broker.NewMock(), permissiveLimits())
	s := NewScheduler(r, config.SchedulerConfig{Enabled: false, IntervalSeconds: 1})

	s.Start()
	assert.False(t, s.Running())
	s.Stop()
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	r, _ := newTestRunner(t, broker.NewMock(), permissiveLimits())
	s := NewScheduler(r, config.SchedulerConfig{Enabled: true, IntervalSeconds: 3600})

	s.Start()
	require.True(t, s.Running())
	s.Start()
	assert.True(t, s.Running(), "double Start stays in running")

	s.Stop()
	assert.False(t, s.Running())
	s.Stop()
	assert.False(t, s.Running(), "double Stop stays idle")

	s.Start()
	assert.True(t, s.Running(), "idle -> running works again after a stop")
	s.Stop()
}

func TestSchedulerTicksExecuteCycles(t *testing.T) {
	r, st := newTestRunner(t, broker.NewMock(), permissiveLimits())
	s := NewScheduler(r, config.SchedulerConfig{Enabled: true, IntervalSeconds: 1})
	s.interval = 20 * time.Millisecond

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		runs, err := st.Runs().ListRecent(context.Background(), 1)
		return err == nil && len(runs) > 0
	}, 2*time.Second, 10*time.Millisecond, "a tick should have produced a run record")

	s.Stop()
	assert.False(t, s.Running())
}

func TestSchedulerStopWaitsForInFlightCycle(t *testing.T) {
	b := &slowBroker{
		Mock:    broker.NewMock(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	r, st := newTestRunner(t, b, permissiveLimits())
	s := NewScheduler(r, config.SchedulerConfig{Enabled: true, IntervalSeconds: 1})
	s.interval = 10 * time.Millisecond

	s.Start()
	<-b.entered
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(b.release)
	}()
	s.Stop()

	runs, err := st.Runs().ListRecent(context.Background(), 50)
	require.NoError(t, err)
	assert.NotEmpty(t, runs, "the cycle in flight at Stop ran to completion")
}
