package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func TestSchedulerRegisterRejectsInvalidSchedule(t *testing.T) {
	logger, _ := newTestLogger()
	s := NewScheduler(testingclock.NewFakeClock(epoch), logger)

	err := s.Register("sync", "every five minutes", func(context.Context) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid schedule "every five minutes" for sync`)
}

func TestSchedulerFiresOnSchedule(t *testing.T) {
	clk := testingclock.NewFakeClock(epoch)
	logger, _ := newTestLogger()
	s := NewScheduler(clk, logger)

	fired := make(chan struct{}, 1)
	var runs atomic.Int32
	require.NoError(t, s.Register("sync", "*/5 * * * *", func(context.Context) {
		runs.Add(1)
		fired <- struct{}{}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Start(ctx)
	}()

	waitForTimer := func() {
		require.Eventually(t, clk.HasWaiters, time.Second, time.Millisecond)
	}

	waitForTimer()
	clk.Step(4 * time.Minute)
	assert.Zero(t, runs.Load())

	clk.Step(time.Minute)
	<-fired
	assert.Equal(t, int32(1), runs.Load())

	waitForTimer()
	clk.Step(5 * time.Minute)
	<-fired
	assert.Equal(t, int32(2), runs.Load())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestSchedulerRunNow(t *testing.T) {
	logger, _ := newTestLogger()
	s := NewScheduler(testingclock.NewFakeClock(epoch), logger)

	var ran bool
	s.RunNow(context.Background(), "sync", func(context.Context) { ran = true })

	assert.True(t, ran)
}

func TestSchedulerStartWithoutJobsReturns(t *testing.T) {
	logger, _ := newTestLogger()
	s := NewScheduler(testingclock.NewFakeClock(epoch), logger)

	s.Start(context.Background())
}
