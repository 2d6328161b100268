package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartRunsImmediately(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	s := New(time.Hour, JobFunc(func(ctx context.Context) error {
		runs.Add(1)
		cancel()
		return nil
	}), nil)
	s.Start(ctx)

	assert.Equal(t, int32(1), runs.Load())
}

func TestStartTicks(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	s := New(30*time.Millisecond, JobFunc(func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}), nil)
	s.Start(ctx)

	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestOverlappingTriggersAreDropped(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	s := New(10*time.Millisecond, JobFunc(func(ctx context.Context) error {
		runs.Add(1)
		// Outlast several ticks so overlapping triggers must be dropped.
		time.Sleep(60 * time.Millisecond)
		return nil
	}), nil)
	s.Start(ctx)

	assert.LessOrEqual(t, runs.Load(), int32(3))
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func TestFailedRunDoesNotStopScheduler(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	s := New(25*time.Millisecond, JobFunc(func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("cycle failed")
	}), nil)
	s.Start(ctx)

	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}

func TestStartWaitsForInFlightRun(t *testing.T) {
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	s := New(time.Hour, JobFunc(func(ctx context.Context) error {
		cancel()
		time.Sleep(30 * time.Millisecond)
		close(done)
		return nil
	}), nil)
	s.Start(ctx)

	select {
	case <-done:
	default:
		t.Fatal("Start returned before the in-flight run finished")
	}
}
