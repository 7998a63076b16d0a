package utils

import (
	"context"
	"testing"

	"go.uber.org/atomic"
	"go.viam.com/test"
)

func TestStoppableWorkers(t *testing.T) {
	started := atomic.NewInt32(0)
	stopped := atomic.NewInt32(0)
	worker := func(ctx context.Context) {
		started.Inc()
		<-ctx.Done()
		stopped.Inc()
	}

	sw := NewStoppableWorkers(worker, worker)
	sw.AddWorkers(worker)
	sw.Stop()
	test.That(t, started.Load(), test.ShouldEqual, 3)
	test.That(t, stopped.Load(), test.ShouldEqual, 3)
	test.That(t, sw.Context().Err(), test.ShouldNotBeNil)

	// no-op once stopped
	sw.AddWorkers(worker)
	test.That(t, started.Load(), test.ShouldEqual, 3)
}

func TestStoppableWorkersParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sw := NewStoppableWorkersWithContext(ctx, func(ctx context.Context) {
		<-ctx.Done()
		close(done)
	})
	cancel()
	<-done
	sw.Stop()
}
