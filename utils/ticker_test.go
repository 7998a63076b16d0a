package utils

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"github.com/robotics-cluedo/cluedo/logging"
)

func TestSlowLogger(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	mockClock := clock.NewMock()

	stop := SlowLogger(context.Background(), mockClock, "still identifying", logger, "encounter", "e1")
	mockClock.Add(time.Second)
	test.That(t, logs.FilterMessage("still identifying").Len(), test.ShouldEqual, 0)

	mockClock.Add(time.Second)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, logs.FilterMessage("still identifying").Len(), test.ShouldEqual, 1)
	})
	entry := logs.FilterMessage("still identifying").All()[0]
	test.That(t, entry.ContextMap()["encounter"], test.ShouldEqual, "e1")
	test.That(t, entry.ContextMap()["time_elapsed"], test.ShouldEqual, "2s")

	mockClock.Add(5 * time.Second)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, logs.FilterMessage("still identifying").Len(), test.ShouldBeGreaterThanOrEqualTo, 2)
	})

	stop()
	warned := logs.FilterMessage("still identifying").Len()
	mockClock.Add(time.Minute)
	test.That(t, logs.FilterMessage("still identifying").Len(), test.ShouldEqual, warned)
}

func TestSlowLoggerContextDone(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	mockClock := clock.NewMock()
	ctx, cancel := context.WithCancel(context.Background())
	stop := SlowLogger(ctx, mockClock, "slow", logger)
	cancel()
	stop()
	mockClock.Add(time.Minute)
	test.That(t, logs.Len(), test.ShouldEqual, 0)
}
