package utils

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	goutils "go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/logging"
)

const (
	slowFirstWarning = 2 * time.Second
	slowWarningEvery = 5 * time.Second
)

// SlowLogger warns with msg once an operation has been running for two seconds and then every
// five seconds, until ctx is done or the returned stop function is called. The stop function must
// be called once the operation returns.
func SlowLogger(
	ctx context.Context,
	clk clock.Clock,
	msg string,
	logger logging.Logger,
	keysAndValues ...interface{},
) func() {
	slowTicker := clk.Ticker(slowFirstWarning)
	startTime := clk.Now()
	ctxWithCancel, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	goutils.PanicCapturingGo(func() {
		defer close(done)
		firstTick := true
		for {
			select {
			case <-slowTicker.C:
				elapsed := clk.Since(startTime).Round(time.Second).String()
				logger.CWarnw(ctx, msg, append(keysAndValues, "time_elapsed", elapsed)...)
				if firstTick {
					slowTicker.Reset(slowWarningEvery)
					firstTick = false
				}
			case <-ctxWithCancel.Done():
				return
			}
		}
	})
	return func() {
		cancel()
		<-done
		slowTicker.Stop()
	}
}
