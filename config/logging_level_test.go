package config

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"

	"github.com/robotics-cluedo/cluedo/logging"
)

func TestLogLevels(t *testing.T) {
	logger := logging.NewTestLogger(t)
	defer logging.GlobalLogLevel.SetLevel(zapcore.InfoLevel)

	InitLoggingSettings(logger, false)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.InfoLevel)

	cfg := validConfig()
	cfg.Debug = true
	test.That(t, ApplyLogConfig(&cfg, logger), test.ShouldBeNil)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.DebugLevel)

	cfg.Debug = false
	test.That(t, ApplyLogConfig(&cfg, logger), test.ShouldBeNil)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.InfoLevel)

	// the command line flag wins over the file
	InitLoggingSettings(logger, true)
	UpdateFileConfigDebug(false)
	test.That(t, logging.GlobalLogLevel.Level(), test.ShouldEqual, zapcore.DebugLevel)
	InitLoggingSettings(logger, false)
	UpdateFileConfigDebug(false)

	named := logging.NewBlankLogger("mission.recognition")
	logging.RegisterLogger("mission.recognition", named)
	cfg.LogConfig = []logging.LoggerPatternConfig{{Pattern: "mission.*", Level: "warn"}}
	test.That(t, ApplyLogConfig(&cfg, logger), test.ShouldBeNil)
	test.That(t, named.GetLevel(), test.ShouldEqual, logging.WARN)
}
