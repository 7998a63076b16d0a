package cli

import (
	"context"

	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/config"
	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/vision/recognition"
)

const (
	rootLoggerName   = "mission"
	logFileMaxSizeMB = 64
)

// newLogger returns the root logger and registers it so config log patterns can reach it. The
// returned function closes the log file, if any.
func newLogger(c *cli.Context) (logging.Logger, func()) {
	var logger logging.Logger
	if c.Bool(debugFlag) {
		logger = logging.NewDebugLogger(rootLoggerName)
	} else {
		logger = logging.NewLogger(rootLoggerName)
	}
	closeLog := func() {}
	if path := c.String(logFileFlag); path != "" {
		fileAppender := logging.NewFileAppender(path, logFileMaxSizeMB)
		logger.AddAppender(fileAppender)
		closeLog = func() { goutils.UncheckedError(fileAppender.Close()) }
	}
	logging.RegisterLogger(rootLoggerName, logger)
	config.InitLoggingSettings(logger, c.Bool(debugFlag))
	return logger, closeLog
}

// loadConfig reads the config named by the config flag and applies its log settings.
func loadConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	cfg, err := config.Read(c.Context, c.String(configFlag), logger)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyLogConfig(cfg, logger); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEngine loads the catalog images and returns a recognition engine over them.
func newEngine(ctx context.Context, cfg *config.Config, logger logging.Logger) (*recognition.Engine, error) {
	extractor, err := cfg.Recognition.NewExtractor()
	if err != nil {
		return nil, err
	}
	recLogger := logger.Sublogger("recognition")
	catalog, err := recognition.LoadCatalog(ctx, cfg.Catalog, cfg.CatalogDir(), extractor, recLogger)
	if err != nil {
		return nil, err
	}
	return recognition.NewEngine(cfg.Recognition, catalog, extractor, recLogger)
}
