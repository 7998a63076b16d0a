package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	impl struct {
		name  string
		level AtomicLevel
		inUTC bool

		appenders []Appender
	}

	// LogEntry embeds a zapcore Entry and slice of Fields.
	LogEntry struct {
		zapcore.Entry
		fields []zapcore.Field
	}
)

// callerDepth is the number of frames between getCaller and the code that called a Logger
// method: getCaller, emit, the Logger method.
const callerDepth = 3

func (imp *impl) Name() string {
	return imp.name
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

// Sublogger creates a child logger and registers it under its full name so that configured
// level patterns apply to it.
func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = imp.name + "." + subname
	}
	sub := &impl{
		name:      newName,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
	}
	globalLoggerRegistry.register(newName, sub)
	return sub
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

// AsZap returns a zap logger writing to stdout and to every appender that is itself a zap core,
// such as the observer of test loggers. Its level follows GlobalLogLevel.
func (imp *impl) AsZap() *zap.SugaredLogger {
	encoder := zapcore.NewConsoleEncoder(consoleEncoderConfig())
	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), GlobalLogLevel)}
	for _, appender := range imp.appenders {
		if core, ok := appender.(zapcore.Core); ok {
			cores = append(cores, core)
		}
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Sugar().Named(imp.name)
}

func (imp *impl) enabled(ctx context.Context, level Level) bool {
	if GlobalLogLevel.Level() == zapcore.DebugLevel || level >= imp.level.Get() {
		return true
	}
	return IsDebugMode(ctx)
}

// emit builds and writes one entry. msg is only rendered when the entry is enabled. It must be
// called directly from a Logger method for the caller to be reported correctly.
func (imp *impl) emit(ctx context.Context, level Level, msg func() string, keysAndValues []interface{}) {
	if !imp.enabled(ctx, level) {
		return
	}
	entry := &LogEntry{}
	entry.Time = time.Now()
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	entry.LoggerName = imp.name
	entry.Caller = getCaller()
	entry.Level = level.AsZap()
	entry.Message = msg()
	entry.fields = fieldsFromKeysAndValues(keysAndValues)

	for _, appender := range imp.appenders {
		if err := appender.Write(entry.Entry, entry.fields); err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

func sprint(args []interface{}) func() string {
	return func() string { return fmt.Sprint(args...) }
}

func sprintf(template string, args []interface{}) func() string {
	return func() string { return fmt.Sprintf(template, args...) }
}

func literal(msg string) func() string {
	return func() string { return msg }
}

// fieldsFromKeysAndValues pairs odd elements as keys with the following even element as value.
// Values are serialized as json, so only public struct fields show up.
func fieldsFromKeysAndValues(keysAndValues []interface{}) []zapcore.Field {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			// a dangling key keeps an error value so the mistake is visible in the output
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func (imp *impl) Debug(args ...interface{}) {
	imp.emit(context.Background(), DEBUG, sprint(args), nil)
}

func (imp *impl) CDebug(ctx context.Context, args ...interface{}) {
	imp.emit(ctx, DEBUG, sprint(args), nil)
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.emit(context.Background(), DEBUG, sprintf(template, args), nil)
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	imp.emit(ctx, DEBUG, sprintf(template, args), nil)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.emit(context.Background(), DEBUG, literal(msg), keysAndValues)
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.emit(ctx, DEBUG, literal(msg), keysAndValues)
}

func (imp *impl) Info(args ...interface{}) {
	imp.emit(context.Background(), INFO, sprint(args), nil)
}

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.emit(context.Background(), INFO, sprintf(template, args), nil)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.emit(context.Background(), INFO, literal(msg), keysAndValues)
}

func (imp *impl) CInfow(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.emit(ctx, INFO, literal(msg), keysAndValues)
}

func (imp *impl) Warn(args ...interface{}) {
	imp.emit(context.Background(), WARN, sprint(args), nil)
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.emit(context.Background(), WARN, sprintf(template, args), nil)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.emit(context.Background(), WARN, literal(msg), keysAndValues)
}

func (imp *impl) CWarnw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.emit(ctx, WARN, literal(msg), keysAndValues)
}

func (imp *impl) Error(args ...interface{}) {
	imp.emit(context.Background(), ERROR, sprint(args), nil)
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.emit(context.Background(), ERROR, sprintf(template, args), nil)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.emit(context.Background(), ERROR, literal(msg), keysAndValues)
}

func getCaller() zapcore.EntryCaller {
	var entryCaller zapcore.EntryCaller
	var ok bool
	entryCaller.PC, entryCaller.File, entryCaller.Line, ok = runtime.Caller(callerDepth)
	if !ok {
		return entryCaller
	}
	entryCaller.Defined = true
	if fn := runtime.FuncForPC(entryCaller.PC); fn != nil {
		entryCaller.Function = fn.Name()
	}
	return entryCaller
}
