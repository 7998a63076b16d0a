package logging

import (
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileAppender writes console formatted lines to a size rotated log file.
type FileAppender struct {
	ConsoleAppender
	file *lumberjack.Logger
}

// NewFileAppender returns an appender writing to path. The file is rotated once it reaches
// maxSizeMB megabytes and the two most recent rotations are kept compressed.
func NewFileAppender(path string, maxSizeMB int) *FileAppender {
	file := &lumberjack.Logger{
		Filename:   filepath.Clean(path),
		MaxSize:    maxSizeMB,
		MaxBackups: 2,
		Compress:   true,
	}
	return &FileAppender{ConsoleAppender: NewWriterAppender(file), file: file}
}

// Write adds the logger name column even when empty so file lines keep a fixed layout.
func (fa *FileAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatLine(entry, fields, true)
	if _, werr := fa.file.Write([]byte(line + "\n")); werr != nil {
		return werr
	}
	return err
}

// Close releases the log file.
func (fa *FileAppender) Close() error {
	return fa.file.Close()
}
