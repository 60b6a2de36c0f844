// Package logging builds the process-wide zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	// File enables an additional JSON log sink with size-based
	// rotation. Empty disables the file sink.
	File string

	// Debug lowers the level from Info to Debug.
	Debug bool
}

// New builds a logger that writes human-readable output to stderr and,
// when opts.File is set, JSON lines to a rotating file.
func New(opts Options) *zap.Logger {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	consoleConfig := zap.NewDevelopmentEncoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleConfig),
			zapcore.Lock(os.Stderr),
			level,
		),
	}

	if opts.File != "" {
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
		fileConfig := zap.NewProductionEncoderConfig()
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileConfig),
			fileSink,
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...))
}
