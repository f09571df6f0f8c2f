// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *Logger
	Warn  *Logger
	Error *Logger
	Debug *Logger
)

// base is the shared zap logger behind the four levels.
var base *zap.Logger

// level gates every core; SetLogLevel moves it.
var level = zap.NewAtomicLevelAt(zapcore.DebugLevel)

// Logger writes at a fixed level with the Printf/Println call style used across the code base.
type Logger struct {
	sugar *zap.SugaredLogger
	lvl   zapcore.Level
}

// Printf logs a formatted message.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.sugar.Logf(l.lvl, format, args...)
}

// Println logs its operands separated by spaces.
func (l *Logger) Println(args ...interface{}) {
	l.sugar.Logln(l.lvl, args...)
}

// ------------------- logger initialization -------------------

// Options controls where logs go.
type Options struct {
	// File is the rotating log file; empty disables file output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultOptions writes to logs/app.log with modest rotation.
func DefaultOptions() Options {
	return Options{
		File:       "logs/app.log",
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
}

// InitLogger creates or reinitializes the logging system. It:
// - Writes human-readable logs to stdout.
// - Writes JSON logs to a lumberjack-rotated file when opts.File is set.
// - Configures the four level loggers on top of one zap core.
func InitLogger(opts Options) error {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level),
	}
	if opts.File != "" {
		if opts.MaxSizeMB <= 0 {
			return fmt.Errorf("invalid log max size: %d", opts.MaxSizeMB)
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}

	base = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	sugar := base.Sugar()

	Info = &Logger{sugar: sugar, lvl: zapcore.InfoLevel}
	Warn = &Logger{sugar: sugar, lvl: zapcore.WarnLevel}
	Error = &Logger{sugar: sugar, lvl: zapcore.ErrorLevel}
	Debug = &Logger{sugar: sugar, lvl: zapcore.DebugLevel}
	return nil
}

// SetLogLevel adjusts output depending on environment.
// Production drops debug output; everything else keeps it.
func SetLogLevel(env string) {
	if env == "production" || env == "release" {
		level.SetLevel(zapcore.InfoLevel)
		return
	}
	level.SetLevel(zapcore.DebugLevel)
}

// Sync flushes buffered log entries.
func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}

// init is called automatically at package load time so the level loggers are never nil.
// Only stdout is used here; main re-initializes with the configured file.
func init() {
	if err := InitLogger(Options{}); err != nil {
		log.Fatalf("Failed to initialise custom logger: %v", err)
	}
}
