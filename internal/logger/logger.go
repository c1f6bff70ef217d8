// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels, backed by zap.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("pricing %s", spec.Type)
//	logger.Debugf("spot=%f vol=%f", spot, vol)
//
// All output goes to stderr (and optionally a rotating file) so that
// stdout stays reserved for the pricing report.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TraceLevel sits below zap's DebugLevel.
const TraceLevel = zapcore.DebugLevel - 1

// Config controls encoding, level and the optional log file.
type Config struct {
	Level      string `mapstructure:"level"`  // error, warn, info, debug, trace
	Format     string `mapstructure:"format"` // console or json
	File       string `mapstructure:"file"`   // empty disables file output
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar *zap.SugaredLogger
)

func init() {
	sugar = build(Config{}, zapcore.Lock(os.Stderr))
}

// Init replaces the package logger according to cfg.
// Typically called once during startup, after config is loaded.
func Init(cfg Config) error {
	if cfg.Level != "" {
		if err := SetLevel(cfg.Level); err != nil {
			return err
		}
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}
	if cfg.File != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}))
	}

	sugar = build(cfg, zapcore.NewMultiWriteSyncer(sinks...))
	return nil
}

// InitWriter routes output to w; used by tests and embedding callers.
func InitWriter(cfg Config, w io.Writer) error {
	if cfg.Level != "" {
		if err := SetLevel(cfg.Level); err != nil {
			return err
		}
	}
	sugar = build(cfg, zapcore.AddSync(w))
	return nil
}

func build(cfg Config, sink zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = encodeLevel

	var enc zapcore.Encoder
	if strings.EqualFold(cfg.Format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, sink, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}

// SetVerbosity sets the level from the numeric CLI convention:
// 0=error, 1=info, 2=debug, 3 or more=trace.
func SetVerbosity(v int) {
	switch {
	case v <= 0:
		level.SetLevel(zapcore.ErrorLevel)
	case v == 1:
		level.SetLevel(zapcore.InfoLevel)
	case v == 2:
		level.SetLevel(zapcore.DebugLevel)
	default:
		level.SetLevel(TraceLevel)
	}
}

// SetLevel sets the level by name.
func SetLevel(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "info":
		level.SetLevel(zapcore.InfoLevel)
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "trace":
		level.SetLevel(TraceLevel)
	default:
		return fmt.Errorf("unknown log level %q", name)
	}
	return nil
}

// Enabled reports whether messages at l are currently emitted.
func Enabled(l zapcore.Level) bool {
	return level.Enabled(l)
}

// Sync flushes buffered output.
func Sync() {
	_ = sugar.Sync()
}

// Errorf logs an error-level message.
func Errorf(format string, args ...any) {
	sugar.Errorf(format, args...)
}

// Warnf logs a warning.
func Warnf(format string, args ...any) {
	sugar.Warnf(format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...any) {
	sugar.Infof(format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	sugar.Debugf(format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	if !level.Enabled(TraceLevel) {
		return
	}
	sugar.Logf(TraceLevel, format, args...)
}
