/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ssgreg/logf"
	"github.com/ssgreg/logftext"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Field hold data of a specific field.
type Field = logf.Field

// CloseFunc flushes and closes the channel writer of the logger.
type CloseFunc logf.ChannelWriterCloseFunc

// LogFunc allows logging a message with a bound level.
// nolint: revive
type LogFunc = logf.LogFunc

// Error returns a new Field with the given error. Key is 'error'.
var Error = logf.Error

// NamedError returns a new Field with the given key and error.
var NamedError = logf.NamedError

// String returns a new Field with the given key and string.
var String = logf.String

// Strings returns a new Field with the given key and slice of strings.
var Strings = logf.Strings

// Int returns a new Field with the given key and int.
var Int = logf.Int

// Int64 returns a new Field with the given key and int64.
var Int64 = logf.Int64

// Duration returns a new Field with the given key and time.Duration.
var Duration = logf.Duration

// Bool returns a new Field with the given key and bool.
var Bool = logf.Bool

// Time returns a new Field with the given key and time.Time.
var Time = logf.Time

// Any returns a new Filed with the given key and value of any type.
var Any = logf.Any

// DurationIn returns a new Field with the "duration" as key and received duration in unit as value (int64).
func DurationIn(val, unit time.Duration) Field {
	return Int64("duration", val.Nanoseconds()/unit.Nanoseconds())
}

// FieldLogger is an interface for loggers which writes logs in structured format.
type FieldLogger interface {
	With(...Field) FieldLogger

	Debug(string, ...Field)
	Info(string, ...Field)
	Warn(string, ...Field)
	Error(string, ...Field)

	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})

	AtLevel(Level, func(LogFunc))
	WithLevel(level Level) FieldLogger
}

// LogfAdapter adapts logf.Logger to FieldLogger interface.
type LogfAdapter struct {
	Logger *logf.Logger
}

// NewDisabledLogger returns a new logger that logs nothing.
func NewDisabledLogger() FieldLogger {
	return &LogfAdapter{logf.NewDisabledLogger()}
}

// NewLogger returns a new logger writing asynchronously through a channel.
// The returned CloseFunc must be called before exit, otherwise the last entries may be lost.
func NewLogger(cfg *Config) (FieldLogger, CloseFunc) {
	channel, closeFunc := logf.NewChannelWriter(logf.ChannelWriterConfig{
		Appender:          makeLogfAppender(cfg),
		EnableSyncOnError: true,
	})
	logfLogger := logf.NewLogger(convertLevelToLogfLevel(cfg.Level), channel).With(logf.Int("pid", os.Getpid()))
	if cfg.AddCaller {
		// skip one stack frame to report the caller of the adapter
		logfLogger = logfLogger.WithCaller().WithCallerSkip(1)
	}
	return &LogfAdapter{logfLogger}, CloseFunc(closeFunc)
}

// With returns a new logger with the given additional fields.
func (l *LogfAdapter) With(fs ...Field) FieldLogger {
	return &LogfAdapter{l.Logger.With(fs...)}
}

// Debug logs message at "debug" level.
func (l *LogfAdapter) Debug(s string, fields ...Field) {
	l.Logger.Debug(s, fields...)
}

// Info logs message at "info" level.
func (l *LogfAdapter) Info(s string, fields ...Field) {
	l.Logger.Info(s, fields...)
}

// Warn logs message at "warn" level.
func (l *LogfAdapter) Warn(s string, fields ...Field) {
	l.Logger.Warn(s, fields...)
}

// Error logs message at "error" level.
func (l *LogfAdapter) Error(s string, fields ...Field) {
	l.Logger.Error(s, fields...)
}

// Debugf logs a formatted message at "debug" level.
func (l *LogfAdapter) Debugf(format string, args ...interface{}) {
	l.logfAtLevel(LevelDebug, format, args...)
}

// Infof logs a formatted message at "info" level.
func (l *LogfAdapter) Infof(format string, args ...interface{}) {
	l.logfAtLevel(LevelInfo, format, args...)
}

// Warnf logs a formatted message at "warn" level.
func (l *LogfAdapter) Warnf(format string, args ...interface{}) {
	l.logfAtLevel(LevelWarn, format, args...)
}

// Errorf logs a formatted message at "error" level.
func (l *LogfAdapter) Errorf(format string, args ...interface{}) {
	l.logfAtLevel(LevelError, format, args...)
}

// logfAtLevel formats the message only if the level is enabled.
func (l *LogfAdapter) logfAtLevel(level Level, format string, args ...interface{}) {
	l.AtLevel(level, func(logFunc LogFunc) {
		logFunc(fmt.Sprintf(format, args...))
	})
}

// AtLevel calls the given fn if logging a message at the specified level
// is enabled, passing a LogFunc with the bound level.
func (l *LogfAdapter) AtLevel(level Level, fn func(logFunc LogFunc)) {
	l.Logger.AtLevel(convertLevelToLogfLevel(level), fn)
}

// WithLevel returns a new logger with additional level check.
// Messages below the given AND previously set level are dropped, so it only makes sense to increase the level.
func (l *LogfAdapter) WithLevel(level Level) FieldLogger {
	return &LogfAdapter{Logger: l.Logger.WithLevel(convertLevelToLogfLevel(level))}
}

func convertLevelToLogfLevel(value Level) logf.Level {
	switch value {
	case LevelError:
		return logf.LevelError
	case LevelWarn:
		return logf.LevelWarn
	case LevelDebug:
		return logf.LevelDebug
	default:
		return logf.LevelInfo
	}
}

func makeLogfAppender(cfg *Config) logf.Appender {
	switch cfg.Output {
	case OutputFile:
		return makeLogfAppenderWithWriter(cfg, &lumberjack.Logger{
			Filename:   resolvePlaceholders(cfg.File.Path),
			MaxSize:    int(cfg.File.Rotation.MaxSize / 1024 / 1024),
			MaxBackups: cfg.File.Rotation.MaxBackups,
			MaxAge:     cfg.File.Rotation.MaxAgeDays,
			Compress:   cfg.File.Rotation.Compress,
			LocalTime:  cfg.File.Rotation.LocalTimeInNames,
		})
	case OutputStderr:
		return makeLogfAppenderWithWriter(cfg, os.Stderr)
	default:
		return makeLogfAppenderWithWriter(cfg, os.Stdout)
	}
}

func makeLogfAppenderWithWriter(cfg *Config, w io.Writer) logf.Appender {
	timeEncoder := logf.RFC3339NanoTimeEncoder

	var errorEncoder logf.ErrorEncoder
	if cfg.Error.VerboseSuffix != "" || cfg.Error.NoVerbose {
		errorEncoder = logf.NewErrorEncoder(logf.ErrorEncoderConfig{
			NoVerboseField:     cfg.Error.NoVerbose,
			VerboseFieldSuffix: cfg.Error.VerboseSuffix,
		})
	}

	if cfg.Format == FormatText {
		noColor := cfg.NoColor
		return logftext.NewAppender(w, logftext.EncoderConfig{
			NoColor:     &noColor,
			EncodeTime:  timeEncoder,
			EncodeError: errorEncoder,
		})
	}

	return logf.NewWriteAppender(w, logf.NewJSONEncoder(logf.JSONEncoderConfig{
		EncodeTime:   timeEncoder,
		EncodeError:  errorEncoder,
		FieldKeyTime: "time",
	}))
}

func resolvePlaceholders(filePath string) string {
	return strings.NewReplacer(
		"{{starttime}}", time.Now().Format("200601021504"),
		"{{pid}}", strconv.Itoa(os.Getpid()),
	).Replace(filePath)
}
