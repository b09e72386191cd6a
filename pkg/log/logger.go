package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hectoramirez/boostpipe/pkg/errors"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	zl    zerolog.Logger
	level *zerolog.Level // shared with the provider
}

func (l *zerologLogger) log(ev *zerolog.Event, msg string, fields ...any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", fields[i])
		}
		ev = appendField(ev, key, fields[i+1])
	}
	if len(fields)%2 != 0 {
		ev = appendField(ev, "field", fields[len(fields)-1])
	}
	ev.Msg(msg)
}

func appendField(ev *zerolog.Event, key string, value any) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return ev.Str(key, v)
	case int:
		return ev.Int(key, v)
	case int64:
		return ev.Int64(key, v)
	case float64:
		return ev.Float64(key, v)
	case bool:
		return ev.Bool(key, v)
	case error:
		return ev.AnErr(key, v)
	case zerolog.LogObjectMarshaler:
		return ev.Object(key, v)
	default:
		return ev.Interface(key, v)
	}
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.log(l.zl.Debug(), msg, fields...) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.log(l.zl.Info(), msg, fields...) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.log(l.zl.Warn(), msg, fields...) }

func (l *zerologLogger) Error(msg string, fields ...any) {
	ev := l.zl.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = ev.Stack().Err(err)
			fields = fields[1:]
		}
	}
	l.log(ev, msg, fields...)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", fields[i])
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	child := ctx.Logger()
	return &zerologLogger{zl: child, level: l.level}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= *l.level
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologProvider creates zerolog-backed loggers sharing one output and level.
type ZerologProvider struct {
	out   io.Writer
	level zerolog.Level
}

// NewZerologProvider creates a provider writing JSON records to stderr.
func NewZerologProvider(level Level) *ZerologProvider {
	return &ZerologProvider{out: os.Stderr, level: toZerologLevel(level)}
}

// NewZerologProviderWithWriter creates a provider writing to w, used by tests.
func NewZerologProviderWithWriter(level Level, w io.Writer) *ZerologProvider {
	return &ZerologProvider{out: w, level: toZerologLevel(level)}
}

// GetLogger returns the default logger instance.
func (p *ZerologProvider) GetLogger() Logger {
	zl := zerolog.New(p.out).Level(p.level).With().Timestamp().Logger()
	return &zerologLogger{zl: zl, level: &p.level}
}

// GetLoggerWithName returns a logger tagged with a component name.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	zl := zerolog.New(p.out).Level(p.level).With().Timestamp().Str("component", name).Logger()
	return &zerologLogger{zl: zl, level: &p.level}
}

// SetLevel sets the minimum level for loggers from this provider.
func (p *ZerologProvider) SetLevel(level Level) {
	p.level = toZerologLevel(level)
}

// ===========================================================================
//
//	Package-level default provider
//
// ===========================================================================

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(LevelWarn)
)

// SetProvider replaces the library-wide logger provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the default logger from the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a named logger from the current provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

func init() {
	// Route pkg/errors warnings into structured logging.
	errors.SetZerologWarnFunc(func(warning error) {
		GetLoggerWithName("warnings").Warn("library warning", "warning", warning)
	})
}
