// Package logger adapts zap to the contracts.Logger interface used across the SDK.
package logger

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aurora-melody/sdk/sdk/contracts"
)

// ZapLogger implements contracts.Logger on top of a zap.Logger.
type ZapLogger struct {
	mu     sync.RWMutex
	logger *zap.Logger
	level  zap.AtomicLevel
}

// NewZapLogger builds a JSON logger writing to stderr at info level.
// Plugin binaries own stdout for the host protocol, so logs never go there.
func NewZapLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return &ZapLogger{logger: build(zapcore.Lock(os.Stderr), level, false), level: level}
}

// NewDevelopmentLogger is a console-encoded logger at debug level.
func NewDevelopmentLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	return &ZapLogger{logger: build(zapcore.Lock(os.Stderr), level, true), level: level}
}

// NewNopLogger discards everything.
func NewNopLogger() contracts.Logger {
	return &ZapLogger{logger: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}
}

// New wraps an existing zap logger. The wrapper's level gates entries before
// they reach l, which keeps its own level as well.
func New(l *zap.Logger) contracts.Logger {
	return &ZapLogger{logger: l.WithOptions(zap.AddCallerSkip(1)), level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

func build(ws zapcore.WriteSyncer, level zap.AtomicLevel, console bool) *zap.Logger {
	var encoder zapcore.Encoder
	if console {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
		encoder = zapcore.NewConsoleEncoder(cfg)
	} else {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.RFC3339TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	}
	return zap.New(zapcore.NewCore(encoder, ws, level), zap.AddCaller(), zap.AddCallerSkip(1))
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	if l := z.enabled(zapcore.InfoLevel); l != nil {
		l.Info(msg, toZap(fields)...)
	}
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	if l := z.enabled(zapcore.ErrorLevel); l != nil {
		l.Error(msg, toZap(fields)...)
	}
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	if l := z.enabled(zapcore.DebugLevel); l != nil {
		l.Debug(msg, toZap(fields)...)
	}
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	if l := z.enabled(zapcore.WarnLevel); l != nil {
		l.Warn(msg, toZap(fields)...)
	}
}

// Fatal logs a message at the FATAL level and terminates the process.
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.current().Fatal(msg, toZap(fields)...)
}

// Field returns a builder for typed fields.
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// With returns a child carrying fields on every entry. Level changes on
// either logger apply to both; SetDestination only affects the logger it is
// called on.
func (z *ZapLogger) With(fields ...contracts.Field) contracts.Logger {
	return &ZapLogger{logger: z.current().With(toZap(fields)...), level: z.level}
}

// SetLevel changes the minimum level at runtime.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(zapLevel(level))
}

// SetDestination redirects output. FileLog appends to filePath[0] and falls
// back to stderr when the file cannot be opened.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
	ws := zapcore.Lock(os.Stderr)
	if dest == contracts.FileLog && len(filePath) > 0 && filePath[0] != "" {
		f, err := os.OpenFile(filePath[0], os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			z.Error("cannot open log file, keeping stderr",
				z.Field().String("path", filePath[0]),
				z.Field().Error("error", err))
		} else {
			ws = zapcore.AddSync(f)
		}
	}

	next := build(ws, z.level, false)
	z.mu.Lock()
	old := z.logger
	z.logger = next
	z.mu.Unlock()
	_ = old.Sync()
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.current().Sync()
}

// enabled returns the underlying logger when lvl passes the wrapper's level.
func (z *ZapLogger) enabled(lvl zapcore.Level) *zap.Logger {
	if !z.level.Enabled(lvl) {
		return nil
	}
	return z.current()
}

func (z *ZapLogger) current() *zap.Logger {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.logger
}

func zapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZap(fields []contracts.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if zf, ok := f.(zapField); ok && zf.f.Key != "" {
			out = append(out, zf.f)
		}
	}
	return out
}

// zapField implements contracts.Field. The zero value is a builder; each
// method returns a field carrying a real zap.Field.
type zapField struct {
	f zap.Field
}

func (zapField) Bool(key string, val bool) contracts.Field {
	return zapField{zap.Bool(key, val)}
}

func (zapField) Int(key string, val int) contracts.Field {
	return zapField{zap.Int(key, val)}
}

func (zapField) Float64(key string, val float64) contracts.Field {
	return zapField{zap.Float64(key, val)}
}

func (zapField) String(key string, val string) contracts.Field {
	return zapField{zap.String(key, val)}
}

func (zapField) Time(key string, val time.Time) contracts.Field {
	return zapField{zap.Time(key, val)}
}

func (zapField) Int64(key string, val int64) contracts.Field {
	return zapField{zap.Int64(key, val)}
}

func (zapField) Error(key string, val error) contracts.Field {
	return zapField{zap.NamedError(key, val)}
}

func (zapField) Uint64(key string, val uint64) contracts.Field {
	return zapField{zap.Uint64(key, val)}
}

func (zapField) Uint8(key string, val uint8) contracts.Field {
	return zapField{zap.Uint8(key, val)}
}

func (zapField) Duration(key string, val time.Duration) contracts.Field {
	return zapField{zap.Duration(key, val)}
}

func (zapField) Strings(key string, val []string) contracts.Field {
	return zapField{zap.Strings(key, val)}
}
