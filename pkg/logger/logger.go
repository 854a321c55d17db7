// Package logger provides a zap-based structured application logger.
package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level controls the minimum severity that gets emitted.
type Level zapcore.Level

const (
	LevelDebug = Level(zapcore.DebugLevel)
	LevelInfo  = Level(zapcore.InfoLevel)
	LevelWarn  = Level(zapcore.WarnLevel)
	LevelError = Level(zapcore.ErrorLevel)
)

// TraceIDFn extracts the trace id from the context, if any.
type TraceIDFn func(ctx context.Context) string

// Logger wraps zap so call sites pass a context and flat key/value pairs.
type Logger struct {
	z       *zap.SugaredLogger
	traceID TraceIDFn
}

// New constructs a JSON logger writing to out at the given level, stamped
// with the service name. When traceIDFn is non-nil every event carries the
// current trace id.
func New(out io.Writer, level Level, service string, traceIDFn TraceIDFn) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.AddSync(out),
		zapcore.Level(level),
	)
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).
		With(zap.String("service", service)).
		Sugar()
	return &Logger{z: z, traceID: traceIDFn}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.z.Debugw(msg, l.with(ctx, args)...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.z.Infow(msg, l.with(ctx, args)...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.z.Warnw(msg, l.with(ctx, args)...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.z.Errorw(msg, l.with(ctx, args)...)
}

// Sync flushes buffered events.
func (l *Logger) Sync() error { return l.z.Sync() }

func (l *Logger) with(ctx context.Context, args []any) []any {
	if l.traceID == nil {
		return args
	}
	if id := l.traceID(ctx); id != "" {
		return append(args, "trace_id", id)
	}
	return args
}
