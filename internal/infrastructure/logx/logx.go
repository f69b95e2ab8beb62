package logx

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	traceIDKey
)

var (
	logger *zap.Logger
)

// The package logger is an info-level fallback for code that is not handed
// a configured logger.
func init() {
	logger = New("")
}

// New builds the production JSON logger at the given level; an unknown
// level keeps info.
func New(level string) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level != "" {
		_ = zapCfg.Level.UnmarshalText([]byte(strings.ToLower(level)))
	}
	l, err := zapCfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
	return l
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func TraceID(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}

// Fields returns the request and trace IDs carried by ctx.
func Fields(ctx context.Context) []zap.Field {
	var fs []zap.Field
	if rid := RequestID(ctx); rid != "" {
		fs = append(fs, zap.String("request_id", rid))
	}
	if tid := TraceID(ctx); tid != "" {
		fs = append(fs, zap.String("trace_id", tid))
	}
	return fs
}

// FromContext enriches l with the IDs carried by ctx; nil l means L().
func FromContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = logger
	}
	return l.With(Fields(ctx)...)
}

// WithFields enriches logs with request IDs / trace IDs from context.
func WithFields(ctx context.Context) *zap.Logger {
	return FromContext(ctx, logger)
}
