package logging

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type (
	ctxLoggerKey  struct{}
	ctxTraceIDKey struct{}
)

// loggerHolder is shared by every context derived from one request, so
// fields added deep in the handler chain reach the access log too.
type loggerHolder struct {
	mu     sync.RWMutex
	logger *zap.Logger
}

func (h *loggerHolder) get() *zap.Logger {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.logger
}

func (h *loggerHolder) with(fields []zap.Field) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger = h.logger.With(fields...)
}

func holderFromContext(ctx context.Context) *loggerHolder {
	if ctx == nil {
		return nil
	}
	h, _ := ctx.Value(ctxLoggerKey{}).(*loggerHolder)
	if h == nil || h.get() == nil {
		return nil
	}
	return h
}

// LoggerFromContext returns the request-scoped logger, or the global one.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if h := holderFromContext(ctx); h != nil {
		return h.get()
	}
	return Logger()
}

// WithFields adds fields to the request-scoped logger. Inside a request the
// change is visible through every context of that request, including the
// one AccessLogger reads; the auth middleware uses it to stamp the caller uid.
// Outside a request it returns a new context with a derived logger.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	if h := holderFromContext(ctx); h != nil {
		h.with(fields)
		return ctx
	}
	return contextWithLogger(ctx, Logger().With(fields...))
}

// TraceIDFromContext returns the Cloud Trace resource or, failing that, the
// request ID. It is empty outside a request.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxTraceIDKey{}).(string)
	return id
}

func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Info(msg, fields...)
}

func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Warn(msg, fields...)
}

// LogError logs at error level, appending err when it is not nil.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	LoggerFromContext(ctx).Error(msg, fields...)
}

func contextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxLoggerKey{}, &loggerHolder{logger: logger})
}

func contextWithTraceID(ctx context.Context, traceID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxTraceIDKey{}, traceID)
}
