package logging

import (
	"context"

	"go.uber.org/zap"
)

// LogAuditEvent records who did what to which resource.
//
// action is the operation name (e.g. "add_link"), userID the authenticated
// caller, resourceType and resourceID identify the target, and result is
// "success" or an error category. details may be nil.
func LogAuditEvent(
	ctx context.Context,
	action, userID, resourceType, resourceID, result string,
	details map[string]any,
) {
	fields := []zap.Field{
		zap.String("audit.action", action),
		zap.String("audit.user_id", userID),
		zap.String("audit.resource_type", resourceType),
		zap.String("audit.resource_id", resourceID),
		zap.String("audit.result", result),
	}
	if len(details) > 0 {
		fields = append(fields, zap.Any("audit.details", details))
	}
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		fields = append(fields, zap.String("audit.trace_id", traceID))
	}

	logger := LoggerFromContext(ctx)
	if result == "success" {
		logger.Info("audit event", fields...)
		return
	}
	logger.Warn("audit event", fields...)
}
