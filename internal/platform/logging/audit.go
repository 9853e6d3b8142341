package logging

import (
	"context"

	"go.uber.org/zap"
)

// Audit results.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// LogAuditEvent logs a structured audit record for a change made to a managed resource.
//
// Args:
//   - action: the action performed (e.g. "delete")
//   - resourceType: the resource kind (e.g. "users")
//   - resourceID: identifier of the resource
//   - result: AuditSuccess or AuditFailure
//   - details: optional additional details
func LogAuditEvent(ctx context.Context, action, resourceType, resourceID, result string, details map[string]any) {
	fields := []zap.Field{
		zap.String("audit.action", action),
		zap.String("audit.resource_type", resourceType),
		zap.String("audit.resource_id", resourceID),
		zap.String("audit.result", result),
	}
	if len(details) > 0 {
		fields = append(fields, zap.Any("audit.details", details))
	}
	LoggerFromContext(ctx).Info("Audit event", fields...)
}
