package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditSink records document lifecycle events as structured log entries.
// It satisfies the audit interface of the document application layer and
// never fails the calling operation.
type AuditSink struct {
	logger *zap.Logger
}

// NewAuditSink creates an audit sink writing to the given logger.
func NewAuditSink(logger *zap.Logger) *AuditSink {
	return &AuditSink{logger: logger.Named("audit")}
}

// Record emits one audit entry.
func (s *AuditSink) Record(ctx context.Context, eventKind, modelType string, modelID uuid.UUID, description string, snapshot map[string]any) {
	fields := []zap.Field{
		zap.String("event_kind", eventKind),
		zap.String("model_type", modelType),
		zap.String("model_id", modelID.String()),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if snapshot != nil {
		fields = append(fields, zap.Any("snapshot", snapshot))
	}
	s.logger.Info(description, fields...)
}
