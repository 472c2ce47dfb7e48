package logger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextRoundTrip(t *testing.T) {
	base := zap.NewNop()
	ctx := WithContext(context.Background(), base)

	assert.Same(t, base, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()), "missing logger yields no-op, not nil")
}

func TestWithRequestID(t *testing.T) {
	ctx, enriched := WithRequestID(context.Background(), zap.NewNop(), "req-42")

	require.NotNil(t, enriched)
	assert.Equal(t, "req-42", GetRequestID(ctx))
	assert.Same(t, enriched, FromContext(ctx))
}

func TestWithDocumentCode(t *testing.T) {
	ctx, _ := WithDocumentCode(context.Background(), zap.NewNop(), "INV-A-000007")

	assert.Equal(t, "INV-A-000007", GetDocumentCode(ctx))
	assert.Empty(t, GetDocumentCode(context.Background()))
}

func TestContextLoggerEnrichment(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx, _ = WithRequestID(ctx, FromContext(ctx), "req-7")

	L(ctx).Info("document saved", zap.String("code", "ORD-A-000001"))

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "ORD-A-000001", fields["code"])
}

func TestAuditSinkRecord(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	sink := NewAuditSink(zap.New(core))

	id := uuid.New()
	sink.Record(context.Background(), "updated", "document", id, "document updated", map[string]any{
		"grand_total": "121.00",
	})

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "document updated", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "updated", fields["event_kind"])
	assert.Equal(t, "document", fields["model_type"])
	assert.Equal(t, id.String(), fields["model_id"])
}
